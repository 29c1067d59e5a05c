package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/services/geocoder"
	"github.com/sahilchouksey/devcamper-api/services/storage"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	"github.com/sahilchouksey/devcamper-api/utils/geo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BootcampService holds the bootcamp operations that span several tables or
// collaborators
type BootcampService struct {
	db       *gorm.DB
	geocoder geocoder.Geocoder
	photos   storage.PhotoStore
	logger   *zap.Logger
}

// NewBootcampService creates a new bootcamp service. geocoder and photos may be nil.
func NewBootcampService(db *gorm.DB, gc geocoder.Geocoder, photos storage.PhotoStore, logger *zap.Logger) *BootcampService {
	return &BootcampService{
		db:       db,
		geocoder: gc,
		photos:   photos,
		logger:   logger,
	}
}

// HasGeocoder reports whether addresses can be resolved
func (s *BootcampService) HasGeocoder() bool {
	return s.geocoder != nil
}

// Geocode resolves address to a bootcamp location
func (s *BootcampService) Geocode(ctx context.Context, address string) (*model.Location, error) {
	if s.geocoder == nil {
		return nil, apperror.New(apperror.KindInternal, "Geocoder is not configured")
	}

	loc, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, geocoder.ErrNotFound) {
			return nil, apperror.NotFound("No location found for %s", address)
		}
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}

	return &model.Location{
		Type:             "Point",
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		FormattedAddress: loc.FormattedAddress,
		Street:           loc.Street,
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.Zipcode,
		Country:          loc.Country,
	}, nil
}

// WithinRadius returns the bootcamps located within distance of the zipcode.
// unit is "mi" (default) or "km".
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode string, distance float64, unit string) ([]model.Bootcamp, error) {
	loc, err := s.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	center := geo.Point{Latitude: loc.Latitude, Longitude: loc.Longitude}
	return s.FindWithinCap(ctx, center, geo.AngularRadius(distance, unit))
}

// FindWithinCap returns the bootcamps inside the spherical cap around center.
// The bounding box narrows rows through the location index, the cap test is exact.
func (s *BootcampService) FindWithinCap(ctx context.Context, center geo.Point, radians float64) ([]model.Bootcamp, error) {
	box := geo.BoundingBox(center, radians)

	query := s.db.WithContext(ctx).
		Where("location_latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if box.WrapsAntimeridian {
		query = query.Where("(location_longitude >= ? OR location_longitude <= ?)", box.MinLng, box.MaxLng)
	} else {
		query = query.Where("location_longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}

	var candidates []model.Bootcamp
	if err := query.Order("id").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("find bootcamps near %v: %w", center, err)
	}

	bootcamps := make([]model.Bootcamp, 0, len(candidates))
	for _, b := range candidates {
		p := geo.Point{Latitude: b.Location.Latitude, Longitude: b.Location.Longitude}
		if geo.WithinCap(center, p, radians) {
			bootcamps = append(bootcamps, b)
		}
	}
	return bootcamps, nil
}

// Delete removes a bootcamp together with its courses and reviews in one
// transaction. The stored photo is removed afterwards on a best effort basis.
func (s *BootcampService) Delete(ctx context.Context, bootcamp *model.Bootcamp) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bootcamp_id = ?", bootcamp.ID).Delete(&model.Review{}).Error; err != nil {
			return fmt.Errorf("delete reviews of bootcamp %d: %w", bootcamp.ID, err)
		}
		if err := tx.Where("bootcamp_id = ?", bootcamp.ID).Delete(&model.Course{}).Error; err != nil {
			return fmt.Errorf("delete courses of bootcamp %d: %w", bootcamp.ID, err)
		}
		if err := tx.Delete(bootcamp).Error; err != nil {
			return fmt.Errorf("delete bootcamp %d: %w", bootcamp.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.photos != nil && bootcamp.Photo != "" && bootcamp.Photo != model.DefaultPhoto {
		if err := s.photos.Delete(ctx, bootcamp.Photo); err != nil {
			s.logger.Warn("delete bootcamp photo", zap.Uint("bootcamp_id", bootcamp.ID), zap.Error(err))
		}
	}
	return nil
}
