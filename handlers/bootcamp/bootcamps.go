package bootcamp

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/services"
	"github.com/sahilchouksey/devcamper-api/services/storage"
	"github.com/sahilchouksey/devcamper-api/utils"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"github.com/sahilchouksey/devcamper-api/utils/query"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"github.com/sahilchouksey/devcamper-api/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const notFoundMessage = "Bootcamp not found with id of"

// ListOptions configures advanced results for GET /bootcamps
var ListOptions = query.Options{
	Fields: map[string]query.Field{
		"name":             {Column: "name", Kind: query.String},
		"slug":             {Column: "slug", Kind: query.String},
		"description":      {Column: "description", Kind: query.String},
		"website":          {Column: "website", Kind: query.String},
		"phone":            {Column: "phone", Kind: query.String},
		"email":            {Column: "email", Kind: query.String},
		"address":          {Column: "address", Kind: query.String},
		"location.city":    {Column: "location_city", Kind: query.String},
		"location.state":   {Column: "location_state", Kind: query.String},
		"location.zipcode": {Column: "location_zipcode", Kind: query.String},
		"location.country": {Column: "location_country", Kind: query.String},
		"average_rating":   {Column: "average_rating", Kind: query.Number},
		"average_cost":     {Column: "average_cost", Kind: query.Number},
		"photo":            {Column: "photo", Kind: query.String},
		"housing":          {Column: "housing", Kind: query.Bool},
		"job_assistance":   {Column: "job_assistance", Kind: query.Bool},
		"job_guarantee":    {Column: "job_guarantee", Kind: query.Bool},
		"accept_gi":        {Column: "accept_gi", Kind: query.Bool},
		"user_id":          {Column: "user_id", Kind: query.Number},
		"created_at":       {Column: "created_at", Kind: query.Time},
	},
	AlwaysSelect: []string{"id", "user_id"},
	Preloads:     []query.Preload{{Relation: "Courses"}},
}

// BootcampHandler handles bootcamp requests
type BootcampHandler struct {
	db            *gorm.DB
	validator     *validation.Validator
	service       *services.BootcampService
	photos        storage.PhotoStore
	maxFileUpload int64
}

// NewBootcampHandler creates a new bootcamp handler
func NewBootcampHandler(db *gorm.DB, service *services.BootcampService, photos storage.PhotoStore, maxFileUpload int64) *BootcampHandler {
	return &BootcampHandler{
		db:            db,
		validator:     validation.NewValidator(),
		service:       service,
		photos:        photos,
		maxFileUpload: maxFileUpload,
	}
}

// LocationRequest is the location a client supplies when no geocoder is configured
type LocationRequest struct {
	Latitude         *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	FormattedAddress string   `json:"formatted_address" validate:"omitempty,max=255"`
	Street           string   `json:"street" validate:"omitempty,max=255"`
	City             string   `json:"city" validate:"omitempty,max=100"`
	State            string   `json:"state" validate:"omitempty,max=50"`
	Zipcode          string   `json:"zipcode" validate:"omitempty,max=20"`
	Country          string   `json:"country" validate:"omitempty,max=10"`
}

func (l *LocationRequest) toModel() model.Location {
	return model.Location{
		Type:             "Point",
		Latitude:         *l.Latitude,
		Longitude:        *l.Longitude,
		FormattedAddress: validation.SanitizeString(l.FormattedAddress),
		Street:           validation.SanitizeString(l.Street),
		City:             validation.SanitizeString(l.City),
		State:            validation.SanitizeString(l.State),
		Zipcode:          validation.SanitizeString(l.Zipcode),
		Country:          validation.SanitizeString(l.Country),
	}
}

// CreateBootcampRequest represents the request body for creating a bootcamp
type CreateBootcampRequest struct {
	Name          string           `json:"name" validate:"required,max=50"`
	Description   string           `json:"description" validate:"required,max=500"`
	Website       string           `json:"website" validate:"omitempty,url"`
	Phone         string           `json:"phone" validate:"omitempty,max=20"`
	Email         string           `json:"email" validate:"omitempty,email"`
	Address       string           `json:"address" validate:"required,max=255"`
	Location      *LocationRequest `json:"location" validate:"omitempty"`
	Careers       []string         `json:"careers" validate:"required,min=1,dive,required"`
	Housing       bool             `json:"housing"`
	JobAssistance bool             `json:"job_assistance"`
	JobGuarantee  bool             `json:"job_guarantee"`
	AcceptGi      bool             `json:"accept_gi"`
}

// UpdateBootcampRequest represents the request body for updating a bootcamp
type UpdateBootcampRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=50"`
	Description   *string          `json:"description" validate:"omitempty,min=1,max=500"`
	Website       *string          `json:"website" validate:"omitempty,url"`
	Phone         *string          `json:"phone" validate:"omitempty,max=20"`
	Email         *string          `json:"email" validate:"omitempty,email"`
	Address       *string          `json:"address" validate:"omitempty,min=1,max=255"`
	Location      *LocationRequest `json:"location" validate:"omitempty"`
	Careers       []string         `json:"careers" validate:"omitempty,min=1,dive,required"`
	Housing       *bool            `json:"housing"`
	JobAssistance *bool            `json:"job_assistance"`
	JobGuarantee  *bool            `json:"job_guarantee"`
	AcceptGi      *bool            `json:"accept_gi"`
}

// validateCareers rejects careers outside model.Careers
func validateCareers(careers []string) error {
	for _, career := range careers {
		known := false
		for _, allowed := range model.Careers {
			if career == allowed {
				known = true
				break
			}
		}
		if !known {
			return apperror.Validation("careers must be one of %s", strings.Join(model.Careers, ", "))
		}
	}
	return nil
}

// GetBootcamps handles GET /api/v1/bootcamps
func (h *BootcampHandler) GetBootcamps(c *fiber.Ctx) error {
	return query.Respond(c)
}

// GetBootcamp handles GET /api/v1/bootcamps/:id
func (h *BootcampHandler) GetBootcamp(c *fiber.Ctx) error {
	bootcamp, err := h.load(c)
	if err != nil {
		return err
	}
	return response.Success(c, bootcamp)
}

// CreateBootcamp handles POST /api/v1/bootcamps
func (h *BootcampHandler) CreateBootcamp(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	var req CreateBootcampRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}
	if err := validateCareers(req.Careers); err != nil {
		return err
	}

	ctx := c.UserContext()
	db := h.db.WithContext(ctx)

	// Publishers own at most one bootcamp
	if !user.IsAdmin() {
		var published int64
		if err := db.Model(&model.Bootcamp{}).Where("user_id = ?", user.ID).Count(&published).Error; err != nil {
			return err
		}
		if published > 0 {
			return apperror.Conflict("The user with ID %d has already published a bootcamp", user.ID)
		}
	}

	bootcamp := model.Bootcamp{
		Name:          validation.SanitizeString(req.Name),
		Description:   validation.SanitizeString(req.Description),
		Website:       strings.TrimSpace(req.Website),
		Phone:         validation.SanitizeString(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       validation.SanitizeString(req.Address),
		Careers:       datatypes.JSONSlice[string](req.Careers),
		Housing:       req.Housing,
		JobAssistance: req.JobAssistance,
		JobGuarantee:  req.JobGuarantee,
		AcceptGi:      req.AcceptGi,
		UserID:        user.ID,
	}

	switch {
	case h.service.HasGeocoder():
		location, err := h.service.Geocode(ctx, bootcamp.Address)
		if err != nil {
			return err
		}
		bootcamp.Location = *location
	case req.Location != nil:
		bootcamp.Location = req.Location.toModel()
	default:
		return apperror.Validation("Please add a location")
	}

	if err := db.Create(&bootcamp).Error; err != nil {
		return err
	}

	return response.Created(c, bootcamp)
}

// UpdateBootcamp handles PUT /api/v1/bootcamps/:id
func (h *BootcampHandler) UpdateBootcamp(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	bootcamp, err := h.load(c)
	if err != nil {
		return err
	}
	if !user.CanModify(bootcamp.UserID) {
		return apperror.Forbidden("User %d is not authorized to update this bootcamp", user.ID)
	}

	var req UpdateBootcampRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}
	if err := validateCareers(req.Careers); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := validation.SanitizeString(*req.Name)
		updates["name"] = name
		updates["slug"] = model.Slugify(name)
	}
	if req.Description != nil {
		updates["description"] = validation.SanitizeString(*req.Description)
	}
	if req.Website != nil {
		updates["website"] = strings.TrimSpace(*req.Website)
	}
	if req.Phone != nil {
		updates["phone"] = validation.SanitizeString(*req.Phone)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Careers != nil {
		updates["careers"] = datatypes.JSONSlice[string](req.Careers)
	}
	if req.Housing != nil {
		updates["housing"] = *req.Housing
	}
	if req.JobAssistance != nil {
		updates["job_assistance"] = *req.JobAssistance
	}
	if req.JobGuarantee != nil {
		updates["job_guarantee"] = *req.JobGuarantee
	}
	if req.AcceptGi != nil {
		updates["accept_gi"] = *req.AcceptGi
	}

	var location *model.Location
	if req.Address != nil {
		address := validation.SanitizeString(*req.Address)
		updates["address"] = address
		if h.service.HasGeocoder() {
			if location, err = h.service.Geocode(c.UserContext(), address); err != nil {
				return err
			}
		}
	}
	if location == nil && req.Location != nil {
		l := req.Location.toModel()
		location = &l
	}
	if location != nil {
		updates["location_type"] = location.Type
		updates["location_latitude"] = location.Latitude
		updates["location_longitude"] = location.Longitude
		updates["location_formatted_address"] = location.FormattedAddress
		updates["location_street"] = location.Street
		updates["location_city"] = location.City
		updates["location_state"] = location.State
		updates["location_zipcode"] = location.Zipcode
		updates["location_country"] = location.Country
	}

	db := h.db.WithContext(c.UserContext())
	if len(updates) > 0 {
		if err := db.Model(bootcamp).Updates(updates).Error; err != nil {
			return err
		}
	}

	var updated model.Bootcamp
	if err := db.First(&updated, bootcamp.ID).Error; err != nil {
		return err
	}

	return response.Success(c, updated)
}

// DeleteBootcamp handles DELETE /api/v1/bootcamps/:id
func (h *BootcampHandler) DeleteBootcamp(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	bootcamp, err := h.load(c)
	if err != nil {
		return err
	}
	if !user.CanModify(bootcamp.UserID) {
		return apperror.Forbidden("User %d is not authorized to delete this bootcamp", user.ID)
	}

	if err := h.service.Delete(c.UserContext(), bootcamp); err != nil {
		return err
	}

	return response.Deleted(c)
}

// load fetches the bootcamp named by the id route parameter
func (h *BootcampHandler) load(c *fiber.Ctx) (*model.Bootcamp, error) {
	id, err := utils.ParamID(c, "id", notFoundMessage)
	if err != nil {
		return nil, err
	}

	var bootcamp model.Bootcamp
	if err := h.db.WithContext(c.UserContext()).First(&bootcamp, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("%s %d", notFoundMessage, id)
		}
		return nil, err
	}
	return &bootcamp, nil
}
