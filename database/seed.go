package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fixture files read from the data directory
const (
	UsersFile     = "users.json"
	BootcampsFile = "bootcamps.json"
	CoursesFile   = "courses.json"
	ReviewsFile   = "reviews.json"
)

// seedUser carries the plain password a fixture user logs in with
type seedUser struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// Seeder handles database seeding operations
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{db: db, logger: logger}
}

// Import loads the JSON fixtures of dir in one transaction, parents before children
func (s *Seeder) Import(ctx context.Context, dir string) error {
	var users []seedUser
	var bootcamps []model.Bootcamp
	var courses []model.Course
	var reviews []model.Review

	for file, dest := range map[string]interface{}{
		UsersFile:     &users,
		BootcampsFile: &bootcamps,
		CoursesFile:   &courses,
		ReviewsFile:   &reviews,
	} {
		if err := readFixture(filepath.Join(dir, file), dest); err != nil {
			return err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(users) > 0 {
			rows := make([]model.User, 0, len(users))
			for _, u := range users {
				hash, err := auth.HashPassword(u.Password)
				if err != nil {
					return fmt.Errorf("user %s: %w", u.Email, err)
				}
				rows = append(rows, model.User{
					ID:           u.ID,
					Name:         u.Name,
					Email:        u.Email,
					Role:         u.Role,
					PasswordHash: hash,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("import users: %w", err)
			}
		}

		// One by one so the aggregate hooks see every row
		for i := range bootcamps {
			if err := tx.Create(&bootcamps[i]).Error; err != nil {
				return fmt.Errorf("import bootcamp %q: %w", bootcamps[i].Name, err)
			}
		}
		for i := range courses {
			if err := tx.Create(&courses[i]).Error; err != nil {
				return fmt.Errorf("import course %q: %w", courses[i].Title, err)
			}
		}
		for i := range reviews {
			if err := tx.Create(&reviews[i]).Error; err != nil {
				return fmt.Errorf("import review %q: %w", reviews[i].Title, err)
			}
		}

		return resetSequences(tx, "users", "bootcamps", "courses", "reviews")
	})
	if err != nil {
		return err
	}

	s.logger.Info("data imported",
		zap.Int("users", len(users)),
		zap.Int("bootcamps", len(bootcamps)),
		zap.Int("courses", len(courses)),
		zap.Int("reviews", len(reviews)),
	)
	return nil
}

// DestroyAll permanently removes every row the seeder manages. It keeps going
// after a failing table and reports all failures together.
func (s *Seeder) DestroyAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()

	var result *multierror.Error
	for _, m := range []interface{}{
		&model.Review{},
		&model.Course{},
		&model.Bootcamp{},
		&model.PasswordResetToken{},
		&model.JWTTokenBlacklist{},
		&model.User{},
	} {
		if err := tx.Delete(m).Error; err != nil {
			result = multierror.Append(result, fmt.Errorf("destroy %T: %w", m, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	s.logger.Info("data destroyed")
	return nil
}

func readFixture(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// resetSequences moves Postgres id sequences past ids inserted explicitly
func resetSequences(tx *gorm.DB, tables ...string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range tables {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE(MAX(id), 1)) FROM %[1]s",
			table,
		)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}
