// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with every model migrated
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(model.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// CreateUser inserts a user with the given role. The password hash is not a
// valid bcrypt hash unless one is passed.
func CreateUser(t *testing.T, db *gorm.DB, name, role string, passwordHash ...string) *model.User {
	t.Helper()

	hash := "not-a-hash"
	if len(passwordHash) > 0 {
		hash = passwordHash[0]
	}
	user := &model.User{
		Name:         name,
		Email:        name + "@example.com",
		Role:         role,
		PasswordHash: hash,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateBootcamp inserts a bootcamp owned by ownerID at the given coordinates
func CreateBootcamp(t *testing.T, db *gorm.DB, ownerID uint, name string, lat, lng float64) *model.Bootcamp {
	t.Helper()

	bootcamp := &model.Bootcamp{
		Name:        name,
		Description: name + " description",
		Address:     "233 Bay State Rd Boston MA 02215",
		Location: model.Location{
			Latitude:  lat,
			Longitude: lng,
			Zipcode:   "02215",
			State:     "MA",
		},
		Careers: []string{"Web Development"},
		UserID:  ownerID,
	}
	require.NoError(t, db.Create(bootcamp).Error)
	return bootcamp
}

// CreateCourse inserts a course of bootcamp b owned by b's owner
func CreateCourse(t *testing.T, db *gorm.DB, b *model.Bootcamp, title string, tuition float64) *model.Course {
	t.Helper()

	course := &model.Course{
		Title:        title,
		Description:  title + " description",
		Weeks:        8,
		Tuition:      tuition,
		MinimumSkill: model.SkillBeginner,
		BootcampID:   b.ID,
		UserID:       b.UserID,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

// CreateReview inserts a review of bootcamp b written by authorID
func CreateReview(t *testing.T, db *gorm.DB, b *model.Bootcamp, authorID uint, rating int) *model.Review {
	t.Helper()

	review := &model.Review{
		Title:      "Review",
		Text:       "Review text",
		Rating:     rating,
		BootcampID: b.ID,
		UserID:     authorID,
	}
	require.NoError(t, db.Create(review).Error)
	return review
}
