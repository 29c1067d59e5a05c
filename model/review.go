package model

import (
	"time"

	"gorm.io/gorm"
)

// Review is a user's rating of a bootcamp, one per user and bootcamp
type Review struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Title      string         `gorm:"type:varchar(100);not null" json:"title"`
	Text       string         `gorm:"type:text;not null" json:"text"`
	Rating     int            `gorm:"not null" json:"rating"` // 1-10
	BootcampID uint           `gorm:"not null;uniqueIndex:idx_reviews_bootcamp_user" json:"bootcamp_id"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_reviews_bootcamp_user" json:"user_id"`

	// Relationships
	Bootcamp *Bootcamp `gorm:"foreignKey:BootcampID" json:"bootcamp,omitempty"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// AfterSave keeps the parent bootcamp's average rating current
func (r *Review) AfterSave(tx *gorm.DB) error {
	return UpdateAverageRating(tx, r.BootcampID)
}

// AfterDelete keeps the parent bootcamp's average rating current
func (r *Review) AfterDelete(tx *gorm.DB) error {
	return UpdateAverageRating(tx, r.BootcampID)
}
