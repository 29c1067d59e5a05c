package model

import (
	"time"

	"gorm.io/gorm"
)

// Skill levels a course can require
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// Course represents a program offered by a bootcamp
type Course struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
	Title                string         `gorm:"type:varchar(255);not null" json:"title"`
	Description          string         `gorm:"type:text;not null" json:"description"`
	Weeks                int            `gorm:"not null" json:"weeks"`
	Tuition              float64        `gorm:"not null" json:"tuition"`
	MinimumSkill         string         `gorm:"type:varchar(20);not null" json:"minimum_skill"` // beginner, intermediate, advanced
	ScholarshipAvailable bool           `gorm:"default:false" json:"scholarship_available"`
	BootcampID           uint           `gorm:"not null;index" json:"bootcamp_id"`
	UserID               uint           `gorm:"not null;index" json:"user_id"`

	// Relationships
	Bootcamp *Bootcamp `gorm:"foreignKey:BootcampID" json:"bootcamp,omitempty"`
}

// AfterSave keeps the parent bootcamp's average cost current
func (c *Course) AfterSave(tx *gorm.DB) error {
	return UpdateAverageCost(tx, c.BootcampID)
}

// AfterDelete keeps the parent bootcamp's average cost current
func (c *Course) AfterDelete(tx *gorm.DB) error {
	return UpdateAverageCost(tx, c.BootcampID)
}
