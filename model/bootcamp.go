package model

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPhoto is the placeholder a bootcamp shows until a photo is uploaded
const DefaultPhoto = "no-photo.jpg"

// Careers a bootcamp can prepare students for
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// Location is a geocoded GeoJSON-style point with its address parts
type Location struct {
	Type             string  `gorm:"type:varchar(10);default:'Point'" json:"type"`
	Latitude         float64 `gorm:"index:idx_bootcamps_location,priority:1" json:"latitude"`
	Longitude        float64 `gorm:"index:idx_bootcamps_location,priority:2" json:"longitude"`
	FormattedAddress string  `gorm:"type:varchar(255)" json:"formatted_address"`
	Street           string  `gorm:"type:varchar(255)" json:"street"`
	City             string  `gorm:"type:varchar(100)" json:"city"`
	State            string  `gorm:"type:varchar(50)" json:"state"`
	Zipcode          string  `gorm:"type:varchar(20)" json:"zipcode"`
	Country          string  `gorm:"type:varchar(10)" json:"country"`
}

// Bootcamp represents a training provider
type Bootcamp struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	DeletedAt     gorm.DeletedAt              `gorm:"index" json:"-"`
	Name          string                      `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Slug          string                      `gorm:"type:varchar(60);index" json:"slug"`
	Description   string                      `gorm:"type:varchar(500);not null" json:"description"`
	Website       string                      `gorm:"type:varchar(255)" json:"website"`
	Phone         string                      `gorm:"type:varchar(20)" json:"phone"`
	Email         string                      `gorm:"type:varchar(255)" json:"email"`
	Address       string                      `gorm:"type:varchar(255);not null" json:"address"`
	Location      Location                    `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Careers       datatypes.JSONSlice[string] `json:"careers"`
	AverageRating *float64                    `json:"average_rating"`
	AverageCost   *float64                    `json:"average_cost"`
	Photo         string                      `gorm:"type:varchar(255);default:'no-photo.jpg'" json:"photo"`
	Housing       bool                        `gorm:"default:false" json:"housing"`
	JobAssistance bool                        `gorm:"default:false" json:"job_assistance"`
	JobGuarantee  bool                        `gorm:"default:false" json:"job_guarantee"`
	AcceptGi      bool                        `gorm:"default:false" json:"accept_gi"`
	UserID        uint                        `gorm:"not null;index" json:"user_id"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Courses []Course `gorm:"foreignKey:BootcampID;constraint:OnDelete:CASCADE" json:"courses,omitempty"`
	Reviews []Review `gorm:"foreignKey:BootcampID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate derives the slug and fills defaults
func (b *Bootcamp) BeforeCreate(tx *gorm.DB) error {
	b.Slug = Slugify(b.Name)
	if b.Photo == "" {
		b.Photo = DefaultPhoto
	}
	if b.Location.Type == "" {
		b.Location.Type = "Point"
	}
	return nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes
func Slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
