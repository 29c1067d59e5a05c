package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold
const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Role         string         `gorm:"type:varchar(20);default:'user'" json:"role"` // user, publisher, admin
	PasswordHash string         `gorm:"not null" json:"-"`                           // Never expose password in JSON
	TokenVersion int            `gorm:"default:0" json:"-"`                          // Increment to invalidate all user tokens
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanModify reports whether the user may change a resource owned by ownerID
func (u *User) CanModify(ownerID uint) bool {
	return u.ID == ownerID || u.IsAdmin()
}
