package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	authutil "github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"github.com/sahilchouksey/devcamper-api/utils/validation"
	"gorm.io/gorm"
)

// UpdateDetailsRequest represents a profile update request
type UpdateDetailsRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UpdatePasswordRequest represents a password change request
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// GetMe handles GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}
	return response.Success(c, user)
}

// UpdateDetails handles PUT /api/v1/auth/updatedetails
func (h *AuthHandler) UpdateDetails(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	var req UpdateDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = validation.SanitizeString(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}

	db := h.db.WithContext(c.UserContext())
	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			return err
		}
	}

	var updated model.User
	if err := db.First(&updated, user.ID).Error; err != nil {
		return err
	}

	return response.Success(c, updated)
}

// UpdatePassword handles PUT /api/v1/auth/updatepassword. Tokens issued before
// the change stop working and a fresh one is returned.
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	var req UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperror.Unauthorized("Password is incorrect")
	}

	if err := h.setPassword(h.db.WithContext(c.UserContext()), user, req.NewPassword); err != nil {
		return err
	}

	return h.sendTokenResponse(c, user, fiber.StatusOK)
}

// setPassword stores a new password hash and bumps the token version of user
func (h *AuthHandler) setPassword(db *gorm.DB, user *model.User, password string) error {
	hashedPassword, err := authutil.HashPassword(password)
	if err != nil {
		return apperror.Internal(err, "Failed to process password")
	}

	version := user.TokenVersion + 1
	if err := db.Model(user).Updates(map[string]interface{}{
		"password_hash": hashedPassword,
		"token_version": version,
	}).Error; err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	user.TokenVersion = version
	return nil
}
