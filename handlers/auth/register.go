package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	authutil "github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/validation"
)

// RegisterRequest represents a user registration request. Admins are only
// created through the users endpoints.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user publisher"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	req.Name = validation.SanitizeString(req.Name)
	if req.Role == "" {
		req.Role = model.RoleUser
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return apperror.Internal(err, "Failed to process password")
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hashedPassword,
	}

	// A taken email surfaces as a duplicate key error
	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		return err
	}

	return h.sendTokenResponse(c, &user, fiber.StatusOK)
}
