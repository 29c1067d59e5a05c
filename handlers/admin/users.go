package admin

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	"github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"github.com/sahilchouksey/devcamper-api/utils/query"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"github.com/sahilchouksey/devcamper-api/utils/validation"
	"gorm.io/gorm"
)

// UserListOptions configures advanced results for GET /users
var UserListOptions = query.Options{
	Fields: query.Fields(map[string]query.Kind{
		"name":       query.String,
		"email":      query.String,
		"role":       query.String,
		"created_at": query.Time,
	}),
	AlwaysSelect: []string{"id"},
}

// UserHandler serves the admin user management endpoints
type UserHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user publisher admin"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=user publisher admin"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// GetUsers handles GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	return query.Respond(c)
}

// GetUser handles GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.load(c)
	if err != nil {
		return err
	}
	return response.Success(c, user)
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperror.Internal(err, "Failed to process password")
	}

	user := model.User{
		Name:         validation.SanitizeString(req.Name),
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hashedPassword,
	}
	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		return err
	}

	return response.Created(c, user)
}

// UpdateUser handles PUT /api/v1/users/:id. A role or password change
// invalidates the tokens the user holds.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	user, err := h.load(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
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
	revoke := false
	if req.Role != nil && *req.Role != user.Role {
		updates["role"] = *req.Role
		revoke = true
	}
	if req.Password != nil {
		hashedPassword, err := auth.HashPassword(*req.Password)
		if err != nil {
			return apperror.Internal(err, "Failed to process password")
		}
		updates["password_hash"] = hashedPassword
		revoke = true
	}
	if revoke {
		updates["token_version"] = user.TokenVersion + 1
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

// DeleteUser handles DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	user, err := h.load(c)
	if err != nil {
		return err
	}

	if adminID, ok := middleware.GetUserID(c); ok && adminID == user.ID {
		return apperror.BadRequest("Cannot delete your own account")
	}

	if err := h.db.WithContext(c.UserContext()).Delete(user).Error; err != nil {
		return err
	}

	return response.Deleted(c)
}

func (h *UserHandler) load(c *fiber.Ctx) (*model.User, error) {
	id, err := utils.ParamID(c, "id", "No user with the id of")
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := h.db.WithContext(c.UserContext()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("No user with the id of %d", id)
		}
		return nil, err
	}
	return &user, nil
}
