package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	authutil "github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the new password sent with a reset token
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// ForgotPassword handles POST /api/v1/auth/forgotpassword
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	ctx := c.UserContext()
	db := h.db.WithContext(ctx)

	var user model.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("There is no user with that email")
		}
		return err
	}

	token, hash, err := authutil.NewResetToken()
	if err != nil {
		return apperror.Internal(err, "Failed to generate reset token")
	}

	resetToken := model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(authutil.ResetTokenTTL),
	}
	if err := db.Create(&resetToken).Error; err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/%s", c.Protocol(), c.Hostname(), token)
	if err := h.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, resetURL); err != nil {
		// The token is useless without the mail
		if delErr := db.Unscoped().Delete(&resetToken).Error; delErr != nil {
			h.logger.Warn("delete unsent reset token", zap.Uint("user_id", user.ID), zap.Error(delErr))
		}
		return apperror.Internal(err, "Email could not be sent")
	}

	return response.Success(c, "Email sent")
}

// ResetPassword handles PUT /api/v1/auth/resetpassword/:resettoken
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	db := h.db.WithContext(c.UserContext())

	var resetToken model.PasswordResetToken
	err := db.Where("token_hash = ? AND used_at IS NULL AND expires_at > ?",
		authutil.HashResetToken(c.Params("resettoken")), time.Now()).
		First(&resetToken).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.BadRequest("Invalid token")
		}
		return err
	}

	var user model.User
	if err := db.First(&user, resetToken.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.BadRequest("Invalid token")
		}
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		resetToken.MarkAsUsed()
		// A concurrent reset with the same token loses here
		used := tx.Model(&resetToken).Where("used_at IS NULL").Update("used_at", resetToken.UsedAt)
		if used.Error != nil {
			return used.Error
		}
		if used.RowsAffected == 0 {
			return apperror.BadRequest("Invalid token")
		}
		return h.setPassword(tx, &user, req.Password)
	})
	if err != nil {
		return err
	}

	return h.sendTokenResponse(c, &user, fiber.StatusOK)
}
