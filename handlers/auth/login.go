package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/services"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	authutil "github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"github.com/sahilchouksey/devcamper-api/utils/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config holds the cookie settings of the token responses
type Config struct {
	// CookieExpireDays is the lifetime of the token cookie
	CookieExpireDays int
	// SecureCookie marks the cookie Secure, set in production
	SecureCookie bool
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	mailer               services.Mailer
	validator            *validation.Validator
	config               Config
	logger               *zap.Logger
}

// NewAuthHandler creates a new auth handler. bruteForce may be nil when Redis
// is not configured.
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, blacklist *authutil.BlacklistService, bruteForce *middleware.BruteForceProtection, mailer services.Mailer, config Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     blacklist,
		bruteForceProtection: bruteForce,
		mailer:               mailer,
		validator:            validation.NewValidator(),
		config:               config,
		logger:               logger,
	}
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apperror.BadRequest("Please provide an email and password")
	}

	var user model.User
	if err := h.db.WithContext(c.UserContext()).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// Unknown emails count against the client too
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c)
		}
		return apperror.Unauthorized("Invalid credentials")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c)
		}
		return apperror.Unauthorized("Invalid credentials")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c)
	}

	return h.sendTokenResponse(c, &user, fiber.StatusOK)
}

// Logout handles GET /api/v1/auth/logout. A valid token on the request is
// revoked and the token cookie is cleared either way.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if tokenString := middleware.TokenFromRequest(c); tokenString != "" {
		if claims, err := h.jwtManager.ValidateToken(tokenString); err == nil {
			var expiresAt time.Time
			if claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Time
			}
			if err := h.blacklistService.RevokeToken(c.UserContext(), claims.ID, claims.UserID, expiresAt, "logout"); err != nil {
				return err
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "none",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   h.config.SecureCookie,
	})

	return response.Deleted(c)
}

// sendTokenResponse signs a token for user, sets it as a cookie and writes it in the body
func (h *AuthHandler) sendTokenResponse(c *fiber.Ctx, user *model.User, status int) error {
	token, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return apperror.Internal(err, "Failed to generate token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Expires:  time.Now().AddDate(0, 0, h.config.CookieExpireDays),
		HTTPOnly: true,
		Secure:   h.config.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return response.Token(c, status, token)
}
