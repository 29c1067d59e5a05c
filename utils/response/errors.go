package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	"github.com/sahilchouksey/devcamper-api/utils/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Postgres error codes the API reports as client errors
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgCheckViolation   = "23514"
)

// ErrorHandler converts any error returned from a handler or middleware into the
// uniform error envelope. Unclassified errors are logged and reported as 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := Classify(err)

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err),
			)
		}

		return Error(c, status, message)
	}
}

// Classify returns the HTTP status and client message for err
func Classify(err error) (int, string) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperror.KindInternal && appErr.Message == "" {
			return appErr.Status(), "Server Error"
		}
		return appErr.Status(), appErr.Message
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusBadRequest, validation.Message(validationErrs)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusNotFound, "Resource not found"
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fiber.StatusBadRequest, "Duplicate field value entered"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fiber.StatusBadRequest, "Duplicate field value entered"
		case pgNotNullViolation, pgCheckViolation:
			return fiber.StatusBadRequest, "Invalid value for " + pgErr.ColumnName
		}
	}

	return fiber.StatusInternalServerError, "Server Error"
}
