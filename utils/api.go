package utils

import (
	"strconv"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/database"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
)

// MakeHTTPHandleFunc binds store to a handler that needs it
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return handler(c, store)
	}
}

// ParamID reads a positive numeric route parameter. Malformed ids are reported
// as not found using notFound, mirroring a lookup that matched nothing.
func ParamID(c *fiber.Ctx, name, notFound string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NotFound("%s %s", notFound, raw)
	}
	return uint(id), nil
}
