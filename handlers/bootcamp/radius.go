package bootcamp

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	"github.com/sahilchouksey/devcamper-api/utils/response"
)

// GetBootcampsInRadius handles GET /api/v1/bootcamps/radius/:zipcode/:distance.
// distance is in miles unless ?unit=km.
func (h *BootcampHandler) GetBootcampsInRadius(c *fiber.Ctx) error {
	zipcode := c.Params("zipcode")
	distance, err := strconv.ParseFloat(c.Params("distance"), 64)
	if err != nil || distance < 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return apperror.BadRequest("Please provide a valid distance")
	}

	bootcamps, err := h.service.WithinRadius(c.UserContext(), zipcode, distance, c.Query("unit", "mi"))
	if err != nil {
		return err
	}

	return response.List(c, bootcamps, len(bootcamps))
}
