package bootcamp

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"github.com/sahilchouksey/devcamper-api/utils/response"
)

// UploadPhoto handles PUT /api/v1/bootcamps/:id/photo
func (h *BootcampHandler) UploadPhoto(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	bootcamp, err := h.load(c)
	if err != nil {
		return err
	}
	if !user.CanModify(bootcamp.UserID) {
		return apperror.Forbidden("User %d is not authorized to update this bootcamp", user.ID)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return apperror.BadRequest("Please upload a file")
	}

	if !strings.HasPrefix(file.Header.Get(fiber.HeaderContentType), "image") {
		return apperror.BadRequest("Please upload an image file")
	}

	if file.Size > h.maxFileUpload {
		return apperror.BadRequest("Please upload an image less than %s", humanize.Bytes(uint64(h.maxFileUpload)))
	}

	src, err := file.Open()
	if err != nil {
		return apperror.Internal(err, "Problem with file upload")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxFileUpload+1))
	if err != nil {
		return apperror.Internal(err, "Problem with file upload")
	}
	if int64(len(data)) > h.maxFileUpload {
		return apperror.BadRequest("Please upload an image less than %s", humanize.Bytes(uint64(h.maxFileUpload)))
	}

	// The declared type is client controlled, the content decides
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return apperror.BadRequest("Please upload an image file")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = detected.Extension()
	}
	name := fmt.Sprintf("photo_%d%s", bootcamp.ID, ext)

	if _, err := h.photos.Save(c.UserContext(), name, data, detected.String()); err != nil {
		return apperror.Internal(err, "Problem with file upload")
	}

	if err := h.db.WithContext(c.UserContext()).Model(bootcamp).Update("photo", name).Error; err != nil {
		return err
	}

	return response.Success(c, name)
}
