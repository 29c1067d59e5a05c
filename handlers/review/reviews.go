package review

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils"
	"github.com/sahilchouksey/devcamper-api/utils/apperror"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"github.com/sahilchouksey/devcamper-api/utils/query"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"github.com/sahilchouksey/devcamper-api/utils/validation"
	"gorm.io/gorm"
)

// ListOptions configures advanced results for GET /reviews
var ListOptions = query.Options{
	Fields: query.Fields(map[string]query.Kind{
		"title":       query.String,
		"text":        query.String,
		"rating":      query.Number,
		"bootcamp_id": query.Number,
		"user_id":     query.Number,
		"created_at":  query.Time,
	}),
	AlwaysSelect: []string{"id", "bootcamp_id", "user_id"},
	Preloads:     []query.Preload{{Relation: "Bootcamp", Columns: []string{"id", "name", "description"}}},
}

// ReviewHandler handles review requests
type ReviewHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateReviewRequest represents the request body for creating a review
type CreateReviewRequest struct {
	Title  string `json:"title" validate:"required,max=100"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=10"`
}

// UpdateReviewRequest represents the request body for updating a review
type UpdateReviewRequest struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=100"`
	Text   *string `json:"text" validate:"omitempty,min=1"`
	Rating *int    `json:"rating" validate:"omitempty,gte=1,lte=10"`
}

// GetReviews handles GET /api/v1/reviews and GET /api/v1/bootcamps/:bootcampId/reviews
func (h *ReviewHandler) GetReviews(c *fiber.Ctx) error {
	if c.Params("bootcampId") == "" {
		return query.Respond(c)
	}

	bootcampID, err := utils.ParamID(c, "bootcampId", "No bootcamp with the id of")
	if err != nil {
		return err
	}

	var reviews []model.Review
	if err := h.db.WithContext(c.UserContext()).
		Where("bootcamp_id = ?", bootcampID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return err
	}

	return response.List(c, reviews, len(reviews))
}

// GetReview handles GET /api/v1/reviews/:id
func (h *ReviewHandler) GetReview(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id", "No review found with the id of")
	if err != nil {
		return err
	}

	var review model.Review
	if err := h.db.WithContext(c.UserContext()).
		Preload("Bootcamp", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "description")
		}).
		First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("No review found with the id of %d", id)
		}
		return err
	}

	return response.Success(c, review)
}

// CreateReview handles POST /api/v1/bootcamps/:bootcampId/reviews
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	bootcampID, err := utils.ParamID(c, "bootcampId", "No bootcamp with the id of")
	if err != nil {
		return err
	}

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	db := h.db.WithContext(c.UserContext())

	var bootcamp model.Bootcamp
	if err := db.Select("id").First(&bootcamp, bootcampID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("No bootcamp with the id of %d", bootcampID)
		}
		return err
	}

	var reviewed int64
	if err := db.Model(&model.Review{}).
		Where("bootcamp_id = ? AND user_id = ?", bootcamp.ID, user.ID).
		Count(&reviewed).Error; err != nil {
		return err
	}
	if reviewed > 0 {
		return apperror.Conflict("User %d has already reviewed bootcamp %d", user.ID, bootcamp.ID)
	}

	review := model.Review{
		Title:      validation.SanitizeString(req.Title),
		Text:       validation.SanitizeString(req.Text),
		Rating:     req.Rating,
		BootcampID: bootcamp.ID,
		UserID:     user.ID,
	}

	// The unique index settles concurrent duplicates
	if err := db.Create(&review).Error; err != nil {
		return err
	}

	return response.Created(c, review)
}

// UpdateReview handles PUT /api/v1/reviews/:id
func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	review, err := h.load(c)
	if err != nil {
		return err
	}
	if !user.CanModify(review.UserID) {
		return apperror.Forbidden("Not authorized to update review %d", review.ID)
	}

	var req UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = validation.SanitizeString(*req.Title)
	}
	if req.Text != nil {
		updates["text"] = validation.SanitizeString(*req.Text)
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}

	db := h.db.WithContext(c.UserContext())
	if len(updates) > 0 {
		if err := db.Model(review).Updates(updates).Error; err != nil {
			return err
		}
	}

	var updated model.Review
	if err := db.First(&updated, review.ID).Error; err != nil {
		return err
	}

	return response.Success(c, updated)
}

// DeleteReview handles DELETE /api/v1/reviews/:id
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	review, err := h.load(c)
	if err != nil {
		return err
	}
	if !user.CanModify(review.UserID) {
		return apperror.Forbidden("Not authorized to delete review %d", review.ID)
	}

	if err := h.db.WithContext(c.UserContext()).Delete(review).Error; err != nil {
		return err
	}

	return response.Deleted(c)
}

func (h *ReviewHandler) load(c *fiber.Ctx) (*model.Review, error) {
	id, err := utils.ParamID(c, "id", "No review found with the id of")
	if err != nil {
		return nil, err
	}

	var review model.Review
	if err := h.db.WithContext(c.UserContext()).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("No review found with the id of %d", id)
		}
		return nil, err
	}
	return &review, nil
}
