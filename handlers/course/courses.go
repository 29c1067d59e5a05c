package course

import (
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

// ListOptions configures advanced results for GET /courses
var ListOptions = query.Options{
	Fields: query.Fields(map[string]query.Kind{
		"title":                 query.String,
		"description":           query.String,
		"weeks":                 query.Number,
		"tuition":               query.Number,
		"minimum_skill":         query.String,
		"scholarship_available": query.Bool,
		"bootcamp_id":           query.Number,
		"user_id":               query.Number,
		"created_at":            query.Time,
	}),
	AlwaysSelect: []string{"id", "bootcamp_id", "user_id"},
	Preloads:     []query.Preload{{Relation: "Bootcamp", Columns: []string{"id", "name", "description"}}},
}

// CourseHandler handles course-related requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title                string   `json:"title" validate:"required,max=255"`
	Description          string   `json:"description" validate:"required"`
	Weeks                int      `json:"weeks" validate:"required,min=1"`
	Tuition              *float64 `json:"tuition" validate:"required,gte=0"`
	MinimumSkill         string   `json:"minimum_skill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool     `json:"scholarship_available"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	Title                *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description          *string  `json:"description" validate:"omitempty,min=1"`
	Weeks                *int     `json:"weeks" validate:"omitempty,min=1"`
	Tuition              *float64 `json:"tuition" validate:"omitempty,gte=0"`
	MinimumSkill         *string  `json:"minimum_skill" validate:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool    `json:"scholarship_available"`
}

// GetCourses handles GET /api/v1/courses and GET /api/v1/bootcamps/:bootcampId/courses
func (h *CourseHandler) GetCourses(c *fiber.Ctx) error {
	if c.Params("bootcampId") == "" {
		return query.Respond(c)
	}

	bootcampID, err := utils.ParamID(c, "bootcampId", "No bootcamp with the id of")
	if err != nil {
		return err
	}

	var courses []model.Course
	if err := h.db.WithContext(c.UserContext()).
		Where("bootcamp_id = ?", bootcampID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return err
	}

	return response.List(c, courses, len(courses))
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id", "No course with the id of")
	if err != nil {
		return err
	}

	var course model.Course
	if err := h.db.WithContext(c.UserContext()).
		Preload("Bootcamp", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "description")
		}).
		First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("No course with the id of %d", id)
		}
		return err
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/bootcamps/:bootcampId/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	bootcampID, err := utils.ParamID(c, "bootcampId", "No bootcamp with the id of")
	if err != nil {
		return err
	}

	db := h.db.WithContext(c.UserContext())

	var bootcamp model.Bootcamp
	if err := db.First(&bootcamp, bootcampID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("No bootcamp with the id of %d", bootcampID)
		}
		return err
	}
	if !user.CanModify(bootcamp.UserID) {
		return apperror.Forbidden("User %d is not authorized to add a course to bootcamp %d", user.ID, bootcamp.ID)
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return err
	}

	course := model.Course{
		Title:                validation.SanitizeString(req.Title),
		Description:          validation.SanitizeString(req.Description),
		Weeks:                req.Weeks,
		Tuition:              *req.Tuition,
		MinimumSkill:         req.MinimumSkill,
		ScholarshipAvailable: req.ScholarshipAvailable,
		BootcampID:           bootcamp.ID,
		UserID:               user.ID,
	}

	if err := db.Create(&course).Error; err != nil {
		return err
	}

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	course, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.authorize(c, user, course, "update"); err != nil {
		return err
	}

	var req UpdateCourseRequest
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
	if req.Description != nil {
		updates["description"] = validation.SanitizeString(*req.Description)
	}
	if req.Weeks != nil {
		updates["weeks"] = *req.Weeks
	}
	if req.Tuition != nil {
		updates["tuition"] = *req.Tuition
	}
	if req.MinimumSkill != nil {
		updates["minimum_skill"] = *req.MinimumSkill
	}
	if req.ScholarshipAvailable != nil {
		updates["scholarship_available"] = *req.ScholarshipAvailable
	}

	db := h.db.WithContext(c.UserContext())
	if len(updates) > 0 {
		// Updating through the loaded row runs the average cost hook
		if err := db.Model(course).Updates(updates).Error; err != nil {
			return err
		}
	}

	var updated model.Course
	if err := db.First(&updated, course.ID).Error; err != nil {
		return err
	}

	return response.Success(c, updated)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	user, err := middleware.MustUser(c)
	if err != nil {
		return err
	}

	course, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.authorize(c, user, course, "delete"); err != nil {
		return err
	}

	if err := h.db.WithContext(c.UserContext()).Delete(course).Error; err != nil {
		return err
	}

	return response.Deleted(c)
}

func (h *CourseHandler) load(c *fiber.Ctx) (*model.Course, error) {
	id, err := utils.ParamID(c, "id", "No course with the id of")
	if err != nil {
		return nil, err
	}

	var course model.Course
	if err := h.db.WithContext(c.UserContext()).First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("No course with the id of %d", id)
		}
		return nil, err
	}
	return &course, nil
}

// authorize allows the owner of the course's bootcamp and admins
func (h *CourseHandler) authorize(c *fiber.Ctx, user *model.User, course *model.Course, action string) error {
	if user.IsAdmin() {
		return nil
	}

	var bootcamp model.Bootcamp
	if err := h.db.WithContext(c.UserContext()).Select("id", "user_id").First(&bootcamp, course.BootcampID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("No course with the id of %d", course.ID)
		}
		return err
	}
	if !user.CanModify(bootcamp.UserID) {
		return apperror.Forbidden("User %d is not authorized to %s course %d", user.ID, action, course.ID)
	}
	return nil
}
