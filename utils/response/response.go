package response

import (
	"github.com/gofiber/fiber/v2"
)

// Response represents a standardized API response
type Response struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// TokenResponse is returned by the login style endpoints
type TokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// PageRef points at a neighbouring page
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination contains links to the previous and next pages when they exist
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Pagination Pagination  `json:"pagination"`
	Data       interface{} `json:"data"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data:    data,
	})
}

// List returns a successful response for a collection
func List(c *fiber.Ctx, data interface{}, count int) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Count:   &count,
		Data:    data,
	})
}

// Created returns a 201 Created response
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Data:    data,
	})
}

// Deleted returns the empty object payload of a successful removal
func Deleted(c *fiber.Ctx) error {
	return Success(c, fiber.Map{})
}

// Token returns a signed token with the given status
func Token(c *fiber.Ctx, status int, token string) error {
	return c.Status(status).JSON(TokenResponse{
		Success: true,
		Token:   token,
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(ErrorResponse{
		Success: false,
		Error:   message,
	})
}

// Paginated returns a paginated response
func Paginated(c *fiber.Ctx, data interface{}, count int, pagination Pagination) error {
	return c.Status(fiber.StatusOK).JSON(PaginatedResponse{
		Success:    true,
		Count:      count,
		Pagination: pagination,
		Data:       data,
	})
}

// CalculatePagination returns the neighbouring pages of page given the total row count
func CalculatePagination(page, limit int, total int64) Pagination {
	var pagination Pagination

	// ceil(total/limit) pages exist
	if limit > 0 && int64(page) < (total+int64(limit)-1)/int64(limit) {
		pagination.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		pagination.Prev = &PageRef{Page: page - 1, Limit: limit}
	}

	return pagination
}
