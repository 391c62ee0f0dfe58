package response

import (
	"canoe-backend/internal/pkg/jsonapi"
	"canoe-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// MIMEJSONAPI is the media type of every document response.
const MIMEJSONAPI = "application/vnd.api+json"

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Message string             `json:"message"`
	Errors  *validation.Errors `json:"errors,omitempty"`
}

// Document sends a JSON:API document with the given status.
func Document(c *fiber.Ctx, status int, doc jsonapi.Document) error {
	return c.Status(status).JSON(doc, MIMEJSONAPI)
}

// Success sends 200 with doc.
func Success(c *fiber.Ctx, doc jsonapi.Document) error {
	return Document(c, fiber.StatusOK, doc)
}

// SuccessCreated sends 201 with doc.
func SuccessCreated(c *fiber.Ctx, doc jsonapi.Document) error {
	return Document(c, fiber.StatusCreated, doc)
}

// NoContent sends 204.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// Error sends {message} with statusCode.
func Error(c *fiber.Ctx, message string, statusCode int) error {
	return c.Status(statusCode).JSON(ErrorBody{Message: message})
}

// ValidationFailed sends 422 with per-field messages.
func ValidationFailed(c *fiber.Ctx, errs *validation.Errors) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorBody{
		Message: errs.Message(),
		Errors:  errs,
	})
}

// NotFound sends 404 with a resource-specific message.
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusNotFound)
}

// Conflict sends 409.
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusConflict)
}
