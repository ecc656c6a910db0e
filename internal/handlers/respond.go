package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopfront/internal/api"
)

// respondValidationError renders field-level validation failures inline,
// before any network call has been made.
func respondValidationError(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// respondBackendError surfaces a backend failure as an inline error message
// next to the triggering action. The backend's detail text is shown when
// present, else the generic fallback; the view itself never crashes.
func respondBackendError(c *fiber.Ctx, message string, err error) error {
	status := fiber.StatusBadGateway
	if apiErr, ok := err.(*api.Error); ok {
		status = apiErr.Status
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   api.Message(err),
	})
}
