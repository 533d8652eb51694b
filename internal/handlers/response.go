package handlers

import (
	"errors"
	"fmt"

	"storefront/internal/apperror"
	"storefront/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Guards are the middleware chains attached to protected routes.
type Guards struct {
	Auth      fiber.Handler // AuthRequired
	Staff     fiber.Handler // RolesRequired(MANAGER, ADMIN), runs after Auth
	AuthLimit fiber.Handler // optional limiter for the /auth group
}

func (g Guards) staff(h fiber.Handler) []fiber.Handler {
	return []fiber.Handler{g.Auth, g.Staff, h}
}

type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("validation failed on %d fields", len(e.fields))
}

// bind parses the JSON body into dest and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return apperror.InvalidInput("Invalid request body")
	}
	if err := v.Struct(dest); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return apperror.InvalidInput("Invalid request body")
		}
		errorMessages := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			errorMessages[e.Namespace()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return &validationError{fields: errorMessages}
	}
	return nil
}

// writeError renders err with the status its classification maps to.
func writeError(c *fiber.Ctx, err error) error {
	var ve *validationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  ve.fields,
		})
	}
	return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{
		"message": apperror.Message(err),
	})
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

func currentUser(c *fiber.Ctx) string {
	return middleware.UserID(c)
}
