package handlers

import (
	"errors"
	"fmt"

	"petstore/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validationErrors renders validator failures per field.
func validationErrors(err error) map[string]string {
	errorMessages := make(map[string]string)
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		errorMessages["body"] = err.Error()
		return errorMessages
	}
	for _, e := range validationErrs {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return errorMessages
}

func validationFailed(c *fiber.Ctx, errorMessages map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// validatePatch checks the fields present in a partial update.
// Explicit nulls are rejected because every product column is required.
func validatePatch(v *validator.Validate, patch models.ProductPatch) map[string]string {
	errorMessages := make(map[string]string)
	for _, field := range patch.NullFields() {
		errorMessages[field] = fmt.Sprintf("Field '%s' must not be null", field)
	}
	check := func(field string, value interface{}, tag string) {
		if _, isNull := errorMessages[field]; isNull {
			return
		}
		if err := v.Var(value, tag); err != nil {
			errorMessages[field] = fmt.Sprintf("Field '%s' failed on the '%s' tag", field, tag)
		}
	}
	if patch.Name.Set {
		check("name", patch.Name.Value, "required,max=255")
	}
	if patch.Quantity.Set {
		check("quantity", patch.Quantity.Value, "gte=0")
	}
	if patch.Price.Set {
		check("price", patch.Price.Value, "gt=0")
	}
	return errorMessages
}
