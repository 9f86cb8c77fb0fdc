package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindingErrors converts validator failures into the field-keyed message
// map the API uses for validation errors. Non-validator bind failures
// (malformed JSON, wrong types) map to a generic message.
func bindingErrors(err error) gin.H {
	var fieldErrs validator.ValidationErrors

	if !errors.As(err, &fieldErrs) {
		return gin.H{"error": "Invalid request"}
	}

	out := gin.H{}

	for _, fe := range fieldErrs {
		out[fe.Field()] = fieldMessage(fe)
	}

	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "datetime":
		return "Date must be formatted as YYYY-MM-DD."
	default:
		return "Invalid value."
	}
}
