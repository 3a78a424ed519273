package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationError turns a binding failure into a 400 with per-field messages.
// Non-validator errors (malformed JSON, wrong types) get a generic message so
// raw decoder output never reaches the client.
func ValidationError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	logger.Error(c.Request.Context(), "request binding failed", err)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		respond(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		messages = append(messages, fieldMessage(fieldErr))
	}
	respond(c, http.StatusBadRequest, "INVALID_INPUT", strings.Join(messages, "; "))
}

// fieldMessage covers the binding tags this API actually uses.
func fieldMessage(fieldErr validator.FieldError) string {
	field := fieldErr.Field()

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fieldErr.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fieldErr.Tag())
	}
}
