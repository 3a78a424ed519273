package apierrors

import (
	"net/http"

	"whatsapp-hub/internal/observability"

	"github.com/gin-gonic/gin"
)

var logger = observability.NewLogger()

// ErrorResponse is the JSON body of every non-2xx API response. Code is a
// stable machine-readable identifier (SLUG_ALREADY_EXISTS, INVALID_STATUS);
// Error is the human-readable message.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respond(c *gin.Context, statusCode int, code, message string) {
	ctx := observability.WithFields(c.Request.Context(),
		observability.Field{Key: "status_code", Value: statusCode},
		observability.Field{Key: "error_code", Value: code},
	)
	logger.Info(ctx, "request failed: "+message)

	c.JSON(statusCode, ErrorResponse{Error: message, Code: code})
}

func BadRequest(c *gin.Context, code, message string) {
	respond(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(c *gin.Context, code, message string) {
	respond(c, http.StatusForbidden, code, message)
}

func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, "NOT_FOUND", message)
}

func Conflict(c *gin.Context, code, message string) {
	respond(c, http.StatusConflict, code, message)
}

// ServiceUnavailable reports a dependency outage. The internal error is
// logged, never returned to the client.
func ServiceUnavailable(c *gin.Context, code, message string, internalErr error) {
	logger.Error(c.Request.Context(), "dependency unavailable", internalErr)
	respond(c, http.StatusServiceUnavailable, code, message)
}

// InternalError logs the cause and returns a sanitized 500.
func InternalError(c *gin.Context, internalErr error) {
	logger.Error(c.Request.Context(), "unhandled error", internalErr)
	respond(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong. Please try again later.")
}
