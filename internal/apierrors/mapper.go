package apierrors

import (
	"errors"

	authprocessor "whatsapp-hub/internal/auth/processor"
	linksprocessor "whatsapp-hub/internal/links/processor"
	"whatsapp-hub/internal/store"

	"github.com/gin-gonic/gin"
)

// HandleError maps processor errors to HTTP responses. Handlers call this for
// any error they do not handle themselves; unknown errors become a sanitized
// 500.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, linksprocessor.ErrLinkNotFound):
		NotFound(c, "Tracking link not found")
	case errors.Is(err, linksprocessor.ErrSlugAlreadyExists):
		Conflict(c, "SLUG_ALREADY_EXISTS", "A tracking link with this slug already exists")
	case errors.Is(err, linksprocessor.ErrUnauthorized):
		Forbidden(c, "FORBIDDEN", "You do not have access to this tracking link")
	case errors.Is(err, linksprocessor.ErrNoDestination):
		BadRequest(c, "NO_DESTINATION", "A tracking link needs a WhatsApp number or a destination URL")
	case errors.Is(err, linksprocessor.ErrInvalidPlatform):
		BadRequest(c, "INVALID_PLATFORM", "Platform must be one of: meta, google, social")
	case errors.Is(err, authprocessor.ErrEmailAlreadyExists):
		Conflict(c, "EMAIL_ALREADY_EXISTS", "An account with this email already exists")
	case errors.Is(err, authprocessor.ErrInvalidCredentials):
		Unauthorized(c, "Invalid email or password")
	case errors.Is(err, authprocessor.ErrUserNotFound):
		NotFound(c, "User not found")
	case errors.Is(err, authprocessor.ErrExpiredToken):
		Unauthorized(c, "Token has expired")
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, "Resource not found")
	default:
		InternalError(c, err)
	}
}
