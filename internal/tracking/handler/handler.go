package handler

import (
	"errors"
	"net/http"

	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/tracking/processor"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	processor processor.TrackingProcessor
	logger    *observability.Logger
}

func New(processor processor.TrackingProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// HandleTrackedClick resolves a tracked slug and 302-redirects the visitor
// to WhatsApp. This is a public endpoint hit from ad landing flows, so
// failures answer with plain text instead of the JSON error envelope.
func (h *Handler) HandleTrackedClick(c *gin.Context) {
	ctx := c.Request.Context()

	params := processor.ClickParams{
		Slug:        c.Param("slug"),
		Gclid:       queryPtr(c, "gclid"),
		Fbclid:      queryPtr(c, "fbclid"),
		UtmSource:   queryPtr(c, "utm_source"),
		UtmMedium:   queryPtr(c, "utm_medium"),
		UtmCampaign: queryPtr(c, "utm_campaign"),
		UtmTerm:     queryPtr(c, "utm_term"),
		UtmContent:  queryPtr(c, "utm_content"),
	}

	if ip := observability.GetClientIP(c); ip != "" {
		params.IPAddress = &ip
	}
	if ua := observability.GetUserAgent(c); ua != "" {
		params.UserAgent = &ua
	}
	if device := observability.GetDeviceType(c); device != "unknown" {
		params.DeviceType = &device
	}

	result, err := h.processor.ResolveClick(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, processor.ErrLinkNotFound):
			c.String(http.StatusNotFound, "tracking link not found")
		case errors.Is(err, processor.ErrNoDestination):
			c.String(http.StatusBadRequest, "tracking link has no whatsapp destination")
		default:
			h.logger.Error(ctx, "failed to resolve tracked click", err)
			c.String(http.StatusInternalServerError, "internal error")
		}
		return
	}

	c.Redirect(http.StatusFound, result.RedirectURL)
}

func queryPtr(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
