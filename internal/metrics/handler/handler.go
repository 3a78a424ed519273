package handler

import (
	"net/http"
	"strconv"

	"whatsapp-hub/internal/apierrors"
	"whatsapp-hub/internal/metrics/processor"
	"whatsapp-hub/internal/observability"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	processor processor.MetricsProcessor
	logger    *observability.Logger
}

func New(metricsProcessor processor.MetricsProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: metricsProcessor,
		logger:    logger,
	}
}

// windowDays reads the optional ?days= lookback parameter. Invalid values
// fall back to the processor default rather than failing the request.
func windowDays(c *gin.Context) int {
	raw := c.Query("days")
	if raw == "" {
		return 0
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return days
}

func (h *Handler) HandleGetOverview(c *gin.Context) {
	overview, err := h.processor.GetOverview(c.Request.Context(), windowDays(c))
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) HandleGetOriginMix(c *gin.Context) {
	mix, err := h.processor.GetOriginMix(c.Request.Context(), windowDays(c))
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"origins": mix})
}

func (h *Handler) HandleGetMatchQuality(c *gin.Context) {
	quality, err := h.processor.GetMatchQuality(c.Request.Context(), windowDays(c))
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"methods": quality})
}

func (h *Handler) HandleGetLatency(c *gin.Context) {
	latency, err := h.processor.GetLatency(c.Request.Context(), windowDays(c))
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, latency)
}
