package handler

import (
	"errors"
	"net/http"
	"time"

	"whatsapp-hub/internal/apierrors"
	"whatsapp-hub/internal/events"
	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/session/processor"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	registry  *processor.Registry
	publisher *events.Publisher
	logger    *observability.Logger
}

func New(registry *processor.Registry, publisher *events.Publisher, logger *observability.Logger) Handler {
	return Handler{
		registry:  registry,
		publisher: publisher,
		logger:    logger,
	}
}

// UpdateStatusRequest is sent by the transport bridge when its connection
// state changes.
type UpdateStatusRequest struct {
	Status     string     `json:"status" binding:"required,oneof=CONNECTED PENDING DISCONNECTED"`
	LastPingAt *time.Time `json:"last_ping_at,omitempty"`
}

func (h *Handler) HandleGetStatus(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	state, err := h.registry.GetStatus(c.Request.Context(), userID)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) HandleUpdateStatus(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	state, err := h.registry.SetStatus(c.Request.Context(), userID, req.Status, req.LastPingAt)
	if err != nil {
		if errors.Is(err, processor.ErrInvalidStatus) {
			apierrors.BadRequest(c, "INVALID_STATUS", "Status must be one of: CONNECTED, PENDING, DISCONNECTED")
			return
		}
		apierrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) HandleDisconnect(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	state, err := h.registry.Disconnect(c.Request.Context(), userID)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// IngestMessageRequest is a received WhatsApp message reported by the
// transport bridge.
type IngestMessageRequest struct {
	WhatsAppNumber string     `json:"whatsapp_number" binding:"required"`
	LeadPhone      string     `json:"lead_phone" binding:"required"`
	MessageText    string     `json:"message_text"`
	ReceivedAt     *time.Time `json:"received_at,omitempty"`
}

// HandleIngestMessage accepts an inbound message from the transport and
// publishes it to Kafka. Attribution happens asynchronously in the worker,
// so the transport gets an answer without waiting on the waterfall.
func (h *Handler) HandleIngestMessage(c *gin.Context) {
	if _, ok := h.getUserID(c); !ok {
		return
	}

	var req IngestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	receivedAt := time.Now().UTC()
	if req.ReceivedAt != nil {
		receivedAt = req.ReceivedAt.UTC()
	}

	ctx := c.Request.Context()
	if err := h.publisher.PublishMessageReceived(ctx, req.WhatsAppNumber, req.LeadPhone, req.MessageText, receivedAt); err != nil {
		h.logger.Error(ctx, "failed to publish inbound message", err)
		apierrors.ServiceUnavailable(c, "PUBLISH_FAILED", "Could not accept the message, try again", err)
		return
	}

	c.Status(http.StatusAccepted)
}

func (h *Handler) getUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("User-ID")
	if !exists {
		apierrors.Unauthorized(c, "Missing authentication")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw.(string))
	if err != nil {
		h.logger.Error(c.Request.Context(), "invalid user id in context", err)
		apierrors.Unauthorized(c, "Invalid authentication")
		return uuid.Nil, false
	}
	return userID, true
}
