package handler

import (
	"net/http"

	"whatsapp-hub/internal/apierrors"
	"whatsapp-hub/internal/links/processor"
	"whatsapp-hub/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	processor processor.LinkProcessor
	logger    *observability.Logger
}

func New(processor processor.LinkProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// CreateLinkRequest represents the HTTP request for creating a tracking link
type CreateLinkRequest struct {
	Slug             string  `json:"slug" binding:"required,min=1,max=64"`
	Name             string  `json:"name" binding:"required,min=1,max=255"`
	Platform         *string `json:"platform,omitempty" binding:"omitempty,oneof=meta google social"`
	WhatsAppNumber   *string `json:"whatsapp_number,omitempty"`
	DestinationURL   *string `json:"destination_url,omitempty" binding:"omitempty,url"`
	PreFilledMessage *string `json:"pre_filled_message,omitempty" binding:"omitempty,max=1024"`
}

// UpdateLinkRequest represents the HTTP request for updating a tracking link
type UpdateLinkRequest struct {
	Name             *string `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Platform         *string `json:"platform,omitempty" binding:"omitempty,oneof=meta google social"`
	WhatsAppNumber   *string `json:"whatsapp_number,omitempty"`
	DestinationURL   *string `json:"destination_url,omitempty" binding:"omitempty,url"`
	PreFilledMessage *string `json:"pre_filled_message,omitempty" binding:"omitempty,max=1024"`
}

// HandleCreateLink creates a new tracking link
func (h *Handler) HandleCreateLink(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "slug", Value: req.Slug})

	link, err := h.processor.CreateLink(ctx, userID, processor.CreateLinkParams{
		Slug:             req.Slug,
		Name:             req.Name,
		Platform:         req.Platform,
		WhatsAppNumber:   req.WhatsAppNumber,
		DestinationURL:   req.DestinationURL,
		PreFilledMessage: req.PreFilledMessage,
	})
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// HandleListLinks lists the user's tracking links
func (h *Handler) HandleListLinks(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	links, err := h.processor.ListLinks(ctx, userID)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

// HandleGetLink retrieves a tracking link by ID
func (h *Handler) HandleGetLink(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	linkID, ok := h.getLinkID(c)
	if !ok {
		return
	}

	link, err := h.processor.GetLink(ctx, userID, linkID)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// HandleUpdateLink applies a partial update to a tracking link
func (h *Handler) HandleUpdateLink(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	linkID, ok := h.getLinkID(c)
	if !ok {
		return
	}

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	link, err := h.processor.UpdateLink(ctx, userID, linkID, processor.UpdateLinkParams{
		Name:             req.Name,
		Platform:         req.Platform,
		WhatsAppNumber:   req.WhatsAppNumber,
		DestinationURL:   req.DestinationURL,
		PreFilledMessage: req.PreFilledMessage,
	})
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// HandleArchiveLink soft-deletes a tracking link
func (h *Handler) HandleArchiveLink(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	linkID, ok := h.getLinkID(c)
	if !ok {
		return
	}

	if err := h.processor.ArchiveLink(ctx, userID, linkID); err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleRestoreLink reverses an archive
func (h *Handler) HandleRestoreLink(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	linkID, ok := h.getLinkID(c)
	if !ok {
		return
	}

	if err := h.processor.RestoreLink(ctx, userID, linkID); err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleGetLinkMetrics returns per-link click and conversation counts
func (h *Handler) HandleGetLinkMetrics(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	metrics, err := h.processor.GetLinkMetrics(ctx, userID)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": metrics})
}

func (h *Handler) getUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("User-ID")
	if !exists {
		apierrors.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(value.(string))
	if err != nil {
		apierrors.Unauthorized(c, "Invalid user identity")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Handler) getLinkID(c *gin.Context) (uuid.UUID, bool) {
	linkID, err := uuid.Parse(c.Param("linkID"))
	if err != nil {
		apierrors.BadRequest(c, "INVALID_LINK_ID", "Link ID must be a valid UUID")
		return uuid.Nil, false
	}
	return linkID, true
}
