package handler

import (
	"net/http"
	"strings"

	"whatsapp-hub/internal/apierrors"
	"whatsapp-hub/internal/auth/processor"
	"whatsapp-hub/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	authProcessor processor.AuthProcessor
	logger        *observability.Logger
}

func New(authProcessor processor.AuthProcessor, logger *observability.Logger) Handler {
	return Handler{authProcessor: authProcessor, logger: logger}
}

type EmailSignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type EmailLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *Handler) HandleEmailSignup(c *gin.Context) {
	ctx := c.Request.Context()

	var req EmailSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	user, err := h.authProcessor.Signup(ctx, req.Email, req.Password)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) HandleEmailLogin(c *gin.Context) {
	ctx := c.Request.Context()

	var req EmailLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	token, err := h.authProcessor.Login(ctx, req.Email, req.Password)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// HandleJWTMiddleware authenticates requests with a Bearer token and puts
// the user id on the gin context for downstream handlers.
func (h *Handler) HandleJWTMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tokenHeader := c.GetHeader("Authorization")
	if tokenHeader == "" || !strings.HasPrefix(tokenHeader, "Bearer ") {
		apierrors.Unauthorized(c, "Authorization token is missing or invalid")
		c.Abort()
		return
	}

	tokenString := strings.TrimPrefix(tokenHeader, "Bearer ")
	claims, err := h.authProcessor.ValidateJWTToken(ctx, tokenString)
	if err != nil {
		apierrors.Unauthorized(c, "Authorization token is invalid or expired")
		c.Abort()
		return
	}

	sub, err := claims.GetSubject()
	if err != nil {
		apierrors.Unauthorized(c, "Authorization token is invalid or expired")
		c.Abort()
		return
	}

	c.Set("User-ID", sub)
	c.Next()
}

func (h *Handler) GetUserInfo(c *gin.Context) {
	ctx := c.Request.Context()

	value, ok := c.Get("User-ID")
	if !ok {
		apierrors.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := uuid.Parse(value.(string))
	if err != nil {
		apierrors.Unauthorized(c, "Invalid user identity")
		return
	}

	user, err := h.authProcessor.GetUser(ctx, userID)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
