package api

import (
	"net/http"

	authHandler "whatsapp-hub/internal/auth/handler"
	linksHandler "whatsapp-hub/internal/links/handler"
	metricsHandler "whatsapp-hub/internal/metrics/handler"
	"whatsapp-hub/internal/ratelimit"
	sessionHandler "whatsapp-hub/internal/session/handler"
	trackingHandler "whatsapp-hub/internal/tracking/handler"

	"github.com/gin-gonic/gin"
)

type API struct {
	router          *gin.RouterGroup
	authHandler     authHandler.Handler
	trackingHandler trackingHandler.Handler
	linksHandler    linksHandler.Handler
	metricsHandler  metricsHandler.Handler
	sessionHandler  sessionHandler.Handler
	rateLimiter     *ratelimit.Service
}

func New(
	router *gin.RouterGroup,
	authHandler authHandler.Handler,
	trackingHandler trackingHandler.Handler,
	linksHandler linksHandler.Handler,
	metricsHandler metricsHandler.Handler,
	sessionHandler sessionHandler.Handler,
	rateLimiter *ratelimit.Service,
) API {
	return API{
		router:          router,
		authHandler:     authHandler,
		trackingHandler: trackingHandler,
		linksHandler:    linksHandler,
		metricsHandler:  metricsHandler,
		sessionHandler:  sessionHandler,
		rateLimiter:     rateLimiter,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()

	// Public redirect endpoint. This is what ad clicks hit, so it carries
	// its own rate limit and no auth.
	a.router.GET("/t/:slug", a.rateLimiter.Middleware(), a.trackingHandler.HandleTrackedClick)

	apiGroup := a.router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.POST("/login/email", a.authHandler.HandleEmailLogin)
		authGroup.POST("/signup/email", a.authHandler.HandleEmailSignup)
	}
	protectedGroup := apiGroup.Group("/protected", a.authHandler.HandleJWTMiddleware)
	{
		protectedGroup.GET("/user", a.authHandler.GetUserInfo)

		protectedGroup.POST("/links", a.linksHandler.HandleCreateLink)
		protectedGroup.GET("/links", a.linksHandler.HandleListLinks)
		protectedGroup.GET("/links/metrics", a.linksHandler.HandleGetLinkMetrics)
		protectedGroup.GET("/links/:linkID", a.linksHandler.HandleGetLink)
		protectedGroup.PATCH("/links/:linkID", a.linksHandler.HandleUpdateLink)
		protectedGroup.POST("/links/:linkID/archive", a.linksHandler.HandleArchiveLink)
		protectedGroup.POST("/links/:linkID/restore", a.linksHandler.HandleRestoreLink)

		protectedGroup.GET("/metrics/overview", a.metricsHandler.HandleGetOverview)
		protectedGroup.GET("/metrics/origins", a.metricsHandler.HandleGetOriginMix)
		protectedGroup.GET("/metrics/match-quality", a.metricsHandler.HandleGetMatchQuality)
		protectedGroup.GET("/metrics/latency", a.metricsHandler.HandleGetLatency)

		protectedGroup.GET("/whatsapp/status", a.sessionHandler.HandleGetStatus)
		protectedGroup.POST("/whatsapp/status", a.sessionHandler.HandleUpdateStatus)
		protectedGroup.POST("/whatsapp/disconnect", a.sessionHandler.HandleDisconnect)
		protectedGroup.POST("/whatsapp/messages", a.sessionHandler.HandleIngestMessage)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
