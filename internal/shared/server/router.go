package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-studio-backend/internal/chat"
	"resume-studio-backend/internal/coverletters"
	"resume-studio-backend/internal/resumes"
	"resume-studio-backend/internal/shared/config"
	"resume-studio-backend/internal/shared/metrics"
	"resume-studio-backend/internal/shared/server/middleware"
	"resume-studio-backend/internal/shared/server/respond"
	"resume-studio-backend/internal/updates"
)

// RouterDeps carries the constructed handlers the router wires up.
type RouterDeps struct {
	Config        config.Config
	ResumeHandler *resumes.Handler
	LetterHandler *coverletters.Handler
	ChatHandler   *chat.Handler
	Updates       *updates.Broker
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	authed := api.Group("")
	authed.Use(
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 10, Burst: 20},
				"CHAT":    {Rate: 0.5, Burst: 3},
			},
			GroupFor: func(c *gin.Context) string {
				if strings.HasPrefix(c.FullPath(), "/api/v1/chat/") {
					return "CHAT"
				}
				return ""
			},
		}),
	)

	deps.ResumeHandler.RegisterRoutes(authed)
	deps.LetterHandler.RegisterRoutes(authed)
	deps.ChatHandler.RegisterRoutes(authed)
	authed.GET("/resumes/:id/events", updates.StreamHandler(deps.Updates, updates.KindResume))
	authed.GET("/cover-letters/:id/events", updates.StreamHandler(deps.Updates, updates.KindCoverLetter))

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
