package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	limits "github.com/gin-contrib/size"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sathi-support/backend/internal/chat"
)

// StatsSource reports how many assistant turns each answer source produced.
type StatsSource interface {
	EscalationStats(ctx context.Context) (map[string]int64, error)
}

// Config defines server dependencies.
type Config struct {
	Chat           *chat.Service
	Stats          StatsSource
	AllowedOrigins []string
	Development    bool
	RateWindow     time.Duration
	RateMax        int
	BodyLimit      int64
}

// Server wires HTTP handlers with the chat service.
type Server struct {
	chat           *chat.Service
	stats          StatsSource
	allowedOrigins []string
	development    bool
	limiter        *ipRateLimiter
	bodyLimit      int64
	streams        *streamHub
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Chat == nil {
		return nil, errors.New("chat service required")
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = 15 * time.Minute
	}
	if cfg.RateMax <= 0 {
		cfg.RateMax = 1000
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 10 << 20
	}

	logrus.WithFields(logrus.Fields{
		"demo_mode":   cfg.Chat.DemoMode(),
		"faq_entries": cfg.Chat.Table().Len(),
		"rate_max":    cfg.RateMax,
		"rate_window": cfg.RateWindow,
		"store":       cfg.Stats != nil,
	}).Info("chat api configured")

	return &Server{
		chat:           cfg.Chat,
		stats:          cfg.Stats,
		allowedOrigins: cfg.AllowedOrigins,
		development:    cfg.Development,
		limiter:        newIPRateLimiter(cfg.RateMax, cfg.RateWindow),
		bodyLimit:      cfg.BodyLimit,
		streams:        newStreamHub(),
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.CustomRecovery(s.handlePanic))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))
	r.Use(securityHeaders(), limits.RequestSizeLimiter(s.bodyLimit))

	r.GET("/", s.handleRoot)
	r.NoRoute(s.handleNotFound)

	api := r.Group("/api", s.rateLimit())
	{
		api.GET("/health", s.handleHealth)
		api.GET("/test", s.handleTest)
		api.POST("/test", s.handleTest)
		api.POST("/chat", s.handleChat)
		api.GET("/chat/config", s.handleChatConfig)
		api.GET("/chat/ws", s.handleChatStream)
		api.GET("/faq", s.handleFAQ)
		api.GET("/stats", s.handleStats)
	}

	return r
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	for _, allowed := range s.allowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}

func (s *Server) renderError(c *gin.Context, status int, message string, details ...string) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}
