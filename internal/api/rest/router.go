// Package rest exposes the identification pipeline over HTTP: submitting
// an observed star list for pyramid identification, and generating/
// inspecting cached k-vector databases, grounded on the teacher's
// internal/api/rest/router.go (gin.Engine, route groups, CORS middleware,
// health check).
package rest

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TomCreusot/star-tracker-go/internal/api/websocket"
	"github.com/TomCreusot/star-tracker-go/internal/eventbus"
	"github.com/TomCreusot/star-tracker-go/internal/store"
)

// Config holds server configuration.
type Config struct {
	Address string
	Debug   bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	store   store.Store
	bus     eventbus.EventBus
	hub     *websocket.Hub
	logger  zerolog.Logger
	nextID  atomic.Int64
}

// NewServer creates a new HTTP server wired to a result/database cache, an
// event bus, and a WebSocket hub for progress broadcasts.
func NewServer(cfg Config, st store.Store, bus eventbus.EventBus, hub *websocket.Hub, logger zerolog.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.New(),
		store:  st,
		bus:    bus,
		hub:    hub,
		logger: logger,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/v1")

	api.GET("/health", s.healthCheck)

	api.POST("/identify", s.identify)

	dbGroup := api.Group("/databases")
	{
		dbGroup.POST("", s.generateDatabase)
		dbGroup.GET("/:id", s.getDatabase)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": "1.0.0",
	})
}
