package rest

import (
	"net/http"

	"github.com/darkdragonsastro/trackcore/internal/api/websocket"
	"github.com/darkdragonsastro/trackcore/internal/catalog"
	"github.com/darkdragonsastro/trackcore/internal/device"
	"github.com/darkdragonsastro/trackcore/internal/tracker"
	"github.com/gin-gonic/gin"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	router *gin.Engine

	starCatalog catalog.StarCatalog
	skyState    *SkyState

	trackerHandlers *TrackerHandlers
	modelHandlers   *ModelHandlers

	hub *websocket.Hub
}

// SkyState holds the observer location used by catalog visibility and
// ephemeris calculations.
type SkyState struct {
	Observer catalog.Observer
}

// Config holds server configuration.
type Config struct {
	Address string
	Debug   bool
}

// NewServer creates a new HTTP server wired to a Tracker, a model
// parameter store, the star catalog, and a live telemetry hub.
func NewServer(cfg Config, t *tracker.Tracker, paramStore *device.ParamStore, starCatalog catalog.StarCatalog, hub *websocket.Hub) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:      gin.New(),
		starCatalog: starCatalog,
		skyState: &SkyState{
			Observer: catalog.Observer{
				Latitude:  34.0522,
				Longitude: -118.2437,
				Elevation: 100,
			},
		},
		trackerHandlers: NewTrackerHandlers(t),
		modelHandlers:   NewModelHandlers(paramStore),
		hub:             hub,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")

	api.GET("/health", s.healthCheck)

	if s.hub != nil {
		s.router.GET("/ws", func(c *gin.Context) {
			s.hub.HandleWebSocket(c.Writer, c.Request)
		})
	}

	// Catalog endpoints: named-star resolution only, the lookup
	// NamedStarTarget itself performs.
	catalogGroup := api.Group("/catalog")
	{
		catalogGroup.GET("/stars/:name", s.getStarByName)
	}

	// Ephemeris endpoints
	ephemGroup := api.Group("/ephemeris")
	{
		ephemGroup.GET("/location", s.getLocation)
		ephemGroup.PUT("/location", s.setLocation)
		ephemGroup.GET("/moon", s.getMoonInfo)
		ephemGroup.GET("/sun", s.getSunInfo)
		ephemGroup.GET("/twilight", s.getTwilight)
	}

	// Tracker endpoints (read-only status/telemetry plus start/stop)
	trackerGroup := api.Group("/tracker")
	{
		trackerGroup.GET("/status", s.trackerHandlers.getStatus)
		trackerGroup.GET("/telemetry", s.trackerHandlers.getTelemetry)
		trackerGroup.POST("/start", s.trackerHandlers.start)
		trackerGroup.POST("/stop", s.trackerHandlers.stop)
	}

	// Mount model parameter endpoints
	modelGroup := api.Group("/model")
	{
		modelGroup.GET("/paramsets", s.modelHandlers.list)
		modelGroup.GET("/paramsets/active", s.modelHandlers.getActive)
		modelGroup.PUT("/paramsets/active/:id", s.modelHandlers.setActive)
		modelGroup.GET("/paramsets/:id", s.modelHandlers.get)
		modelGroup.PUT("/paramsets/:id", s.modelHandlers.put)
		modelGroup.DELETE("/paramsets/:id", s.modelHandlers.delete)
		modelGroup.POST("/fit", s.modelHandlers.fit)
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

// corsMiddleware adds CORS headers.
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

// healthCheck returns server health status, including the tracker's.
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"tracker": s.trackerHandlers.Health(),
	})
}
