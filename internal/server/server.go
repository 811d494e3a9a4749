package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/eventseq/config"
	"github.com/jaki95/eventseq/internal/job"
	"github.com/jaki95/eventseq/internal/storage"
	"github.com/jaki95/eventseq/internal/vocab"
)

// Server exposes the vocabulary and background corpus jobs over HTTP
type Server struct {
	cfg        *config.Config
	store      storage.Storage
	vocab      *vocab.Vocabulary
	router     *gin.Engine
	jobManager *job.Manager
}

// New creates a new HTTP server instance. v may be nil, in which case the
// encode and decode endpoints answer 503.
func New(cfg *config.Config, store storage.Storage, v *vocab.Vocabulary) *Server {
	s := &Server{
		cfg:        cfg,
		store:      store,
		vocab:      v,
		router:     gin.Default(),
		jobManager: job.NewManager(),
	}
	s.setupRoutes(s.router)
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/health", s.healthCheck)

	api := router.Group("/api")
	{
		api.GET("/vocab", s.getVocab)
		api.POST("/encode", s.encode)
		api.POST("/decode", s.decode)

		api.POST("/jobs/preprocess", s.startPreprocess)
		api.GET("/jobs", s.listJobs)
		api.GET("/jobs/:id", s.getJobStatus)
		api.POST("/jobs/:id/cancel", s.cancelJob)
	}
}

// Handler returns the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.router.Run(":" + s.cfg.Server.Port)
}
