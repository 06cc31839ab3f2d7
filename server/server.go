package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/existflow/zebra/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
)

// Server is the sync server
type Server struct {
	db       *sql.DB
	echo     *echo.Echo
	visitors *visitorLimiter
}

// New creates a new server
func New(dbURL string) (*Server, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Server{
		db:       db,
		visitors: newVisitorLimiter(),
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		return nil, err
	}

	// Setup Echo
	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Custom logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			duration := time.Since(start)

			logger.Info("HTTP Request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("remote", req.RemoteAddr),
				logger.F("status", res.Status),
				logger.F("size", res.Size),
				logger.F("duration", duration.String()))

			// Also print to console for visibility
			fmt.Printf("REQUEST: %s %s  status=%d  size=%d  duration=%s\n",
				req.Method, req.RequestURI, res.Status, res.Size, duration)

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	api := e.Group("/api")

	// Auth endpoints (public, rate limited)
	auth := api.Group("/auth")
	auth.Use(s.rateLimitMiddleware)
	auth.POST("/register", s.handleRegister)
	auth.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/projects", s.handleListProjects)
	protected.POST("/projects", s.handleCreateProject)
	protected.GET("/projects/:id", s.handleGetProject)
	protected.PUT("/projects/:id", s.handleUpdateProject)
	protected.DELETE("/projects/:id", s.handleDeleteProject)
	protected.POST("/sessions", s.handleSaveSession)
	protected.DELETE("/sessions/:id", s.handleDeleteSession)
	protected.POST("/sync", s.handleSync)
	protected.GET("/files/:id", s.handleGetFile)
	protected.GET("/audio/:id", s.handleGetAudio)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
