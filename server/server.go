package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/existflow/eisenhower/internal/auth"
	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server is the task API
type Server struct {
	store    storage.Store
	accounts *auth.Accounts
	echo     *echo.Echo

	mu         sync.Mutex
	workspaces map[string]*workspace
}

// New creates a server persisting accounts and tasks in store
func New(store storage.Store, opts ...auth.AccountsOption) *Server {
	s := &Server{
		store:      store,
		accounts:   auth.NewAccounts(store, opts...),
		workspaces: make(map[string]*workspace),
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger)
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/password/reset", s.handlePasswordReset)
	api.POST("/password/confirm", s.handlePasswordConfirm)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)
	protected.POST("/upgrade", s.handleUpgrade)

	protected.GET("/tasks", s.handleListTasks)
	protected.POST("/tasks", s.handleCreateTask)
	protected.GET("/tasks/:id", s.handleGetTask)
	protected.PATCH("/tasks/:id", s.handleUpdateTask)
	protected.DELETE("/tasks/:id", s.handleDeleteTask)
	protected.POST("/tasks/:id/toggle", s.handleToggleTask)
	protected.POST("/tasks/:id/move", s.handleMoveTask)
	protected.GET("/matrix", s.handleMatrix)
	protected.GET("/stats", s.handleStats)
	protected.GET("/export", s.handleExport)

	s.echo = e
}

// requestLogger writes one log line per request
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		logger.Info("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))

		return nil
	}
}

// Close closes the underlying store
func (s *Server) Close() error {
	return s.store.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
