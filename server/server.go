package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/server/endpoint"
	"github.com/kbukum/snapstudy/server/middleware"
)

// Server is the snapstudy HTTP server: a Gin engine mounted on a root
// ServeMux, wrapped by the middleware stack and served with h2c.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	config     Config
	log        *logger.Logger
	handler    http.Handler
	listener   net.Listener
	recorder   middleware.RequestRecorder
}

// New creates a new Server. No middleware or route is applied yet.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	s := &Server{
		engine:  engine,
		mux:     mux,
		config:  cfg,
		log:     log.WithComponent("server"),
		handler: mux,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(s.config.IdleTimeout) * time.Second,
	}
	s.httpServer.Handler = h2c.NewHandler(s.handler, h2s)

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": listener.Addr().String(),
	})
	return nil
}

// Stop gracefully shuts down the server. In-flight uploads get until ctx
// expires to finish.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("Server shutdown error", logger.Fields(logger.FieldError, err.Error()))
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// RecordRequests sets the recorder for request metrics. Call it before
// ApplyMiddleware.
func (s *Server) RecordRequests(rec middleware.RequestRecorder) {
	s.recorder = rec
}

// ApplyMiddleware wraps the root mux with the standard stack: recovery,
// request ID, metrics, CORS, upload rate limit, body-size limit and request
// logging.
func (s *Server) ApplyMiddleware() {
	cors := s.config.CORS
	s.handler = middleware.Chain(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.Metrics(s.recorder),
		middleware.CORS(&cors),
		middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: s.config.UploadsPerMinute,
			Paths:             []string{"/upload"},
		}),
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log),
	)(s.mux)
}

// RegisterDefaultEndpoints registers GET /health, /info and /version.
func (s *Server) RegisterDefaultEndpoints(serviceName, environment string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName, environment))
	s.engine.GET("/version", endpoint.Version())
}

// RegisterPipeline registers POST /upload.
func (s *Server) RegisterPipeline(runner endpoint.Runner) {
	s.engine.POST("/upload", endpoint.Upload(runner))
}

// RegisterAdmin registers POST /admin/capabilities/reset. Only development
// processes call it.
func (s *Server) RegisterAdmin(reg *capability.Registry) {
	s.engine.POST("/admin/capabilities/reset", endpoint.ResetCapabilities(reg))
}
