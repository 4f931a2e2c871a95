package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercadolabs/taskqueue/internal/api/handlers"
	apiMiddleware "github.com/mercadolabs/taskqueue/internal/api/middleware"
	"github.com/mercadolabs/taskqueue/internal/api/websocket"
	"github.com/mercadolabs/taskqueue/internal/config"
	"github.com/mercadolabs/taskqueue/internal/events"
	"github.com/mercadolabs/taskqueue/internal/taskqueue"
)

// Server wires a taskqueue.Queue to its HTTP/WebSocket control surface.
type Server struct {
	router       *chi.Mux
	queue        *taskqueue.Queue
	config       *config.Config
	taskHandler  *handlers.TaskHandler
	adminHandler *handlers.AdminHandler
	wsHub        *websocket.Hub
	wsHandler    *websocket.Handler
	publisher    events.Publisher
}

// NewServer creates an HTTP server fronting q. publisher may be nil if
// the optional Redis status mirror is disabled; the WebSocket hub is
// always wired directly to q's own status-changed callback by the
// caller, independent of publisher.
func NewServer(cfg *config.Config, q *taskqueue.Queue, publisher events.Publisher) *Server {
	wsHub := websocket.NewHub()

	s := &Server{
		router:       chi.NewRouter(),
		queue:        q,
		config:       cfg,
		taskHandler:  handlers.NewTaskHandler(q),
		adminHandler: handlers.NewAdminHandler(cfg.Queue.Name, q, publisher),
		wsHub:        wsHub,
		wsHandler:    websocket.NewHandler(wsHub),
		publisher:    publisher,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(apiMiddleware.RequestLogger())
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Heartbeat("/health"))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		if s.config.Server.RateLimitRPS > 0 {
			r.Use(apiMiddleware.ClientRateLimit(s.config.Server.RateLimitRPS))
		}

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.taskHandler.Create)
			r.Get("/", s.taskHandler.List)
			r.Get("/{taskID}", s.taskHandler.Get)
			r.Delete("/{taskID}", s.taskHandler.Cancel)
			r.Post("/{taskID}/pause", s.taskHandler.Pause)
		})
	})

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		if s.config.Auth.Enabled {
			r.Use(apiMiddleware.Auth(&apiMiddleware.AuthConfig{
				Enabled:   s.config.Auth.Enabled,
				JWTSecret: s.config.Auth.JWTSecret,
			}))
		}

		r.Get("/health", s.adminHandler.HealthCheck)
		r.Get("/queue", s.adminHandler.GetQueue)
		r.Post("/threads", s.adminHandler.ResizePool)
	})

	s.router.Get("/ws", s.wsHandler.ServeWS)

	if s.config.Metrics.Enabled {
		s.router.Handle(s.config.Metrics.Path, promhttp.Handler())
	}
}

// Start starts the WebSocket hub's background loop.
func (s *Server) Start(ctx context.Context) {
	s.wsHub.Run(ctx)
}

// Stop stops the WebSocket hub.
func (s *Server) Stop() {
	s.wsHub.Stop()
}

// Hub returns the WebSocket hub, so callers can wire a Queue's
// status-changed observer straight to Hub.Broadcast.
func (s *Server) Hub() *websocket.Hub {
	return s.wsHub
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) Publisher() events.Publisher {
	return s.publisher
}
