// Package api provides the HTTP API server and handlers for Circle.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/circleapp/circle-server/internal/sse"
	"github.com/circleapp/circle-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	// LoginRateLimit is the number of login attempts allowed per minute per IP.
	LoginRateLimit int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	feeds           store.FeedStore
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	sseManager      *sse.Manager
	sseHandler      *sse.Handler
	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	feeds store.FeedStore,
	services *Services,
	sseManager *sse.Manager,
	opts Options,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(clientInfoMiddleware)
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Circle API", Version)
	humaConfig.Info.Description = "Friends, lists and feeds."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	loginLimit := opts.LoginRateLimit
	if loginLimit <= 0 {
		loginLimit = 10
	}

	s := &Server{
		store:           st,
		feeds:           feeds,
		services:        services,
		router:          router,
		api:             api,
		logger:          logger,
		sseManager:      sseManager,
		authRateLimiter: NewRateLimiter(loginLimit, time.Minute),
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, logger)
	}

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() error {
	if s.authRateLimiter != nil {
		return s.authRateLimiter.Shutdown()
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerPostRoutes()
	s.registerFriendRoutes()
	s.registerListRoutes()
	s.registerFeedRoutes()
	s.registerFilterRoutes()
	s.registerSearchRoutes()
	s.registerEventRoutes()
}
