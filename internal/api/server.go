// Package api provides the HTTP API server and handlers for GameVault.
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

	"github.com/gamevault/gamevault-server/internal/auth"
	"github.com/gamevault/gamevault-server/internal/catalog"
	"github.com/gamevault/gamevault-server/internal/ratelimit"
	"github.com/gamevault/gamevault-server/internal/search"
	"github.com/gamevault/gamevault-server/internal/service"
	"github.com/gamevault/gamevault-server/internal/sse"
	"github.com/gamevault/gamevault-server/internal/store"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Auth      *service.AuthService
	TierLists *service.TierListService
	Favorites *service.FavoritesService
}

// Options configures the HTTP surface.
type Options struct {
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	RateLimitBurst     int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       *store.Store
	catalog     *catalog.Catalog
	suggestions *search.SuggestionIndex
	services    *Services
	sseManager  *sse.Manager
	rateLimiter *ratelimit.KeyedRateLimiter
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st *store.Store,
	cat *catalog.Catalog,
	suggestions *search.SuggestionIndex,
	services *Services,
	sseManager *sse.Manager,
	opts Options,
	logger *slog.Logger,
) *Server {
	perMinute := opts.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 120
	}
	burst := opts.RateLimitBurst
	if burst <= 0 {
		burst = 30
	}

	s := &Server{
		store:       st,
		catalog:     cat,
		suggestions: suggestions,
		services:    services,
		sseManager:  sseManager,
		rateLimiter: ratelimit.New(ratelimit.PerInterval(perMinute, time.Minute), burst),
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("GameVault API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerAuthRoutes()
	s.registerTierListRoutes()
	s.registerFavoriteRoutes()
	s.registerEventRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API (OpenAPI document, tests).
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources owned by the server.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", auth.HeaderAuthToken},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.rateLimiter, s.logger))
	s.router.Use(authMiddleware(s.services.Auth, s.logger))
}

// registerEventRoutes mounts the SSE stream. It bypasses huma: the response is a stream, not a body.
func (s *Server) registerEventRoutes() {
	handler := sse.NewHandler(s.sseManager, func(r *http.Request) string {
		return actorFrom(r.Context()).UserID
	}, s.logger)
	s.router.Get("/api/events", handler.ServeHTTP)
}
