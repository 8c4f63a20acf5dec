// Package server exposes the HTTP surface: query processing, auth, chat
// persistence and movie-metadata lookups.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"movierag/internal/auth"
	"movierag/internal/common/config"
	"movierag/internal/common/logger"
	"movierag/internal/common/observability"
	"movierag/internal/history"
	"movierag/internal/models"
	"movierag/internal/router"
	"movierag/internal/tmdb"
)

// QueryProcessor runs one query through the pipeline.
type QueryProcessor interface {
	Process(ctx context.Context, username, query string) (*models.AgentResponse, error)
}

// MetadataClient resolves trailer and poster URLs.
type MetadataClient interface {
	TrailerURL(ctx context.Context, title string) (string, error)
	PosterURL(ctx context.Context, title string) (string, error)
}

// Server holds the wired collaborators behind the HTTP handlers.
type Server struct {
	cfg     config.ServerConfig
	queries QueryProcessor
	auth    *auth.Service
	chats   *history.Store
	tmdb    MetadataClient
	obs     *observability.Observability
	logger  logger.Logger
}

func New(
	cfg config.ServerConfig,
	queries QueryProcessor,
	authSvc *auth.Service,
	chats *history.Store,
	metadata MetadataClient,
	obs *observability.Observability,
	log logger.Logger,
) *Server {
	return &Server{
		cfg:     cfg,
		queries: queries,
		auth:    authSvc,
		chats:   chats,
		tmdb:    metadata,
		obs:     obs,
		logger: log.With(map[string]interface{}{
			"component": "http",
		}),
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	allowed := s.cfg.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.obs.MetricsHandler())

	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)

	r.Route("/users/{username}/chats", func(r chi.Router) {
		r.Get("/", s.handleListChats)
		r.Post("/", s.handleCreateChat)
		r.Put("/{chatID}", s.handleUpsertChat)
		r.Delete("/{chatID}", s.handleDeleteChat)
	})

	r.Get("/process_query/{query}", s.handleProcessQuery)
	r.Get("/get_trailer/{movieTitle}", s.handleTrailer)
	r.Get("/get_image/{movieTitle}", s.handleImage)

	return r
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

var _ QueryProcessor = (*router.Router)(nil)
var _ MetadataClient = (*tmdb.Client)(nil)
