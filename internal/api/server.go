// Package api provides the HTTP server and handlers for the Muza service.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/muzaapp/muza-server/internal/domain"
	"github.com/muzaapp/muza-server/internal/ingest"
	"github.com/muzaapp/muza-server/internal/search"
	"github.com/muzaapp/muza-server/internal/validation"
)

// ingestor runs the upload pipeline for one file.
type ingestor interface {
	Ingest(ctx context.Context, data []byte, filename string) (*ingest.Result, error)
}

// searcher queries the search index.
type searcher interface {
	Search(ctx context.Context, params search.Params) (*search.Result, error)
}

// catalogReader is the read-side of the catalog the API exposes.
type catalogReader interface {
	GetArtist(ctx context.Context, artistID string) (*domain.Artist, error)
	ListArtists(ctx context.Context) ([]domain.Artist, error)
	GetAlbum(ctx context.Context, albumID string) (*domain.Album, error)
	ListAlbumsByArtist(ctx context.Context, artistID string) ([]domain.Album, error)
	GetTrack(ctx context.Context, trackID string) (*domain.Track, error)
	ListTracksByAlbum(ctx context.Context, albumID string) ([]domain.Track, error)
	ListRecentTracks(ctx context.Context, limit int) ([]domain.Track, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	pipeline      ingestor
	catalog       catalogReader
	search        searcher
	filesRoot     string
	maxUploadSize int64
	router        *chi.Mux
	validator     *validation.Validator
	logger        *slog.Logger
}

// Config carries the server's tunables.
type Config struct {
	FilesRoot     string // local directory served under /files/
	MaxUploadSize int64  // bytes
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(pipeline ingestor, cat catalogReader, idx searcher, cfg Config, logger *slog.Logger) *Server {
	s := &Server{
		pipeline:      pipeline,
		catalog:       cat,
		search:        idx,
		filesRoot:     cfg.FilesRoot,
		maxUploadSize: cfg.MaxUploadSize,
		router:        chi.NewRouter(),
		validator:     validation.New(),
		logger:        logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/search", s.handleSearch)

		r.Route("/artists", func(r chi.Router) {
			r.Get("/", s.handleListArtists)
			r.Get("/{id}", s.handleGetArtist)
			r.Get("/{id}/albums", s.handleGetArtistAlbums)
		})

		r.Route("/albums", func(r chi.Router) {
			r.Get("/{id}", s.handleGetAlbum)
			r.Get("/{id}/tracks", s.handleGetAlbumTracks)
		})

		r.Route("/tracks", func(r chi.Router) {
			r.Get("/", s.handleListRecentTracks)
			r.Get("/{id}", s.handleGetTrack)
		})
	})

	// Stored audio and covers.
	if s.filesRoot != "" {
		fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(s.filesRoot)))
		s.router.Get("/files/*", fileServer.ServeHTTP)
	}
}
