package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/muzaapp/muza-server/internal/catalog"
	"github.com/muzaapp/muza-server/internal/http/response"
)

func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := s.catalog.ListArtists(r.Context())
	if err != nil {
		s.logger.Error("failed to list artists", "error", err)
		response.InternalError(w, "failed to retrieve artists", s.logger)
		return
	}
	response.Success(w, artists, s.logger)
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	artist, err := s.catalog.GetArtist(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			response.NotFound(w, "artist not found", s.logger)
			return
		}
		s.logger.Error("failed to get artist", "artist_id", id, "error", err)
		response.InternalError(w, "failed to retrieve artist", s.logger)
		return
	}
	response.Success(w, artist, s.logger)
}

func (s *Server) handleGetArtistAlbums(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	albums, err := s.catalog.ListAlbumsByArtist(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to list albums", "artist_id", id, "error", err)
		response.InternalError(w, "failed to retrieve albums", s.logger)
		return
	}
	response.Success(w, albums, s.logger)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	album, err := s.catalog.GetAlbum(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			response.NotFound(w, "album not found", s.logger)
			return
		}
		s.logger.Error("failed to get album", "album_id", id, "error", err)
		response.InternalError(w, "failed to retrieve album", s.logger)
		return
	}
	response.Success(w, album, s.logger)
}

func (s *Server) handleGetAlbumTracks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tracks, err := s.catalog.ListTracksByAlbum(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to list tracks", "album_id", id, "error", err)
		response.InternalError(w, "failed to retrieve tracks", s.logger)
		return
	}
	response.Success(w, tracks, s.logger)
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	track, err := s.catalog.GetTrack(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			response.NotFound(w, "track not found", s.logger)
			return
		}
		s.logger.Error("failed to get track", "track_id", id, "error", err)
		response.InternalError(w, "failed to retrieve track", s.logger)
		return
	}
	response.Success(w, track, s.logger)
}

func (s *Server) handleListRecentTracks(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	tracks, err := s.catalog.ListRecentTracks(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list recent tracks", "error", err)
		response.InternalError(w, "failed to retrieve tracks", s.logger)
		return
	}
	response.Success(w, tracks, s.logger)
}
