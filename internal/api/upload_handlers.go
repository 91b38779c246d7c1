package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/muzaapp/muza-server/internal/http/response"
)

// handleUpload ingests one FLAC file posted as multipart form field "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.Error(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit", s.logger)
			return
		}
		response.BadRequest(w, "invalid multipart form", s.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "form field \"file\" is required", s.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.InternalError(w, "could not read uploaded file", s.logger)
		return
	}

	result, err := s.pipeline.Ingest(r.Context(), data, header.Filename)
	if err != nil {
		s.logger.Error("upload ingestion failed", "file", header.Filename, "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, result, s.logger)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"status": "healthy"}, s.logger)
}
