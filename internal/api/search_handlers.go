package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/muzaapp/muza-server/internal/http/response"
	"github.com/muzaapp/muza-server/internal/search"
)

// searchRequest carries the parsed search query parameters through validation.
type searchRequest struct {
	Query     string   `json:"q" validate:"max=512"`
	Types     []string `json:"type" validate:"dive,oneof=track artist album"`
	Genres    []string `json:"genre" validate:"max=10"`
	MinYear   int      `json:"min_year" validate:"gte=0,lte=3000"`
	MaxYear   int      `json:"max_year" validate:"omitempty,lte=3000,gtefield=MinYear"`
	Limit     int      `json:"limit" validate:"gte=0,lte=100"`
	Offset    int      `json:"offset" validate:"gte=0"`
	SortBy    string   `json:"sort" validate:"omitempty,oneof=relevance name title artist recent duration"`
	SortOrder string   `json:"order" validate:"omitempty,oneof=asc desc"`
}

// handleSearch runs a full-text query over the catalog.
//
// Query parameters: q (text), type (track|artist|album, repeatable), genre
// (repeatable), min_year, max_year, limit, offset, sort, order.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := searchRequest{
		Query:     strings.TrimSpace(q.Get("q")),
		Types:     q["type"],
		Genres:    q["genre"],
		MinYear:   intParam(q.Get("min_year")),
		MaxYear:   intParam(q.Get("max_year")),
		Limit:     intParam(q.Get("limit")),
		Offset:    intParam(q.Get("offset")),
		SortBy:    q.Get("sort"),
		SortOrder: q.Get("order"),
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	params := search.DefaultParams()
	params.Query = req.Query
	params.Types = req.Types
	params.Genres = req.Genres
	params.MinYear = req.MinYear
	params.MaxYear = req.MaxYear
	if req.Limit > 0 {
		params.Limit = req.Limit
	}
	params.Offset = req.Offset
	if req.SortBy != "" {
		params.SortBy = req.SortBy
	}
	if req.SortOrder != "" {
		params.SortOrder = req.SortOrder
	}

	result, err := s.search.Search(r.Context(), params)
	if err != nil {
		s.logger.Error("search failed", "query", params.Query, "error", err)
		response.InternalError(w, "search failed", s.logger)
		return
	}
	response.Success(w, result, s.logger)
}

// intParam parses a numeric query value, treating garbage as zero so the
// validator reports range errors consistently.
func intParam(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
