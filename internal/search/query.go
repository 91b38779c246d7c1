package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string   // User's search text
	Types []string // Document types to include (empty = all)

	// Filters
	Genres  []string // Exact genre filter, OR across values
	MinYear int
	MaxYear int

	// Pagination
	Limit  int
	Offset int

	// Sorting: "relevance", "name", "artist", "recent", "duration"
	SortBy    string
	SortOrder string // "asc" or "desc"

	Highlight bool
}

// DefaultParams returns the defaults used by the API.
func DefaultParams() Params {
	return Params{
		Limit:     20,
		SortBy:    "relevance",
		SortOrder: "desc",
		Highlight: true,
	}
}

// Result is a page of search hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single search result.
type Hit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Artist     string            `json:"artist,omitzero"`
	Album      string            `json:"album,omitzero"`
	Genres     []string          `json:"genres,omitzero"`
	Duration   int               `json:"duration,omitzero"`
	Year       int               `json:"year,omitzero"`
	Highlights map[string]string `json:"highlights,omitzero"`
}

// Search executes a query against the index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
		req.Highlight.AddField("artist")
		req.Highlight.AddField("album")
	}

	req.Fields = []string{"id", "type", "name", "artist", "album", "genres", "duration", "year"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := Hit{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(t)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			h.Name = n
		}
		if a, ok := hit.Fields["artist"].(string); ok {
			h.Artist = a
		}
		if a, ok := hit.Fields["album"].(string); ok {
			h.Album = a
		}
		switch g := hit.Fields["genres"].(type) {
		case string:
			h.Genres = []string{g}
		case []any:
			for _, v := range g {
				if s, ok := v.(string); ok {
					h.Genres = append(h.Genres, s)
				}
			}
		}
		if d, ok := hit.Fields["duration"].(float64); ok {
			h.Duration = int(d)
		}
		if y, ok := hit.Fields["year"].(float64); ok {
			h.Year = int(y)
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

func buildQuery(params Params) query.Query {
	var queries []query.Query

	// Text matches on name, artist and album, with the entity's own name
	// boosted over denormalized text, plus a fuzzy match for typos and a
	// prefix match for type-ahead.
	if params.Query != "" {
		var text []query.Query

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		text = append(text, nameMatch)

		artistMatch := bleve.NewMatchQuery(params.Query)
		artistMatch.SetField("artist")
		artistMatch.SetBoost(2.0)
		text = append(text, artistMatch)

		albumMatch := bleve.NewMatchQuery(params.Query)
		albumMatch.SetField("album")
		albumMatch.SetBoost(1.5)
		text = append(text, albumMatch)

		creditsMatch := bleve.NewMatchQuery(params.Query)
		creditsMatch.SetField("credits")
		creditsMatch.SetBoost(1.0)
		text = append(text, creditsMatch)

		fuzzy := bleve.NewFuzzyQuery(params.Query)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)
		text = append(text, fuzzy)

		if len(params.Query) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if len(params.Genres) > 0 {
		genreQueries := make([]query.Query, len(params.Genres))
		for i, g := range params.Genres {
			gq := bleve.NewTermQuery(g)
			gq.SetField("genres")
			genreQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		lo := float64(params.MinYear)
		hi := float64(params.MaxYear)
		if params.MaxYear == 0 {
			hi = math.MaxFloat64
		}
		rq := bleve.NewNumericRangeQuery(&lo, &hi)
		rq.SetField("year")
		queries = append(queries, rq)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "name", "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "artist":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-artist", "-name"})
		} else {
			req.SortBy([]string{"artist", "name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	case "duration":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"duration"})
		} else {
			req.SortBy([]string{"-duration"})
		}
	default:
		req.SortBy([]string{"-_score"})
	}
}
