package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/search"
	"github.com/bookreview/bookreview-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/books",
		Summary:     "Search books",
		Description: "Full-text search over title, author and description with typo tolerance",
		Tags:        []string{"Search"},
	}, s.handleSearchBooks)
}

// === DTOs ===

// SearchBooksInput contains parameters for searching the catalog.
type SearchBooksInput struct {
	Query      string `query:"q" maxLength:"200" doc:"Search query. Empty lists all books."`
	CategoryID string `query:"category_id" maxLength:"64" doc:"Only books in this category"`
	Sort       string `query:"sort" enum:"relevance,title,recent" doc:"Sort order (default relevance, or title for an empty query)"`
	Limit      int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset     int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

// SearchHitResult is one matching book.
type SearchHitResult struct {
	ID          string            `json:"id" doc:"Book ID"`
	Score       float64           `json:"score" doc:"Relevance score"`
	Title       string            `json:"title" doc:"Title"`
	Author      string            `json:"author" doc:"Author"`
	PriceCents  int64             `json:"price_cents" doc:"Price in cents"`
	CategoryIDs []string          `json:"category_ids,omitempty" doc:"Category IDs"`
	Highlights  map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  uint64            `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchOutput, error) {
	result, err := s.services.Catalog.Search(ctx, service.SearchInput{
		Query:      strings.TrimSpace(input.Query),
		CategoryID: input.CategoryID,
		Limit:      input.Limit,
		Offset:     input.Offset,
		Sort:       input.Sort,
	})
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: mapSearchResult(result)}, nil
}

func mapSearchResult(result *search.Result) SearchResponse {
	resp := SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   make([]SearchHitResult, 0, len(result.Hits)),
	}
	for _, h := range result.Hits {
		resp.Hits = append(resp.Hits, SearchHitResult{
			ID:          h.ID,
			Score:       h.Score,
			Title:       h.Title,
			Author:      h.Author,
			PriceCents:  h.PriceCents,
			CategoryIDs: h.CategoryIDs,
			Highlights:  h.Highlights,
		})
	}
	return resp
}
