package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders accepted by Params.SortBy.
const (
	SortRelevance = "relevance"
	SortTitle     = "title"
	SortRecent    = "recent"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Params configures a book search.
type Params struct {
	Query      string
	CategoryID string // Only books filed under this category
	Limit      int
	Offset     int
	SortBy     string
	Highlight  bool
}

func (p *Params) normalize() {
	p.Query = strings.TrimSpace(p.Query)
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Result holds one page of search hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matching book.
type Hit struct {
	ID          string            `json:"id"`
	Score       float64           `json:"score"`
	Title       string            `json:"title"`
	Author      string            `json:"author"`
	PriceCents  int64             `json:"price_cents"`
	CategoryIDs []string          `json:"category_ids,omitempty"`
	Highlights  map[string]string `json:"highlights,omitempty"`
}

// Search runs a query against the book index.
func (s *BookIndex) Search(ctx context.Context, params Params) (*Result, error) {
	params.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)
	if params.Highlight && params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("author")
	}
	req.Fields = []string{"title", "author", "price_cents", "category_ids"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["price_cents"].(float64); ok {
			hit.PriceCents = int64(v)
		}
		hit.CategoryIDs = stringSlice(h.Fields["category_ids"])

		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, frags := range h.Fragments {
				if len(frags) > 0 {
					hit.Highlights[field] = frags[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// buildQuery matches title, author and description, with fuzzy and
// prefix variants on the title for typos and type-ahead.
func buildQuery(params Params) query.Query {
	var must []query.Query

	if params.Query != "" {
		var should []query.Query

		title := bleve.NewMatchQuery(params.Query)
		title.SetField("title")
		title.SetBoost(3.0)
		should = append(should, title)

		author := bleve.NewMatchQuery(params.Query)
		author.SetField("author")
		author.SetBoost(2.0)
		should = append(should, author)

		desc := bleve.NewMatchQuery(params.Query)
		desc.SetField("description")
		should = append(should, desc)

		words := strings.Fields(strings.ToLower(params.Query))
		for _, w := range words {
			if len(w) < 3 {
				continue
			}
			fuzzy := bleve.NewFuzzyQuery(w)
			fuzzy.SetFuzziness(1)
			fuzzy.SetField("title")
			fuzzy.SetBoost(0.8)
			should = append(should, fuzzy)
		}

		if last := words[len(words)-1]; len(last) >= 2 {
			prefix := bleve.NewPrefixQuery(last)
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			should = append(should, prefix)
		}

		must = append(must, bleve.NewDisjunctionQuery(should...))
	}

	if params.CategoryID != "" {
		cat := bleve.NewTermQuery(params.CategoryID)
		cat.SetField("category_ids")
		must = append(must, cat)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}

func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case SortTitle:
		req.SortBy([]string{"title_sort", "_id"})
	case SortRecent:
		req.SortBy([]string{"-created_at", "_id"})
	default:
		if params.Query == "" {
			req.SortBy([]string{"title_sort", "_id"})
			return
		}
		req.SortBy([]string{"-_score", "title_sort"})
	}
}

// stringSlice reads a stored field that Bleve returns as a string for
// one value and as []any for several.
func stringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
