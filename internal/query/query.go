// Package query normalizes loosely-typed pagination, sort and search inputs
// into parameters that are safe to interpolate into a listing statement, and
// defines the response envelope shared by listing endpoints.
//
// The sort column and order are the only values that ever reach the SQL text
// itself, and both are constrained here: the column must appear in the
// caller-declared allow-list and the order collapses to the ASC/DESC enum.
// The search term is always bound as a query parameter by the repository.
package query

import (
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	// noSearch is the cache-key sentinel for an absent search term.  A fixed
	// marker keeps "no search" distinct from "search for the empty string".
	noSearch = "-"
)

// Options carries raw, untrusted listing inputs as they arrive from the
// transport layer.  Numeric fields are strings on purpose: query parameters
// are text and coercion with defaults happens in Sanitize.
type Options struct {
	Page   string
	Limit  string
	Sort   string
	Order  string
	Search string
}

// Params is the sanitized form of Options.  Sort is guaranteed to come from
// the allow-list handed to Sanitize and Order is exactly "ASC" or "DESC".
type Params struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
}

// Sanitize validates raw options against an allow-list of sortable columns.
// Invalid or non-positive page/limit fall back to 1 and 10, an unknown sort
// column falls back to defaultSort and anything that is not "asc"/"ASC"
// becomes DESC.  Malformed input is normalized, never rejected.
func Sanitize(opts Options, sortable []string, defaultSort string) Params {
	page, err := strconv.Atoi(strings.TrimSpace(opts.Page))
	if err != nil || page <= 0 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(strings.TrimSpace(opts.Limit))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}

	sort := defaultSort
	for _, col := range sortable {
		if col == opts.Sort {
			sort = col
			break
		}
	}

	order := "DESC"
	if strings.EqualFold(strings.TrimSpace(opts.Order), "ASC") {
		order = "ASC"
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Sort:   sort,
		Order:  order,
		Search: strings.TrimSpace(opts.Search),
	}
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// CacheKey derives a deterministic cache key from the full query shape so
// that semantically identical queries share an entry and distinct shapes
// never collide.
func (p Params) CacheKey(scope string) string {
	search := p.Search
	if search == "" {
		search = noSearch
	}
	return strings.Join([]string{
		scope,
		"page=" + strconv.Itoa(p.Page),
		"limit=" + strconv.Itoa(p.Limit),
		"sort=" + p.Sort,
		"order=" + p.Order,
		"search=" + search,
	}, ":")
}

// Envelope is the pagination contract returned by listing endpoints.
type Envelope struct {
	Data        any   `json:"data"`
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PerPage     int   `json:"perPage"`
}

// NewEnvelope assembles the envelope for one page of results.  A page beyond
// the available range simply carries an empty data slice.
func NewEnvelope(data any, total int64, p Params) Envelope {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Envelope{
		Data:        data,
		Total:       total,
		CurrentPage: p.Page,
		TotalPages:  pages,
		PerPage:     p.Limit,
	}
}
