package search

import (
	"context"
)

// Result represents a single search hit from any provider. Missing title or
// snippet fields in the raw engine output map to empty strings rather than
// dropping the hit; a hit is only unusable without a URL.
type Result struct {
	URL     string
	Title   string
	Snippet string
}

// Provider is a minimal interface for search providers.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}
