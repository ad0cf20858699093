package source

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goanswer/internal/embed"
	"github.com/hyperifyio/goanswer/internal/extract"
	"github.com/hyperifyio/goanswer/internal/search"
)

// Getter abstracts the page fetcher so the collector can be exercised
// against stubs.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Collector assembles a pool of valid sources from ranked search results.
type Collector struct {
	Fetcher  Getter
	Embedder embed.Embedder
	// MaxContentChars truncates each page's flattened text. Zero means the
	// default of 3000.
	MaxContentChars int
}

const defaultMaxContentChars = 3000

// Collect scans results in order, fetching one page at a time, and keeps each
// valid source until `required` are gathered or the list runs out. Per-link
// failures are logged and skipped; a short return (possibly empty) is not an
// error — the orchestrator decides the fallback. Each fetch completes fully,
// including its embedding, before the next link is touched, so the quota is
// only ever evaluated against finished work.
func (c *Collector) Collect(ctx context.Context, results []search.Result, required int) []Source {
	if required <= 0 {
		return nil
	}
	maxChars := c.MaxContentChars
	if maxChars <= 0 {
		maxChars = defaultMaxContentChars
	}

	out := make([]Source, 0, required)
	for _, r := range results {
		if len(out) >= required {
			break
		}
		s := c.fetchOne(ctx, r, maxChars)
		if !s.Valid() {
			log.Debug().Str("url", r.URL).Int("chars", len(s.Text)).Msg("skipping link")
			continue
		}
		out = append(out, s)
	}
	return out
}

// fetchOne converts any failure into a Source with empty text and nil
// embedding; it never returns an error past this boundary.
func (c *Collector) fetchOne(ctx context.Context, r search.Result, maxChars int) Source {
	body, err := c.Fetcher.Get(ctx, r.URL)
	if err != nil {
		log.Debug().Err(err).Str("url", r.URL).Msg("fetch failed")
		return Source{URL: r.URL, Title: r.Title}
	}
	doc := extract.FromHTML(body)
	text := extract.Truncate(doc.Text, maxChars)
	s := Source{URL: r.URL, Title: pickNonEmpty(doc.Title, r.Title), Text: text}
	if s.Valid() {
		s.Embedding = c.Embedder.Embed(ctx, text)
	}
	return s
}

func pickNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
