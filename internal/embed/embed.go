// Package embed wraps the Ollama embeddings API behind a small interface the
// collector and ranker share. Model availability is verified once per process;
// individual embedding failures degrade to a nil vector rather than an error.
package embed

import "context"

// Embedder converts text to a fixed-dimension vector. A nil return means the
// text could not be embedded; callers must treat nil as having zero
// similarity to anything.
type Embedder interface {
	Embed(ctx context.Context, text string) []float64
}
