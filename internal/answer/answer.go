// Package answer turns a query and its ranked sources into a prompt and
// streams the generated reply. Two backends are provided: the native Ollama
// generate API and any OpenAI-compatible chat endpoint.
package answer

import "context"

// FragmentFunc receives each text fragment as it arrives. Fragments must be
// surfaced immediately (echo-as-you-go), not buffered until stream end.
type FragmentFunc func(fragment string)

// Generator streams an answer for a prompt. The returned string is the
// concatenation of every fragment delivered to onFragment, in arrival order.
type Generator interface {
	Generate(ctx context.Context, prompt string, onFragment FragmentFunc) (string, error)
}
