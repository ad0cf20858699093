package answer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// Ollama streams completions from a local Ollama instance's generate API.
type Ollama struct {
	api   *ollama.Client
	model string

	// NumCtx and Temperature tune the generation request. Zero values fall
	// back to the server's model defaults.
	NumCtx      int
	Temperature float64
	// Stop sequences terminate generation; defaults to the interactive turn
	// marker when empty.
	Stop []string
}

// NewOllama builds a generator for the given host URL and model. An empty
// host falls back to the OLLAMA_HOST environment convention.
func NewOllama(host, model string) (*Ollama, error) {
	if model == "" {
		return nil, fmt.Errorf("missing generation model name")
	}
	var api *ollama.Client
	if host == "" {
		var err error
		api, err = ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
	} else {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host: %w", err)
		}
		api = ollama.NewClient(u, http.DefaultClient)
	}
	return &Ollama{api: api, model: model}, nil
}

// NewOllamaWithClient builds a generator over an existing API client.
func NewOllamaWithClient(api *ollama.Client, model string) *Ollama {
	return &Ollama{api: api, model: model}
}

// Generate streams fragments from /api/generate until the stream closes.
// Chunks without response text are ignored.
func (o *Ollama) Generate(ctx context.Context, prompt string, onFragment FragmentFunc) (string, error) {
	stream := true
	opts := map[string]any{}
	if o.NumCtx > 0 {
		opts["num_ctx"] = o.NumCtx
	}
	if o.Temperature > 0 {
		opts["temperature"] = o.Temperature
	}
	stop := o.Stop
	if len(stop) == 0 {
		stop = []string{"\n\nYou:"}
	}
	opts["stop"] = stop

	var sb strings.Builder
	err := o.api.Generate(ctx, &ollama.GenerateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: opts,
	}, func(resp ollama.GenerateResponse) error {
		if resp.Response == "" {
			return nil
		}
		sb.WriteString(resp.Response)
		if onFragment != nil {
			onFragment(resp.Response)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return sb.String(), nil
}
