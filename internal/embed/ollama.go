package embed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	ollama "github.com/ollama/ollama/api"
	"github.com/rs/zerolog/log"
)

// Client implements Embedder against a local Ollama instance.
type Client struct {
	api   *ollama.Client
	model string

	ensureOnce sync.Once
	ensureErr  error
}

// New builds a client for the given host URL and embedding model. An empty
// host falls back to the OLLAMA_HOST environment convention.
func New(host, model string) (*Client, error) {
	if model == "" {
		return nil, fmt.Errorf("missing embedding model name")
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
	return &Client{api: api, model: model}, nil
}

// NewWithClient builds a client over an existing API client; used by tests
// and by callers that already hold a configured transport.
func NewWithClient(api *ollama.Client, model string) *Client {
	return &Client{api: api, model: model}
}

// Ensure verifies the embedding model is available locally, pulling it when
// absent. It runs its check at most once per process; every call observes the
// first outcome. A non-nil return means no embeddings can be produced and the
// process should stop.
func (c *Client) Ensure(ctx context.Context) error {
	c.ensureOnce.Do(func() {
		c.ensureErr = c.ensure(ctx)
	})
	return c.ensureErr
}

func (c *Client) ensure(ctx context.Context) error {
	listCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	resp, err := c.api.List(listCtx)
	if err != nil {
		return fmt.Errorf("list local models: %w", err)
	}
	for _, m := range resp.Models {
		if m.Name == c.model || m.Model == c.model {
			return nil
		}
	}

	log.Info().Str("model", c.model).Msg("embedding model not found locally, pulling")
	err = c.api.Pull(ctx, &ollama.PullRequest{Model: c.model}, func(pr ollama.ProgressResponse) error {
		if pr.Total > 0 {
			log.Debug().Str("status", pr.Status).Int64("completed", pr.Completed).Int64("total", pr.Total).Msg("pull progress")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pull model %s: %w", c.model, err)
	}
	log.Info().Str("model", c.model).Msg("embedding model ready")
	return nil
}

// Embed returns the vector for text, or nil when the call fails or the text
// is empty. Failures are logged at debug level and never propagate.
func (c *Client) Embed(ctx context.Context, text string) []float64 {
	if text == "" {
		return nil
	}
	resp, err := c.api.Embeddings(ctx, &ollama.EmbeddingRequest{Model: c.model, Prompt: text})
	if err != nil {
		log.Debug().Err(err).Msg("embedding call failed")
		return nil
	}
	return resp.Embedding
}
