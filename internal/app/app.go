package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goanswer/internal/answer"
	"github.com/hyperifyio/goanswer/internal/embed"
	"github.com/hyperifyio/goanswer/internal/fetch"
	"github.com/hyperifyio/goanswer/internal/rank"
	"github.com/hyperifyio/goanswer/internal/search"
	"github.com/hyperifyio/goanswer/internal/sift"
	"github.com/hyperifyio/goanswer/internal/source"
)

// collector abstracts the source collector for tests.
type collector interface {
	Collect(ctx context.Context, results []search.Result, required int) []source.Source
}

// App drives one interactive session: per query it classifies, searches,
// collects, ranks, and streams an answer, then waits for the next query.
type App struct {
	cfg       Config
	provider  search.Provider
	collector collector
	embedder  embed.Embedder
	generator answer.Generator

	// last completed exchange, kept for the /save transcript command
	lastQuery  string
	lastAnswer string
}

// New wires the production pipeline. When web search is enabled the
// embedding model availability check runs here and its failure is fatal:
// no retrieval can work without embeddings, so the caller should exit.
// A general-only session (no SearxURL) never touches the embedder.
func New(ctx context.Context, cfg Config) (*App, error) {
	cfg = cfg.withDefaults()

	var embedder *embed.Client
	if cfg.SearxURL != "" {
		var err error
		embedder, err = embed.New(cfg.OllamaHost, cfg.EmbedModel)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
		if err := embedder.Ensure(ctx); err != nil {
			return nil, fmt.Errorf("ensure embedding model: %w", err)
		}
	}

	var err error
	var gen answer.Generator
	if cfg.LLMBaseURL != "" {
		gen, err = answer.NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.GenModel)
	} else {
		var o *answer.Ollama
		o, err = answer.NewOllama(cfg.OllamaHost, cfg.GenModel)
		if err == nil {
			o.NumCtx = cfg.NumCtx
			o.Temperature = cfg.Temperature
		}
		gen = o
	}
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}

	a := &App{cfg: cfg, generator: gen}
	if cfg.SearxURL != "" {
		a.embedder = embedder
		a.collector = &source.Collector{
			Fetcher: &fetch.Client{
				HTTPClient: &http.Client{},
				UserAgent:  cfg.FetchUserAgent,
				Timeout:    cfg.FetchTimeout,
			},
			Embedder:        embedder,
			MaxContentChars: cfg.MaxContentChars,
		}
		a.provider = &search.SearxNG{
			BaseURL:    cfg.SearxURL,
			APIKey:     cfg.SearxKey,
			UserAgent:  cfg.SearxUA,
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
		}
	}
	return a, nil
}

// RunInteractive reads one query per line until the exit sentinel. Failures
// inside a query never abort the loop; it always returns to the prompt.
func (a *App) RunInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "exit"):
			fmt.Fprintln(out, "Bye.")
			return nil
		case strings.HasPrefix(line, "/save"):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/save"))
			if path == "" {
				path = "transcript.pdf"
			}
			if err := a.SaveTranscript(path); err != nil {
				log.Warn().Err(err).Msg("transcript export failed")
				fmt.Fprintln(out, "Could not save transcript.")
			} else {
				fmt.Fprintf(out, "Saved transcript to %s\n", path)
			}
			continue
		}
		if err := a.Ask(ctx, line, out); err != nil {
			log.Warn().Err(err).Msg("answer failed")
			fmt.Fprintln(out, "Sorry, something went wrong answering that.")
		}
	}
}

// Ask runs the full state machine for one query and streams the answer to
// out. Search and collection failures degrade to the general-knowledge path.
// A generation failure on the grounded path gets one retry against the
// general-knowledge prompt; only a failure of that last resort surfaces as an
// error.
func (a *App) Ask(ctx context.Context, query string, out io.Writer) error {
	prompt, grounded := a.buildPrompt(ctx, query)

	fmt.Fprint(out, "\nAssistant: ")
	full, err := a.generator.Generate(ctx, prompt, func(frag string) {
		fmt.Fprint(out, frag)
	})
	if err != nil && grounded {
		log.Warn().Err(err).Msg("grounded generation failed, answering from general knowledge")
		full, err = a.generator.Generate(ctx, answer.GeneralPrompt(query), func(frag string) {
			fmt.Fprint(out, frag)
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)
	if err != nil {
		return err
	}
	a.lastQuery, a.lastAnswer = query, full
	return nil
}

// buildPrompt walks Classify → WebSearch → Collect → Rank, falling back to
// the general-knowledge prompt at every failure edge. The second return
// reports whether the prompt carries source context.
func (a *App) buildPrompt(ctx context.Context, query string) (string, bool) {
	if !a.wantsWebSearch(query) || a.provider == nil {
		log.Debug().Msg("general-knowledge mode")
		return answer.GeneralPrompt(query), false
	}

	results, err := a.provider.Search(ctx, query, a.cfg.RequiredSources*2)
	if err != nil {
		log.Warn().Err(err).Msg("web search failed, answering from general knowledge")
		return answer.GeneralPrompt(query), false
	}
	candidates := sift.Candidates(results, sift.Options{PerDomain: a.cfg.PerDomainCap})
	log.Debug().Int("results", len(results)).Int("candidates", len(candidates)).Msg("search complete")

	sources := a.collector.Collect(ctx, candidates, a.cfg.RequiredSources)
	if len(sources) == 0 {
		log.Warn().Msg("no valid content found, answering from general knowledge")
		return answer.GeneralPrompt(query), false
	}

	queryEmb := a.embedder.Embed(ctx, query)
	ranked := rank.TopK(queryEmb, sources, a.cfg.TopK)
	for _, r := range ranked {
		log.Debug().Str("url", r.URL).Float64("similarity", r.Similarity).Msg("ranked source")
	}
	return answer.GroundedPrompt(query, ranked), true
}

// wantsWebSearch classifies the query: always-search mode sends everything to
// the web, otherwise the trigger substring decides.
func (a *App) wantsWebSearch(query string) bool {
	if a.cfg.AlwaysSearch {
		return true
	}
	trigger := strings.ToLower(a.cfg.SearchTrigger)
	if trigger == "" {
		return false
	}
	return strings.Contains(strings.ToLower(query), trigger)
}
