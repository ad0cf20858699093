package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goanswer/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath   string
		searxURL     string
		searxKey     string
		searxUA      string
		ollamaHost   string
		embedModel   string
		genModel     string
		llmBaseURL   string
		llmKey       string
		fetchTimeout time.Duration
		contentChars int
		perDomain    int
		numCtx       int
		temperature  float64
		required     int
		topK         int
		trigger      string
		alwaysSearch bool
		verbose      bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("GOANSWER_CONFIG"), "Path to YAML/JSON config file (optional)")
	flag.StringVar(&searxURL, "searx.url", os.Getenv("SEARXNG_INSTANCE"), "SearxNG base URL; empty disables web search")
	flag.StringVar(&searxKey, "searx.key", os.Getenv("SEARX_KEY"), "SearxNG API key (optional)")
	flag.StringVar(&searxUA, "searx.ua", "goanswer/1.0 (+https://github.com/hyperifyio/goanswer)", "Custom User-Agent for SearxNG requests")
	flag.StringVar(&ollamaHost, "ollama.host", os.Getenv("OLLAMA_HOST"), "Ollama host URL for embeddings and generation")
	flag.StringVar(&embedModel, "embed.model", os.Getenv("EMBED_MODEL"), "Embedding model name")
	flag.StringVar(&genModel, "gen.model", os.Getenv("GEN_MODEL"), "Generation model name")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL; overrides native Ollama generation")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.DurationVar(&fetchTimeout, "fetch.timeout", app.DefaultFetchTimeout, "Hard per-page fetch timeout")
	flag.IntVar(&contentChars, "max.contentChars", app.DefaultMaxContentChars, "Maximum characters kept per fetched page")
	flag.IntVar(&perDomain, "max.perDomain", app.DefaultPerDomainCap, "Maximum candidate pages per domain")
	flag.IntVar(&numCtx, "num.ctx", 0, "Generation context window (0 uses model default)")
	flag.Float64Var(&temperature, "temperature", 0, "Generation temperature (0 uses model default)")
	flag.IntVar(&required, "sources.required", app.DefaultRequiredSources, "How many valid sources to collect before ranking")
	flag.IntVar(&topK, "rank.topK", app.DefaultTopK, "How many ranked sources ground the answer")
	flag.StringVar(&trigger, "search.trigger", app.DefaultSearchTrigger, "Substring that routes a query to web search")
	flag.BoolVar(&alwaysSearch, "always-search", false, "Treat every query as a web search")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		SearxURL:        searxURL,
		SearxKey:        searxKey,
		SearxUA:         searxUA,
		OllamaHost:      ollamaHost,
		EmbedModel:      embedModel,
		GenModel:        genModel,
		LLMBaseURL:      llmBaseURL,
		LLMAPIKey:       llmKey,
		FetchTimeout:    fetchTimeout,
		MaxContentChars: contentChars,
		PerDomainCap:    perDomain,
		NumCtx:          numCtx,
		Temperature:     temperature,
		RequiredSources: required,
		TopK:            topK,
		SearchTrigger:   trigger,
		AlwaysSearch:    alwaysSearch,
		Verbose:         verbose,
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.ValidateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		// Embedding model availability is the one fatal startup condition.
		log.Fatal().Err(err).Msg("startup failed")
	}

	if err := a.RunInteractive(ctx, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("session ended with error")
		os.Exit(1)
	}
}
