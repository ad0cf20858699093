package app

import "time"

// Config holds runtime configuration for the interactive session.
type Config struct {
	// Search
	SearxURL string
	SearxKey string
	SearxUA  string

	// Models
	OllamaHost string
	EmbedModel string
	GenModel   string

	// Optional OpenAI-compatible generation backend. When LLMBaseURL is set
	// it replaces the native Ollama generate API for answering.
	LLMBaseURL string
	LLMAPIKey  string

	// Fetching / content budget
	FetchTimeout    time.Duration
	FetchUserAgent  string
	MaxContentChars int
	PerDomainCap    int

	// Generation
	NumCtx      int
	Temperature float64

	// Pipeline shape
	RequiredSources int
	TopK            int

	// Mode selection: AlwaysSearch treats every query as a web search;
	// otherwise queries containing SearchTrigger go to the web.
	SearchTrigger string
	AlwaysSearch  bool

	Verbose bool
}

// defaults mirror the documented interface constants.
const (
	DefaultFetchTimeout    = 5 * time.Second
	DefaultFetchUserAgent  = "Mozilla/5.0"
	DefaultMaxContentChars = 3000
	DefaultRequiredSources = 10
	DefaultTopK            = 3
	DefaultSearchTrigger   = "search"
	DefaultPerDomainCap    = 3
)

// withDefaults fills unset fields so the rest of the app never re-checks.
func (c Config) withDefaults() Config {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.FetchUserAgent == "" {
		c.FetchUserAgent = DefaultFetchUserAgent
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = DefaultMaxContentChars
	}
	if c.RequiredSources <= 0 {
		c.RequiredSources = DefaultRequiredSources
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.SearchTrigger == "" {
		c.SearchTrigger = DefaultSearchTrigger
	}
	if c.PerDomainCap <= 0 {
		c.PerDomainCap = DefaultPerDomainCap
	}
	return c
}
