package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the optional single-file configuration schema.
// Nested sections map naturally to the flag namespace.
type FileConfig struct {
	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
		UA  string `yaml:"ua" json:"ua"`
	} `yaml:"searx" json:"searx"`

	Ollama struct {
		Host       string `yaml:"host" json:"host"`
		EmbedModel string `yaml:"embedModel" json:"embedModel"`
		GenModel   string `yaml:"genModel" json:"genModel"`
	} `yaml:"ollama" json:"ollama"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Fetch struct {
		Timeout   time.Duration `yaml:"timeout" json:"timeout"`
		UserAgent string        `yaml:"ua" json:"ua"`
	} `yaml:"fetch" json:"fetch"`

	Max struct {
		ContentChars int `yaml:"contentChars" json:"contentChars"`
		PerDomain    int `yaml:"perDomain" json:"perDomain"`
	} `yaml:"max" json:"max"`

	Gen struct {
		NumCtx      int     `yaml:"numCtx" json:"numCtx"`
		Temperature float64 `yaml:"temperature" json:"temperature"`
	} `yaml:"gen" json:"gen"`

	Sources struct {
		Required int `yaml:"required" json:"required"`
		TopK     int `yaml:"topK" json:"topK"`
	} `yaml:"sources" json:"sources"`

	Search struct {
		Trigger string `yaml:"trigger" json:"trigger"`
		Always  bool   `yaml:"always" json:"always"`
	} `yaml:"search" json:"search"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for fields that
// are unset or still carry their flag default. Flags are parsed first, so an
// explicitly-set flag wins over the file; a flag left at its default does not.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	// Defaults from flag parsing that file config may override when the flag
	// was not set explicitly.
	const searxUADefault = "goanswer/1.0 (+https://github.com/hyperifyio/goanswer)"

	if cfg.SearxURL == "" && fc.Searx.URL != "" {
		cfg.SearxURL = fc.Searx.URL
	}
	if cfg.SearxKey == "" && fc.Searx.Key != "" {
		cfg.SearxKey = fc.Searx.Key
	}
	if (cfg.SearxUA == "" || cfg.SearxUA == searxUADefault) && fc.Searx.UA != "" {
		cfg.SearxUA = fc.Searx.UA
	}
	if cfg.OllamaHost == "" && fc.Ollama.Host != "" {
		cfg.OllamaHost = fc.Ollama.Host
	}
	if cfg.EmbedModel == "" && fc.Ollama.EmbedModel != "" {
		cfg.EmbedModel = fc.Ollama.EmbedModel
	}
	if cfg.GenModel == "" && fc.Ollama.GenModel != "" {
		cfg.GenModel = fc.Ollama.GenModel
	}
	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if (cfg.FetchTimeout == 0 || cfg.FetchTimeout == DefaultFetchTimeout) && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if cfg.FetchUserAgent == "" && fc.Fetch.UserAgent != "" {
		cfg.FetchUserAgent = fc.Fetch.UserAgent
	}
	if (cfg.MaxContentChars == 0 || cfg.MaxContentChars == DefaultMaxContentChars) && fc.Max.ContentChars > 0 {
		cfg.MaxContentChars = fc.Max.ContentChars
	}
	if (cfg.PerDomainCap == 0 || cfg.PerDomainCap == DefaultPerDomainCap) && fc.Max.PerDomain > 0 {
		cfg.PerDomainCap = fc.Max.PerDomain
	}
	if cfg.NumCtx == 0 && fc.Gen.NumCtx > 0 {
		cfg.NumCtx = fc.Gen.NumCtx
	}
	if cfg.Temperature == 0 && fc.Gen.Temperature > 0 {
		cfg.Temperature = fc.Gen.Temperature
	}
	if (cfg.RequiredSources == 0 || cfg.RequiredSources == DefaultRequiredSources) && fc.Sources.Required > 0 {
		cfg.RequiredSources = fc.Sources.Required
	}
	if (cfg.TopK == 0 || cfg.TopK == DefaultTopK) && fc.Sources.TopK > 0 {
		cfg.TopK = fc.Sources.TopK
	}
	if (cfg.SearchTrigger == "" || cfg.SearchTrigger == DefaultSearchTrigger) && fc.Search.Trigger != "" {
		cfg.SearchTrigger = fc.Search.Trigger
	}
	if !cfg.AlwaysSearch && fc.Search.Always {
		cfg.AlwaysSearch = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if cfg.EmbedModel == "" && cfg.SearxURL != "" {
		return fmt.Errorf("config: embed.model is required when search is enabled")
	}
	if cfg.GenModel == "" {
		return fmt.Errorf("config: gen.model is required (or set GEN_MODEL)")
	}
	if cfg.RequiredSources < 0 || cfg.TopK < 0 || cfg.MaxContentChars < 0 {
		return fmt.Errorf("config: negative limits are not allowed")
	}
	return nil
}
