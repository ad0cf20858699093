package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperifyio/goanswer/internal/answer"
	"github.com/hyperifyio/goanswer/internal/fetch"
	"github.com/hyperifyio/goanswer/internal/search"
	"github.com/hyperifyio/goanswer/internal/source"
)

type stubProvider struct {
	results []search.Result
	err     error
	calls   int
}

func (p *stubProvider) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	p.calls++
	return p.results, p.err
}

func (p *stubProvider) Name() string { return "stub" }

type stubCollector struct {
	sources []source.Source
	calls   int
}

func (c *stubCollector) Collect(ctx context.Context, results []search.Result, required int) []source.Source {
	c.calls++
	return c.sources
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) []float64 { return []float64{1, 0} }

type recordingGenerator struct {
	prompts []string
	reply   string
	err     error
}

func (g *recordingGenerator) Generate(ctx context.Context, prompt string, onFragment answer.FragmentFunc) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	for _, frag := range strings.SplitAfter(g.reply, " ") {
		if onFragment != nil {
			onFragment(frag)
		}
	}
	return g.reply, nil
}

func newTestApp(cfg Config, p search.Provider, c collector, g *recordingGenerator) *App {
	return &App{
		cfg:       cfg.withDefaults(),
		provider:  p,
		collector: c,
		embedder:  stubEmbedder{},
		generator: g,
	}
}

func validSource(url string) source.Source {
	return source.Source{
		URL:       url,
		Text:      strings.Repeat("relevant text ", 20),
		Embedding: []float64{1, 0},
	}
}

func TestAsk_SearchFailureFallsBackToGeneral(t *testing.T) {
	p := &stubProvider{err: errors.New("searxng status: 500")}
	g := &recordingGenerator{reply: "general answer"}
	a := newTestApp(Config{}, p, &stubCollector{}, g)

	var out bytes.Buffer
	if err := a.Ask(context.Background(), "search something topical", &out); err != nil {
		t.Fatalf("search failure must not raise past the loop: %v", err)
	}
	if len(g.prompts) != 1 {
		t.Fatalf("generator calls = %d", len(g.prompts))
	}
	if strings.Contains(g.prompts[0], "[Source:") {
		t.Fatal("fallback prompt must not carry source context")
	}
}

func TestAsk_ZeroValidSourcesFallsBackToGeneral(t *testing.T) {
	p := &stubProvider{results: []search.Result{{URL: "https://dead.example"}}}
	c := &stubCollector{} // collects nothing
	g := &recordingGenerator{reply: "general answer"}
	a := newTestApp(Config{}, p, c, g)

	var out bytes.Buffer
	if err := a.Ask(context.Background(), "search for rare topic", &out); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if c.calls != 1 {
		t.Fatalf("collector calls = %d", c.calls)
	}
	if strings.Contains(g.prompts[0], "[Source:") {
		t.Fatal("expected general-knowledge prompt when zero sources qualify")
	}
}

func TestAsk_NoTriggerSkipsWebSearch(t *testing.T) {
	p := &stubProvider{results: []search.Result{{URL: "https://a.example"}}}
	g := &recordingGenerator{reply: "Paris."}
	a := newTestApp(Config{}, p, &stubCollector{}, g)

	var out bytes.Buffer
	if err := a.Ask(context.Background(), "capital of France", &out); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("search provider called %d times for a general query", p.calls)
	}
	if strings.Contains(g.prompts[0], "[Source:") {
		t.Fatal("general query produced a grounded prompt")
	}
}

func TestAsk_AlwaysSearchModeSearchesEverything(t *testing.T) {
	p := &stubProvider{results: []search.Result{{URL: "https://a.example"}}}
	c := &stubCollector{sources: []source.Source{validSource("https://a.example")}}
	g := &recordingGenerator{reply: "answer"}
	a := newTestApp(Config{AlwaysSearch: true}, p, c, g)

	var out bytes.Buffer
	if err := a.Ask(context.Background(), "capital of France", &out); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("always-search mode skipped the provider (calls=%d)", p.calls)
	}
	if !strings.Contains(g.prompts[0], "[Source: https://a.example]") {
		t.Fatal("grounded prompt missing the collected source")
	}
}

// timeoutGetter simulates one hanging link among healthy ones.
type timeoutGetter struct {
	pages map[string]string
}

func (g *timeoutGetter) Get(ctx context.Context, url string) ([]byte, error) {
	page, ok := g.pages[url]
	if !ok {
		return nil, context.DeadlineExceeded
	}
	return []byte(page), nil
}

func TestAsk_EndToEndGroundedScenario(t *testing.T) {
	longPage := func(marker string) string {
		return "<html><body><main><p>" + marker + " " + strings.Repeat("pasta recipe steps ", 20) + "</p></main></body></html>"
	}
	p := &stubProvider{results: []search.Result{
		{URL: "https://recipes.example/one", Title: "One"},
		{URL: "https://slow.example/two", Title: "Two"},
		{URL: "https://cooking.example/three", Title: "Three"},
	}}
	c := &source.Collector{
		Fetcher: &timeoutGetter{pages: map[string]string{
			"https://recipes.example/one":   longPage("one"),
			"https://cooking.example/three": longPage("three"),
		}},
		Embedder: stubEmbedder{},
	}
	g := &recordingGenerator{reply: "Cook the pasta."}
	a := newTestApp(Config{}, p, c, g)

	var out bytes.Buffer
	if err := a.Ask(context.Background(), "search best pasta recipe", &out); err != nil {
		t.Fatalf("ask: %v", err)
	}
	prompt := g.prompts[0]
	if n := strings.Count(prompt, "[Source:"); n != 2 {
		t.Fatalf("prompt cites %d sources, want 2 (timed-out link excluded)", n)
	}
	for _, url := range []string{"https://recipes.example/one", "https://cooking.example/three"} {
		if !strings.Contains(prompt, "[Source: "+url+"]") {
			t.Errorf("prompt missing citation for %s", url)
		}
	}
	if strings.Contains(prompt, "https://slow.example/two") {
		t.Error("timed-out source leaked into the prompt")
	}
	if !strings.Contains(out.String(), "Cook the pasta.") {
		t.Errorf("streamed answer missing from output: %q", out.String())
	}
}

// sourceShyGenerator rejects prompts carrying source context but answers the
// plain general-knowledge prompt, simulating a backend that chokes on long
// grounded inputs.
type sourceShyGenerator struct {
	prompts []string
	reply   string
}

func (g *sourceShyGenerator) Generate(ctx context.Context, prompt string, onFragment answer.FragmentFunc) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if strings.Contains(prompt, "[Source:") {
		return "", errors.New("generation endpoint: 500")
	}
	if onFragment != nil {
		onFragment(g.reply)
	}
	return g.reply, nil
}

func TestAsk_GroundedGenerationFailureRetriesGeneral(t *testing.T) {
	p := &stubProvider{results: []search.Result{{URL: "https://a.example"}}}
	c := &stubCollector{sources: []source.Source{validSource("https://a.example")}}
	g := &sourceShyGenerator{reply: "general answer"}
	a := &App{
		cfg:       Config{}.withDefaults(),
		provider:  p,
		collector: c,
		embedder:  stubEmbedder{},
		generator: g,
	}

	var out bytes.Buffer
	if err := a.Ask(context.Background(), "search for something", &out); err != nil {
		t.Fatalf("general retry must absorb the grounded failure: %v", err)
	}
	if len(g.prompts) != 2 {
		t.Fatalf("generator calls = %d, want grounded then general", len(g.prompts))
	}
	if !strings.Contains(g.prompts[0], "[Source:") {
		t.Fatal("first attempt was not grounded")
	}
	if strings.Contains(g.prompts[1], "[Source:") {
		t.Fatal("retry prompt must not carry source context")
	}
	if !strings.Contains(out.String(), "general answer") {
		t.Fatalf("retry answer missing from output: %q", out.String())
	}
	if a.lastAnswer != "general answer" {
		t.Fatalf("lastAnswer = %q", a.lastAnswer)
	}
}

func TestAsk_GeneralGenerationFailureSurfaces(t *testing.T) {
	g := &recordingGenerator{err: errors.New("generation endpoint: 500")}
	a := newTestApp(Config{}, &stubProvider{}, &stubCollector{}, g)

	var out bytes.Buffer
	if err := a.Ask(context.Background(), "hello there", &out); err == nil {
		t.Fatal("general-path failure must surface")
	}
	if len(g.prompts) != 1 {
		t.Fatalf("generator calls = %d, general path must not retry", len(g.prompts))
	}
}

func TestNew_GeneralOnlyConfigSkipsEmbedder(t *testing.T) {
	cfg := Config{GenModel: "llama3"}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("general-only config must not need an embedding model: %v", err)
	}
	if a.provider != nil || a.embedder != nil {
		t.Fatal("general-only session wired search components")
	}
}

func TestRunInteractive_ExitSentinel(t *testing.T) {
	g := &recordingGenerator{reply: "unused"}
	a := newTestApp(Config{}, &stubProvider{}, &stubCollector{}, g)

	var out bytes.Buffer
	in := strings.NewReader("ExIt\n")
	if err := a.RunInteractive(context.Background(), in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(g.prompts) != 0 {
		t.Fatalf("exit sentinel reached the generator: %v", g.prompts)
	}
}

func TestRunInteractive_LoopSurvivesGenerationFailure(t *testing.T) {
	g := &recordingGenerator{err: errors.New("generation endpoint: 500")}
	a := newTestApp(Config{}, &stubProvider{}, &stubCollector{}, g)

	var out bytes.Buffer
	in := strings.NewReader("hello there\nexit\n")
	if err := a.RunInteractive(context.Background(), in, &out); err != nil {
		t.Fatalf("loop must absorb generation failures: %v", err)
	}
	if len(g.prompts) != 1 {
		t.Fatalf("generator calls = %d", len(g.prompts))
	}
	if !strings.Contains(out.String(), "something went wrong") {
		t.Fatalf("no failure notice shown: %q", out.String())
	}
}

func TestRunInteractive_BlankLinesIgnored(t *testing.T) {
	g := &recordingGenerator{reply: "hi"}
	a := newTestApp(Config{}, &stubProvider{}, &stubCollector{}, g)

	var out bytes.Buffer
	in := strings.NewReader("\n\nexit\n")
	if err := a.RunInteractive(context.Background(), in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(g.prompts) != 0 {
		t.Fatalf("blank lines reached the generator: %v", g.prompts)
	}
}

func TestSaveTranscript_RequiresAnExchange(t *testing.T) {
	a := newTestApp(Config{}, &stubProvider{}, &stubCollector{}, &recordingGenerator{})
	if err := a.SaveTranscript(t.TempDir() + "/t.pdf"); err == nil {
		t.Fatal("expected error before any exchange")
	}
}

func TestSaveTranscript_WritesPDF(t *testing.T) {
	g := &recordingGenerator{reply: "The capital of France is Paris."}
	a := newTestApp(Config{}, &stubProvider{}, &stubCollector{}, g)
	var out bytes.Buffer
	if err := a.Ask(context.Background(), "capital of France", &out); err != nil {
		t.Fatalf("ask: %v", err)
	}
	path := t.TempDir() + "/t.pdf"
	if err := a.SaveTranscript(path); err != nil {
		t.Fatalf("save: %v", err)
	}
}

// Compile-time check that the production fetcher satisfies the collector's
// Getter seam.
var _ source.Getter = (*fetch.Client)(nil)
