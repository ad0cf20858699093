package answer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI streams chat completions from any OpenAI-compatible endpoint,
// including Ollama's /v1 surface and llama.cpp servers.
type OpenAI struct {
	Client      *openai.Client
	Model       string
	Temperature float32
	Stop        []string
}

// NewOpenAI builds a generator against baseURL with an optional API key.
func NewOpenAI(baseURL, apiKey, model string) (*OpenAI, error) {
	if model == "" {
		return nil, fmt.Errorf("missing generation model name")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{Client: openai.NewClientWithConfig(cfg), Model: model}, nil
}

// Generate streams delta fragments until the server closes the stream.
func (o *OpenAI) Generate(ctx context.Context, prompt string, onFragment FragmentFunc) (string, error) {
	stop := o.Stop
	if len(stop) == 0 {
		stop = []string{"\n\nYou:"}
	}
	stream, err := o.Client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: o.Temperature,
		Stop:        stop,
		Stream:      true,
	})
	if err != nil {
		return "", fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stream recv: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		frag := resp.Choices[0].Delta.Content
		if frag == "" {
			continue
		}
		sb.WriteString(frag)
		if onFragment != nil {
			onFragment(frag)
		}
	}
	return sb.String(), nil
}
