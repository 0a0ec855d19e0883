package visibility

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

const probeMaxTokens = 1024

// Prober asks one AI assistant a question and returns its answer text.
type Prober interface {
	// Platform is the tracked platform name the answers count towards.
	Platform() string
	Ask(ctx context.Context, query string) (string, error)
}

// ProbeOptions selects the assistants to probe. A blank key disables that
// assistant. BaseURL overrides are for pointing at compatible gateways.
type ProbeOptions struct {
	AnthropicKey     string
	AnthropicModel   string
	AnthropicBaseURL string
	OpenAIKey        string
	OpenAIModel      string
	OpenAIBaseURL    string
}

// NewProbers builds the probers whose credentials are configured.
func NewProbers(opts ProbeOptions) []Prober {
	var probers []Prober
	if opts.OpenAIKey != "" {
		probers = append(probers, NewOpenAIProber(opts.OpenAIKey, opts.OpenAIModel, opts.OpenAIBaseURL))
	}
	if opts.AnthropicKey != "" {
		probers = append(probers, NewClaudeProber(opts.AnthropicKey, opts.AnthropicModel, opts.AnthropicBaseURL))
	}
	return probers
}

// ClaudeProber asks Claude through the Anthropic Messages API.
type ClaudeProber struct {
	client *anthropic.Client
	model  string
}

func NewClaudeProber(apiKey, model, baseURL string) *ClaudeProber {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL), option.WithMaxRetries(0))
	}
	client := anthropic.NewClient(opts...)
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	return &ClaudeProber{client: &client, model: model}
}

func (p *ClaudeProber) Platform() string { return "Claude" }

func (p *ClaudeProber) Ask(ctx context.Context, query string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: probeMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Claude API error: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("empty response from Claude")
}

// OpenAIProber asks ChatGPT through the chat completions API.
type OpenAIProber struct {
	client *openai.Client
	model  string
}

func NewOpenAIProber(apiKey, model, baseURL string) *OpenAIProber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIProber{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OpenAIProber) Platform() string { return "ChatGPT" }

func (p *OpenAIProber) Ask(ctx context.Context, query string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens: probeMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
