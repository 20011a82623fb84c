package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
	"github.com/yungbote/ndtmaster-backend/internal/platform/promptstyle"
)

const (
	DefaultAnthropicModel = "claude-sonnet-4-5"
	anthropicMaxTokens    = 4096
)

type anthropicClient struct {
	log    *logger.Logger
	client anthropic.Client
	model  string
}

func NewAnthropic(log *logger.Logger, apiKey, model, baseURL string) (Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: missing API key")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if u := strings.TrimSpace(baseURL); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	return &anthropicClient{
		log:    log.With("client", "Anthropic"),
		client: anthropic.NewClient(opts...),
		model:  pickModel(model, DefaultAnthropicModel),
	}, nil
}

func (a *anthropicClient) Provider() string { return "anthropic" }

func (a *anthropicClient) Generate(ctx context.Context, req Request) (Response, error) {
	model := pickModel(req.Model, a.model)
	prompt := req.Prompt
	if req.Schema != nil {
		raw, err := json.MarshalIndent(req.Schema, "", "  ")
		if err != nil {
			return Response{}, fmt.Errorf("anthropic: encode schema: %w", err)
		}
		prompt = promptstyle.ApplyJSON(prompt, string(raw))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*req.Temperature))
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic generate: %w", err)
	}
	out := Response{
		Model:        model,
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			out.Text = block.Text
			break
		}
	}
	if strings.TrimSpace(out.Text) == "" {
		return out, fmt.Errorf("anthropic generate: no text content in response")
	}
	if req.Schema != nil {
		out.Text = promptstyle.StripFences(out.Text)
	}
	a.log.Debug("anthropic response", "model", model, "chars", len(out.Text), "tokens_in", out.InputTokens, "tokens_out", out.OutputTokens)
	return out, nil
}
