package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
	"github.com/yungbote/ndtmaster-backend/internal/platform/promptstyle"
)

const DefaultGeminiModel = "gemini-2.5-pro"

type geminiClient struct {
	log    *logger.Logger
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, log *logger.Logger, apiKey, model, baseURL string) (Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if u := strings.TrimSpace(baseURL); u != "" {
		cc.HTTPOptions.BaseURL = u
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &geminiClient{
		log:    log.With("client", "Gemini"),
		client: client,
		model:  pickModel(model, DefaultGeminiModel),
	}, nil
}

func (g *geminiClient) Provider() string { return "gemini" }

func (g *geminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	model := pickModel(req.Model, g.model)
	cfg := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		cfg.Temperature = req.Temperature
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(req.Schema)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return Response{}, fmt.Errorf("gemini generate: %w", err)
	}
	out := Response{Text: resp.Text(), Model: model}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	if strings.TrimSpace(out.Text) == "" {
		return out, fmt.Errorf("gemini generate: empty response")
	}
	if req.Schema != nil {
		out.Text = promptstyle.StripFences(out.Text)
	}
	g.log.Debug("gemini response", "model", model, "chars", len(out.Text), "tokens_in", out.InputTokens, "tokens_out", out.OutputTokens)
	return out, nil
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             genai.Type(strings.ToUpper(s.Type)),
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.Order,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}
