package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/ndtmaster-backend/internal/observability"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

type Config struct {
	Provider string
	// Model overrides the provider default (DefaultGeminiModel,
	// DefaultAnthropicModel) when set.
	Model string
	// BaseURL points the provider SDK at a proxy or test server.
	BaseURL         string
	GeminiAPIKey    string
	AnthropicAPIKey string
	Timeout         time.Duration
}

// New builds the configured provider client wrapped with a per-call
// timeout, tracing and metrics.
func New(ctx context.Context, log *logger.Logger, cfg Config, m *observability.Metrics) (Client, error) {
	var (
		base Client
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini", "google":
		base, err = NewGemini(ctx, log, cfg.GeminiAPIKey, cfg.Model, cfg.BaseURL)
	case "anthropic", "claude":
		base, err = NewAnthropic(log, cfg.AnthropicAPIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(base, cfg.Timeout, m), nil
}

type instrumented struct {
	next    Client
	timeout time.Duration
	metrics *observability.Metrics
}

func Instrument(next Client, timeout time.Duration, m *observability.Metrics) Client {
	return &instrumented{next: next, timeout: timeout, metrics: m}
}

func (c *instrumented) Provider() string { return c.next.Provider() }

func (c *instrumented) Generate(ctx context.Context, req Request) (Response, error) {
	operation := "text"
	if req.Schema != nil {
		operation = "json"
	}
	ctx, span := observability.Tracer("llm").Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", c.next.Provider()),
		attribute.String("llm.model", req.Model),
		attribute.String("llm.operation", operation),
		attribute.Int("llm.prompt_chars", len(req.Prompt)),
	)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.next.Generate(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.metrics.ObserveLLMRequest(c.next.Provider(), resp.Model, operation, status, time.Since(start), resp.InputTokens, resp.OutputTokens)
	return resp, err
}
