// Package llm wraps the generative model used to extract contract data.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"contractapi/internal/config"
)

var (
	ErrUnknownProvider = errors.New("llm: unknown provider")
	ErrEmptyResponse   = errors.New("llm: model returned no choices")
)

// Generator is the part of llms.Model the client needs.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Client sends a single prompt to the model and returns the full response text.
// It is safe for concurrent use.
type Client struct {
	gen         Generator
	model       string
	temperature float64
	limiter     *rate.Limiter
	log         *zap.Logger
}

// New builds a client for the configured provider.
func New(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (*Client, error) {
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case "googleai":
		// The Gemini SDK dials gRPC; a custom HTTP client would also drop the API key.
		gen, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
			openai.WithHTTPClient(httpClient),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		gen, err = openai.New(opts...)
	case "ollama":
		opts := []ollama.Option{
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		gen, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize %s model: %w", cfg.Provider, err)
	}

	return NewWithGenerator(gen, cfg, log), nil
}

// NewWithGenerator wraps an existing generator. A RequestsPerSecond of zero
// disables client-side throttling.
func NewWithGenerator(gen Generator, cfg config.LLMConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		gen:         gen,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     rate.NewLimiter(limit, burst),
		log:         log,
	}
}

// Complete sends prompt as a single human message and waits for the whole
// response; nothing is streamed.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		// The limiter refuses early when the wait would outlive the deadline.
		if cerr := ctx.Err(); cerr != nil {
			err = cerr
		} else if _, ok := ctx.Deadline(); ok {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return "", fmt.Errorf("llm throttle wait: %w", err)
	}

	start := time.Now()
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := c.gen.GenerateContent(ctx, content, llms.WithTemperature(c.temperature))
	if err != nil {
		c.log.Warn("llm.complete.error",
			zap.String("model", c.model),
			zap.String("kind", string(Classify(err))),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := resp.Choices[0].Content
	c.log.Info("llm.complete.ok",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("response_len", len(text)),
		zap.String("stop_reason", resp.Choices[0].StopReason),
		zap.Duration("elapsed", time.Since(start)),
	)
	return strings.TrimSpace(text), nil
}
