package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"contractapi/internal/config"
	"contractapi/internal/model"
)

type fakeGenerator struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeGenerator) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	return f.resp, f.err
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{Provider: "googleai", Model: "gemini-2.5-pro", Temperature: 0.1}
}

func TestClient_Complete(t *testing.T) {
	gen := &fakeGenerator{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "  {\"summary\":\"ok\"}\n"}},
	}}
	c := NewWithGenerator(gen, testConfig(), nil)

	out, err := c.Complete(context.Background(), "extract this")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)

	require.Len(t, gen.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, gen.messages[0].Role)
	assert.Equal(t, llms.TextContent{Text: "extract this"}, gen.messages[0].Parts[0])
	assert.InDelta(t, 0.1, gen.opts.Temperature, 1e-9)
}

func TestClient_Complete_Errors(t *testing.T) {
	t.Run("empty choices", func(t *testing.T) {
		c := NewWithGenerator(&fakeGenerator{resp: &llms.ContentResponse{}}, testConfig(), nil)
		_, err := c.Complete(context.Background(), "p")
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.Equal(t, model.KindUnknownModel, Classify(err))
	})

	t.Run("generator error is returned as is", func(t *testing.T) {
		boom := errors.New("model is overloaded")
		c := NewWithGenerator(&fakeGenerator{err: boom}, testConfig(), nil)
		_, err := c.Complete(context.Background(), "p")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context stops at the limiter", func(t *testing.T) {
		cfg := testConfig()
		cfg.RequestsPerSecond = 0.001
		gen := &fakeGenerator{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "x"}}}}
		c := NewWithGenerator(gen, cfg, nil)

		_, err := c.Complete(context.Background(), "first")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = c.Complete(ctx, "second")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, model.KindTimeout, Classify(err))
		assert.False(t, IsRetryable(err))
		assert.Equal(t, "first", gen.messages[0].Parts[0].(llms.TextContent).Text)
	})

	t.Run("wait past the deadline is a timeout", func(t *testing.T) {
		cfg := testConfig()
		cfg.RequestsPerSecond = 0.001
		gen := &fakeGenerator{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "x"}}}}
		c := NewWithGenerator(gen, cfg, nil)

		_, err := c.Complete(context.Background(), "first")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, err = c.Complete(ctx, "second")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, model.KindTimeout, Classify(err))
		assert.NotContains(t, strings.ToLower(err.Error()), "rate limit")
	})
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.LLMConfig{Provider: "bard"}, nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.ErrorKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "overloaded text", err: errors.New("Service Overloaded, try later"), want: model.KindModelOverloaded},
		{name: "rate limit text", err: errors.New("429: Rate Limit reached for requests"), want: model.KindRateLimited},
		{name: "too many requests text", err: errors.New("Too Many Requests"), want: model.KindRateLimited},
		{name: "quota text", err: errors.New("Quota Exceeded for project"), want: model.KindQuotaExceeded},
		{name: "invalid key", err: errors.New("Invalid API key"), want: model.KindUnknownModel},
		{name: "wrapped text", err: fmt.Errorf("generate: %w", errors.New("model overloaded")), want: model.KindModelOverloaded},
		{name: "grpc unavailable", err: status.Error(codes.Unavailable, "backend down"), want: model.KindModelOverloaded},
		{name: "grpc exhausted quota", err: status.Error(codes.ResourceExhausted, "Quota exceeded for metric"), want: model.KindQuotaExceeded},
		{name: "grpc exhausted rate", err: status.Error(codes.ResourceExhausted, "requests per minute"), want: model.KindRateLimited},
		{name: "grpc permission denied", err: status.Error(codes.PermissionDenied, "API key not valid"), want: model.KindUnknownModel},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: model.KindTimeout},
		{name: "cancelled wins over text", err: fmt.Errorf("rate limiter: %w", context.Canceled), want: model.KindTimeout},
		{name: "pipeline error keeps kind", err: model.NewPipelineError(model.KindStorage, "upload failed", nil), want: model.KindStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("the model is overloaded")))
	assert.True(t, IsRetryable(status.Error(codes.ResourceExhausted, "slow down")))
	assert.False(t, IsRetryable(errors.New("Invalid API key")))
	assert.False(t, IsRetryable(nil))
}
