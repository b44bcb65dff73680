package ai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Defaults for the hosted chat-completion endpoint.
const (
	DefaultBaseURL = "https://api.together.xyz/v1"
	DefaultModel   = "meta-llama/Llama-3.2-3B-Instruct-Turbo"
)

var (
	completionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "leetnote",
		Subsystem: "ai",
		Name:      "completion_duration_seconds",
		Help:      "Duration of chat completion requests sent to the model endpoint",
	}, []string{"model"})

	completionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leetnote",
		Subsystem: "ai",
		Name:      "completion_failures_total",
		Help:      "Number of failed chat completion requests by failure kind",
	}, []string{"model", "kind"})
)

// ClientConfig defines how the chat completion client reaches the model.
type ClientConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    zerolog.Logger
}

// Client implements Completer against an OpenAI-compatible chat completion API.
type Client struct {
	client *openai.Client
	cfg    ClientConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewClient builds a chat completion client. Requests are sent once, without retries.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/leetnote-go-api/pkg/ai"),
		logger: logger.With().Str("component", "ai_client").Logger(),
	}, nil
}

// Complete sends prompt as a single user message and returns the first choice's content.
func (c *Client) Complete(parent context.Context, prompt string) (string, error) {
	ctx, span := c.tracer.Start(parent, "ai.complete", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	completionDuration.WithLabelValues(c.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", c.fail(span, classify(err))
	}

	if len(resp.Choices) == 0 {
		return "", c.fail(span, &ProtocolError{Reason: "no choices returned"})
	}

	message := resp.Choices[0].Message
	if message.Role == "" && message.Content == "" {
		return "", c.fail(span, &ProtocolError{Reason: "first choice has no message"})
	}

	c.logger.Debug().Str("model", c.cfg.Model).Str("content", message.Content).Msg("raw model output")
	return message.Content, nil
}

func (c *Client) fail(span trace.Span, err error) error {
	completionFailures.WithLabelValues(c.cfg.Model, failureKind(err)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Error().Err(err).Str("model", c.cfg.Model).Msg("chat completion failed")
	return err
}

// classify maps go-openai errors onto the transport, upstream and protocol failure types.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &ConnectionError{Err: err}
	}

	return &ProtocolError{Reason: "undecodable response body", Err: err}
}

func failureKind(err error) string {
	var connErr *ConnectionError
	var upstreamErr *UpstreamError
	switch {
	case errors.As(err, &connErr):
		return "connection"
	case errors.As(err, &upstreamErr):
		return "upstream"
	default:
		return "protocol"
	}
}
