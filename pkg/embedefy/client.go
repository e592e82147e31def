package embedefy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/samvad-hq/embedefy-bridge/pkg/httpclient"
)

// DefaultEndpoint is the production embeddings endpoint.
const DefaultEndpoint = "https://api.embedefy.com/v1/embeddings"

// Config holds the per-client settings. An empty AccessToken sends
// unauthenticated requests; a zero Timeout means no client-side deadline.
type Config struct {
	EndpointURL string
	AccessToken string
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	c.EndpointURL = strings.TrimSpace(c.EndpointURL)
	if c.EndpointURL == "" {
		c.EndpointURL = DefaultEndpoint
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	return c
}

// Client turns (model, input) pairs into embedding payloads.
// It is safe for concurrent use.
type Client struct {
	cfg      Config
	executor *Executor
	log      Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	factory httpclient.Factory
	log     Logger
}

// WithHTTPClientFactory overrides how per-call transport clients are built.
func WithHTTPClientFactory(f httpclient.Factory) Option {
	return func(o *clientOptions) { o.factory = f }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log Logger) Option {
	return func(o *clientOptions) { o.log = log }
}

// NewClient builds a Client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()

	o := clientOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.factory == nil {
		o.factory = httpclient.SingleUseFactory(cfg.Timeout)
	}
	log := ensureLogger(o.log)

	return &Client{
		cfg:      cfg,
		executor: NewExecutor(o.factory, log),
		log:      log,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// EmbeddingRequest sends one model/input pair and returns the JSON-encoded
// embedding data. Failures are *TransportError, *APIError or *FormatError.
func (c *Client) EmbeddingRequest(ctx context.Context, model, input string) (string, error) {
	body, err := BuildRequestBody(model, input)
	if err != nil {
		return "", fmt.Errorf("encode embedding request: %w", err)
	}

	raw, err := c.executor.Execute(ctx, RequestSpec{
		EndpointURL: c.cfg.EndpointURL,
		Body:        body,
		BearerToken: c.cfg.AccessToken,
	})
	if err != nil {
		c.log.WarnObj("embedefy request failed", "embedefy_error", map[string]any{
			"endpoint": c.cfg.EndpointURL,
			"model":    model,
			"error":    err.Error(),
		})
		return "", err
	}

	switch out := Interpret(raw.Body).(type) {
	case Success:
		return out.Data, nil
	case *APIError:
		out.HTTPStatus = raw.HTTPStatus
		c.log.WarnObj("embedefy api error", "embedefy_error", map[string]any{
			"model":       model,
			"code":        out.Code,
			"http_status": raw.HTTPStatus,
		})
		return "", out
	case *FormatError:
		c.log.WarnObj("embedefy response not recognized", "embedefy_error", map[string]any{
			"model":       model,
			"reason":      out.Reason,
			"http_status": raw.HTTPStatus,
		})
		return "", out
	default:
		return "", &FormatError{Reason: ReasonUnknownFormat}
	}
}

// EmbeddingRequest is a one-shot helper building a Client for cfg.
func EmbeddingRequest(ctx context.Context, model, input string, cfg Config) (string, error) {
	return NewClient(cfg).EmbeddingRequest(ctx, model, input)
}

type requestBody struct {
	Model  string   `json:"model"`
	Inputs []string `json:"inputs"`
}

// BuildRequestBody encodes {"model": model, "inputs": [input]}. Both values are
// JSON-escaped.
func BuildRequestBody(model, input string) ([]byte, error) {
	return json.Marshal(requestBody{Model: model, Inputs: []string{input}})
}
