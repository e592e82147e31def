package publishers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/embedefy-bridge/internal/registryfile"
)

// Supported publisher types.
const (
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
)

const defaultHTTPTimeoutSeconds = 5

// PublisherConfig is one entry of the publishers file. Exactly the block
// matching Type is used.
type PublisherConfig struct {
	ID        string                    `json:"id" yaml:"id"`
	Type      string                    `json:"type" yaml:"type"`
	Enabled   *bool                     `json:"enabled" yaml:"enabled"`
	HTTP      *HTTPPublisherConfig      `json:"http" yaml:"http"`
	SQS       *SQSPublisherConfig       `json:"sqs" yaml:"sqs"`
	SNS       *SNSPublisherConfig       `json:"sns" yaml:"sns"`
	GCPPubSub *GCPPubSubPublisherConfig `json:"gcp_pubsub" yaml:"gcp_pubsub"`
}

// HTTPPublisherConfig posts events as JSON to a webhook.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SQSPublisherConfig sends events to an AWS SQS queue.
type SQSPublisherConfig struct {
	QueueURL string `json:"uri" yaml:"uri"`
	Region   string `json:"region" yaml:"region"`
}

// SNSPublisherConfig publishes events to an AWS SNS topic.
type SNSPublisherConfig struct {
	TopicARN string `json:"topic_arn" yaml:"topic_arn"`
	Region   string `json:"region" yaml:"region"`
}

// GCPPubSubPublisherConfig publishes events to a Google Cloud Pub/Sub topic.
// An empty CredentialsFile uses application default credentials.
type GCPPubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// EnabledValue reports whether the publisher is enabled; unset means enabled.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// normalize returns a trimmed copy with defaults applied. Nested blocks are
// copied so the caller's config is left untouched.
func (cfg PublisherConfig) normalize() PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if h := cfg.HTTP; h != nil {
		c := HTTPPublisherConfig{
			URL:            strings.TrimSpace(h.URL),
			Method:         strings.ToUpper(strings.TrimSpace(h.Method)),
			Headers:        trimHeaders(h.Headers),
			TimeoutSeconds: h.TimeoutSeconds,
		}
		if c.Method == "" {
			c.Method = http.MethodPost
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = defaultHTTPTimeoutSeconds
		}
		cfg.HTTP = &c
	}
	if s := cfg.SQS; s != nil {
		cfg.SQS = &SQSPublisherConfig{
			QueueURL: strings.TrimSpace(s.QueueURL),
			Region:   strings.TrimSpace(s.Region),
		}
	}
	if s := cfg.SNS; s != nil {
		cfg.SNS = &SNSPublisherConfig{
			TopicARN: strings.TrimSpace(s.TopicARN),
			Region:   strings.TrimSpace(s.Region),
		}
	}
	if g := cfg.GCPPubSub; g != nil {
		cfg.GCPPubSub = &GCPPubSubPublisherConfig{
			ProjectID:       strings.TrimSpace(g.ProjectID),
			Topic:           strings.TrimSpace(g.Topic),
			CredentialsFile: strings.TrimSpace(g.CredentialsFile),
		}
	}
	return cfg
}

// validate checks the block required by the publisher type.
func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	var missing string
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeHTTP:
		missing = firstMissing(cfg.HTTP == nil, "http",
			field{"http.url", func() string { return cfg.HTTP.URL }})
	case TypeSQS:
		missing = firstMissing(cfg.SQS == nil, "sqs",
			field{"sqs.uri", func() string { return cfg.SQS.QueueURL }},
			field{"sqs.region", func() string { return cfg.SQS.Region }})
	case TypeSNS:
		missing = firstMissing(cfg.SNS == nil, "sns",
			field{"sns.topic_arn", func() string { return cfg.SNS.TopicARN }},
			field{"sns.region", func() string { return cfg.SNS.Region }})
	case TypeGCPPubSub:
		missing = firstMissing(cfg.GCPPubSub == nil, "gcp_pubsub",
			field{"gcp_pubsub.project_id", func() string { return cfg.GCPPubSub.ProjectID }},
			field{"gcp_pubsub.topic", func() string { return cfg.GCPPubSub.Topic }})
	default:
		return fmt.Errorf("unsupported publisher type %q for publisher %q", cfg.Type, cfg.ID)
	}

	if missing != "" {
		return fmt.Errorf("%s is required for publisher %q", missing, cfg.ID)
	}
	return nil
}

type field struct {
	name  string
	value func() string
}

// firstMissing names the block when it is absent, otherwise the first empty field.
func firstMissing(blockMissing bool, block string, fields ...field) string {
	if blockMissing {
		return block + " config"
	}
	for _, f := range fields {
		if f.value() == "" {
			return f.name
		}
	}
	return ""
}

func trimHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ConfigRegistry holds the publisher entries loaded from a file, in file order.
// It is immutable after LoadRegistry.
type ConfigRegistry struct {
	publishers []PublisherConfig
	idx        map[string]int
}

// LoadRegistry loads and validates the publishers file at path.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	var file struct {
		Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
	}
	if err := registryfile.Load(path, "publishers", &file); err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	reg := &ConfigRegistry{idx: make(map[string]int, len(file.Publishers))}
	for i, raw := range file.Publishers {
		cfg := raw.normalize()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.idx[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.idx[cfg.ID] = len(reg.publishers)
		reg.publishers = append(reg.publishers, cfg)
	}
	return reg, nil
}

// ByID returns the publisher config with the given id.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	i, ok := r.idx[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return r.publishers[i], true
}

// All returns a copy of every configured publisher.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	return append([]PublisherConfig(nil), r.publishers...)
}

// Enabled returns the publishers whose enabled flag is unset or true.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, cfg := range r.All() {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}
