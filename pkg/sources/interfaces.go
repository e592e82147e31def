package sources

import (
	"context"

	"github.com/samvad-hq/embedefy-bridge/pkg/httpclient"
)

// Input is one text to embed.
type Input struct {
	ID   string
	Text string
}

// Reader extracts inputs for a source. Implementations are selected by Source.Type.
type Reader interface {
	Type() string
	Read(ctx context.Context, src Source) ([]Input, error)
}

// ReaderRegistry resolves the reader implementation for a given source.
type ReaderRegistry interface {
	ReaderFor(src Source) (Reader, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client
