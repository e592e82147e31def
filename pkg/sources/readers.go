package sources

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/embedefy-bridge/pkg/httpclient"
)

// Supported source types.
const (
	TypeFile = "file"
	TypeHTTP = "http"
	TypeHTML = "html"
)

type readerRegistry struct {
	mu      sync.RWMutex
	readers map[string]Reader
}

// NewReaderRegistry builds a registry keyed by each reader's Type.
func NewReaderRegistry(readers ...Reader) ReaderRegistry {
	reg := &readerRegistry{readers: make(map[string]Reader)}
	for _, r := range readers {
		reg.register(r)
	}
	return reg
}

func (r *readerRegistry) register(rd Reader) {
	if rd == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(rd.Type()))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.readers[key] = rd
	r.mu.Unlock()
}

// ReaderFor selects the reader for the given source type.
func (r *readerRegistry) ReaderFor(src Source) (Reader, error) {
	if r == nil {
		return nil, fmt.Errorf("reader registry is nil")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if rd, ok := r.readers[strings.ToLower(strings.TrimSpace(src.Type))]; ok {
		return rd, nil
	}
	return nil, fmt.Errorf("no reader registered for source %q (type %q)", src.ID, src.Type)
}

// DefaultHTTPClient returns the client used by remote readers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }

// DefaultReaderRegistry wires up the known readers.
func DefaultReaderRegistry(client HTTPClient) ReaderRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return NewReaderRegistry(
		NewFileReader(),
		NewHTTPReader(client),
		NewHTMLReader(client),
	)
}
