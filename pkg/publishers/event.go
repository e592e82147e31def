package publishers

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event represents one embedded input published downstream.
type Event struct {
	ID         string          `json:"id"`
	SourceID   string          `json:"source_id"`
	Model      string          `json:"model"`
	InputID    string          `json:"input_id"`
	Input      string          `json:"input"`
	Data       json.RawMessage `json:"data"`
	EmbeddedAt time.Time       `json:"embedded_at"`
}

// NewEvent constructs an Event for an embedding result. data must be the
// JSON-encoded payload returned by the embeddings API.
func NewEvent(sourceID, model, inputID, input, data string) Event {
	return Event{
		ID:         uuid.NewString(),
		SourceID:   sourceID,
		Model:      model,
		InputID:    inputID,
		Input:      input,
		Data:       json.RawMessage(data),
		EmbeddedAt: time.Now().UTC(),
	}
}

// attributes returns the routing attributes attached by queue and topic sinks.
func (e Event) attributes() map[string]string {
	attrs := make(map[string]string, 2)
	if e.SourceID != "" {
		attrs["source_id"] = e.SourceID
	}
	if e.Model != "" {
		attrs["model"] = e.Model
	}
	return attrs
}
