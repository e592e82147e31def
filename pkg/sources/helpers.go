package sources

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

func hashText(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// buildInputs trims texts, drops empty ones and removes duplicates while
// keeping first-seen order.
func buildInputs(texts []string) []Input {
	inputs := make([]Input, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		text := strings.TrimSpace(t)
		if text == "" {
			continue
		}
		id := hashText(text)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		inputs = append(inputs, Input{ID: id, Text: text})
	}
	return inputs
}

func splitLines(body []byte) []string {
	return strings.Split(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n")
}

func fetchBody(ctx context.Context, client HTTPClient, src Source) ([]byte, error) {
	resp, err := client.Get(ctx, src.Location, Headers(src))
	if err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", src.ID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("source %s returned status %d body: %s", src.ID, resp.StatusCode(), responseSnippet(body))
	}
	return body, nil
}
