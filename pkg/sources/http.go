package sources

import "context"

type httpReader struct {
	client HTTPClient
}

// NewHTTPReader fetches a plain-text document and reads one input per non-empty line.
func NewHTTPReader(client HTTPClient) Reader {
	return &httpReader{client: client}
}

func (h *httpReader) Type() string { return TypeHTTP }

func (h *httpReader) Read(ctx context.Context, src Source) ([]Input, error) {
	body, err := fetchBody(ctx, h.client, src)
	if err != nil {
		return nil, err
	}
	return buildInputs(splitLines(body)), nil
}
