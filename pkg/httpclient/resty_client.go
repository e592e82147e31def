package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewSingleUseClient creates a RestyClient that asks the server to close the
// connection after each request, so nothing outlives the call that built it.
func NewSingleUseClient(timeout time.Duration) *RestyClient {
	c := newRestyBaseClient(timeout)
	c.SetCloseConnection(true)
	return &RestyClient{client: c}
}

// SingleUseFactory returns a Factory producing NewSingleUseClient instances.
func SingleUseFactory(timeout time.Duration) Factory {
	return func() (Client, error) {
		return NewSingleUseClient(timeout), nil
	}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
// A zero timeout means no client-side deadline.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return r.do(ctx, http.MethodGet, url, nil, headers)
}

// Post performs an HTTP POST request sending body verbatim.
func (r *RestyClient) Post(ctx context.Context, url string, body []byte, headers map[string]string) (Response, error) {
	return r.do(ctx, http.MethodPost, url, body, headers)
}

// Close releases idle connections held by the underlying transport.
func (r *RestyClient) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	r.client.GetClient().CloseIdleConnections()
	return nil
}

// do executes the request and drains the body into a growable buffer in arrival
// order. On failure the returned Response still carries the best-effort status.
func (r *RestyClient) do(ctx context.Context, method, url string, body []byte, headers map[string]string) (Response, error) {
	req := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		status := closeRaw(resp)
		return &bufferedResponse{status: status}, err
	}

	raw := resp.RawBody()
	if raw == nil {
		return &bufferedResponse{status: resp.StatusCode()}, nil
	}
	defer raw.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(raw); err != nil {
		return &bufferedResponse{status: resp.StatusCode()}, fmt.Errorf("read response body: %w", err)
	}
	return &bufferedResponse{body: buf.Bytes(), status: resp.StatusCode()}, nil
}

// closeRaw closes whatever body resty left behind on a failed request and
// returns the status it saw, if any.
func closeRaw(resp *resty.Response) int {
	if resp == nil || resp.RawResponse == nil {
		return 0
	}
	if resp.RawResponse.Body != nil {
		_ = resp.RawResponse.Body.Close()
	}
	return resp.RawResponse.StatusCode
}

// bufferedResponse holds a fully read response.
type bufferedResponse struct {
	body   []byte
	status int
}

func (r *bufferedResponse) Body() []byte    { return r.body }
func (r *bufferedResponse) StatusCode() int { return r.status }
