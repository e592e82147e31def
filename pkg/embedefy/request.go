package embedefy

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"

	"github.com/samvad-hq/embedefy-bridge/pkg/httpclient"
)

// RequestSpec describes one outbound call. It is not retained after Execute returns.
type RequestSpec struct {
	EndpointURL string
	Body        []byte
	BearerToken string
}

// RawResponse is the result of one HTTP exchange.
type RawResponse struct {
	Body       []byte
	HTTPStatus int
}

// Executor issues single POST requests. Every call builds its own transport
// client from the factory and closes it before returning.
type Executor struct {
	newClient httpclient.Factory
	log       Logger
}

// NewExecutor returns an Executor using factory for per-call clients.
func NewExecutor(factory httpclient.Factory, log Logger) *Executor {
	if factory == nil {
		factory = httpclient.SingleUseFactory(0)
	}
	return &Executor{newClient: factory, log: ensureLogger(log)}
}

// Execute performs one synchronous POST. A transport failure is returned as a
// *TransportError together with whatever status code was observed.
func (e *Executor) Execute(ctx context.Context, spec RequestSpec) (RawResponse, error) {
	client, err := e.newClient()
	if err != nil || client == nil {
		if client != nil {
			_ = client.Close()
		}
		return RawResponse{}, &TransportError{Detail: "failed to initialize HTTP client", Err: err}
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			e.log.WarnObj("http client close failed", "error", cerr.Error())
		}
	}()

	resp, err := client.Post(ctx, spec.EndpointURL, spec.Body, Headers(spec.BearerToken))

	var raw RawResponse
	if resp != nil {
		raw.HTTPStatus = resp.StatusCode()
	}
	if err != nil {
		return raw, &TransportError{
			Detail:     describeTransportError(err),
			HTTPStatus: raw.HTTPStatus,
			Err:        err,
		}
	}
	raw.Body = resp.Body()

	e.log.DebugObj("embedefy response received", "embedefy_response", map[string]any{
		"endpoint":    spec.EndpointURL,
		"http_status": raw.HTTPStatus,
		"body_bytes":  len(raw.Body),
	})
	return raw, nil
}

// Headers builds the request headers. Authorization is only sent for a non-empty token.
func Headers(bearerToken string) map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	if bearerToken != "" {
		headers["Authorization"] = "Bearer " + bearerToken
	}
	return headers
}

// describeTransportError maps common network failures to short descriptions.
func describeTransportError(err error) string {
	var (
		dnsErr    *net.DNSError
		netErr    net.Error
		certErr   *tls.CertificateVerificationError
		unknownCA x509.UnknownAuthorityError
		hostErr   x509.HostnameError
		recordErr tls.RecordHeaderError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout was reached"
	case errors.As(err, &dnsErr):
		return "couldn't resolve host name"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "couldn't connect to server"
	case errors.As(err, &certErr), errors.As(err, &unknownCA), errors.As(err, &hostErr), errors.As(err, &recordErr):
		return "SSL connect error"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout was reached"
	default:
		return err.Error()
	}
}
