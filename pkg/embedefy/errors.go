package embedefy

import "fmt"

// Reasons carried by FormatError.
const (
	ReasonInvalidJSON   = "failed to parse JSON"
	ReasonDataNotFound  = "data field not found in input object"
	ReasonUnknownFormat = "unknown API response format"
)

// CodeMessageUnavailable replaces the API error code when the sibling message
// field is present but cannot be read.
const CodeMessageUnavailable = "failed to allocate memory for error message"

// TransportError reports that no usable HTTP response was obtained: the client
// could not be built or the network exchange failed.
type TransportError struct {
	Detail     string
	HTTPStatus int
	Err        error
}

func (e *TransportError) Error() string {
	return "Embedefy request error: " + e.Detail
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is returned when the service answered with an error envelope.
type APIError struct {
	Code       string
	Message    *string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e.Message != nil {
		return fmt.Sprintf("Embedefy API error: %s: %s", e.Code, *e.Message)
	}
	return "Embedefy API error: " + e.Code
}

// FormatError is returned when the body matches none of the known shapes.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "failed to parse Embedefy API response: " + e.Reason
}
