package embedefy

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func TestInterpretSuccessReturnsCompactData(t *testing.T) {
	out := Interpret([]byte(`{"inputs":[{"data":[0.1,0.2,0.3]}]}`))
	success, ok := out.(Success)
	if !ok {
		t.Fatalf("expected Success, got %#v", out)
	}
	if success.Data != "[0.1,0.2,0.3]" {
		t.Fatalf("Data = %q", success.Data)
	}
}

func TestInterpretSuccessReserializesNestedData(t *testing.T) {
	body := `{ "inputs" : [ { "data" : { "vector" : [ 1 , 2 ], "dims": 2 } }, {"data": "ignored"} ] }`
	out := Interpret([]byte(body))
	success, ok := out.(Success)
	if !ok {
		t.Fatalf("expected Success, got %#v", out)
	}
	if success.Data != `{"vector":[1,2],"dims":2}` {
		t.Fatalf("Data = %q", success.Data)
	}
}

func TestInterpretAPIErrorWithMessage(t *testing.T) {
	out := Interpret([]byte(`{"error":"invalid_request","message":"model not found"}`))
	apiErr, ok := out.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %#v", out)
	}
	if apiErr.Code != "invalid_request" {
		t.Fatalf("Code = %q", apiErr.Code)
	}
	if apiErr.Message == nil || *apiErr.Message != "model not found" {
		t.Fatalf("Message = %v", apiErr.Message)
	}
	if got := apiErr.Error(); got != "Embedefy API error: invalid_request: model not found" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestInterpretAPIErrorWithoutMessage(t *testing.T) {
	out := Interpret([]byte(`{"error":"rate_limited"}`))
	apiErr, ok := out.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %#v", out)
	}
	if apiErr.Code != "rate_limited" || apiErr.Message != nil {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
	if got := apiErr.Error(); got != "Embedefy API error: rate_limited" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestInterpretErrorTakesPrecedenceOverInputs(t *testing.T) {
	out := Interpret([]byte(`{"inputs":[{"data":[1]}],"error":"quota_exceeded"}`))
	apiErr, ok := out.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %#v", out)
	}
	if apiErr.Code != "quota_exceeded" {
		t.Fatalf("Code = %q", apiErr.Code)
	}
}

func TestInterpretStringifiesNonStringErrorFields(t *testing.T) {
	out := Interpret([]byte(`{"error":429,"message":{"retry_after": 3}}`))
	apiErr, ok := out.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %#v", out)
	}
	if apiErr.Code != "429" {
		t.Fatalf("Code = %q", apiErr.Code)
	}
	if apiErr.Message == nil || *apiErr.Message != `{"retry_after":3}` {
		t.Fatalf("Message = %v", apiErr.Message)
	}
}

func TestInterpretFormatErrors(t *testing.T) {
	cases := map[string]string{
		"":                            ReasonInvalidJSON,
		"not json at all":             ReasonInvalidJSON,
		`{"inputs":[`:                 ReasonInvalidJSON,
		`{"foo":"bar"}`:               ReasonUnknownFormat,
		`{"inputs":[]}`:               ReasonUnknownFormat,
		`{"inputs":{"data":[1]}}`:     ReasonUnknownFormat,
		`{"inputs":null}`:             ReasonUnknownFormat,
		`[{"data":[1]}]`:              ReasonUnknownFormat,
		`"just a string"`:             ReasonUnknownFormat,
		`null`:                        ReasonUnknownFormat,
		`{"inputs":[{}]}`:             ReasonDataNotFound,
		`{"inputs":[{"vector":[1]}]}`: ReasonDataNotFound,
		`{"inputs":[42]}`:             ReasonDataNotFound,
	}

	for body, reason := range cases {
		out := Interpret([]byte(body))
		fmtErr, ok := out.(*FormatError)
		if !ok {
			t.Fatalf("body %q: expected *FormatError, got %#v", body, out)
		}
		if fmtErr.Reason != reason {
			t.Fatalf("body %q: reason = %q, want %q", body, fmtErr.Reason, reason)
		}
	}
}

func TestInterpretIsIdempotent(t *testing.T) {
	bodies := []string{
		`{"inputs":[{"data":[0.1,0.2,0.3]}]}`,
		`{"error":"invalid_request","message":"model not found"}`,
		`{"foo":"bar"}`,
		`garbage`,
	}
	for _, body := range bodies {
		first := Interpret([]byte(body))
		second := Interpret([]byte(body))
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("body %q: %#v != %#v", body, first, second)
		}
	}
}

func TestFormatErrorMessage(t *testing.T) {
	err := &FormatError{Reason: ReasonUnknownFormat}
	if got := err.Error(); got != "failed to parse Embedefy API response: unknown API response format" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestInterpretOutOfRangeNumberIsParseFailure(t *testing.T) {
	out := Interpret([]byte(`{"inputs":[{"data":[1e400]}]}`))
	fmtErr, ok := out.(*FormatError)
	if !ok || fmtErr.Reason != ReasonInvalidJSON {
		t.Fatalf("expected invalid JSON FormatError, got %#v", out)
	}
}

func TestInterpretErrorUnreadableMessage(t *testing.T) {
	top := map[string]json.RawMessage{
		"error":   json.RawMessage(`"bad_request"`),
		"message": json.RawMessage(`"unterminated`),
	}
	out := interpretError(top, top["error"])
	apiErr, ok := out.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %#v", out)
	}
	if apiErr.Code != CodeMessageUnavailable || apiErr.Message != nil {
		t.Fatalf("unexpected fallback error: %#v", apiErr)
	}
}
