package embedefy

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Outcome is the classification of one response body. It is implemented by
// Success, *APIError and *FormatError only.
type Outcome interface {
	outcome()
}

// Success carries the JSON-encoded data of the first input.
type Success struct {
	Data string
}

func (Success) outcome()      {}
func (*APIError) outcome()    {}
func (*FormatError) outcome() {}

// Interpret classifies a raw response body. Checks run in a fixed order:
// parse, error envelope, inputs array, catch-all.
func Interpret(raw []byte) Outcome {
	if !json.Valid(raw) {
		return &FormatError{Reason: ReasonInvalidJSON}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		// Valid JSON whose top level is not an object.
		return &FormatError{Reason: ReasonUnknownFormat}
	}

	if rawErr, ok := top["error"]; ok {
		return interpretError(top, rawErr)
	}

	if rawInputs, ok := top["inputs"]; ok {
		var inputs []json.RawMessage
		if err := json.Unmarshal(rawInputs, &inputs); err == nil && len(inputs) > 0 {
			return interpretFirstInput(inputs[0])
		}
	}

	return &FormatError{Reason: ReasonUnknownFormat}
}

func interpretError(top map[string]json.RawMessage, rawErr json.RawMessage) Outcome {
	code, err := stringify(rawErr)
	if err != nil {
		code = string(bytes.TrimSpace(rawErr))
	}

	apiErr := &APIError{Code: code}
	rawMsg, ok := top["message"]
	if !ok {
		return apiErr
	}

	// Unreachable after Interpret's validity check; kept for direct callers.
	msg, err := stringify(rawMsg)
	if err != nil {
		return &APIError{Code: CodeMessageUnavailable}
	}
	apiErr.Message = &msg
	return apiErr
}

func interpretFirstInput(first json.RawMessage) Outcome {
	var item map[string]json.RawMessage
	if err := json.Unmarshal(first, &item); err != nil {
		return &FormatError{Reason: ReasonDataNotFound}
	}

	data, ok := item["data"]
	if !ok {
		return &FormatError{Reason: ReasonDataNotFound}
	}

	encoded, err := compactJSON(data)
	if err != nil {
		return &FormatError{Reason: ReasonInvalidJSON}
	}
	return Success{Data: encoded}
}

// stringify returns the content of a JSON string, or the compact encoding of
// any other JSON value.
func stringify(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return compactJSON(trimmed)
}

func compactJSON(raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}
