package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sidd1721986/Elite-App/internal/shared"
)

// maxPlainTextError is the longest non-JSON error body used verbatim as a message.
const maxPlainTextError = 100

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return shared.ErrAPIRequest }

func newHTTPError(method, endpoint string, status int, body []byte) *HTTPError {
	return &HTTPError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    errorMessage(status, body),
	}
}

// errorMessage extracts a human readable message from an error body.
//
// Order: "message", then the "errors" field map ("field: first, ..."), then
// "error", then short plain text, then a generic status line. An "errors"
// object or array that yields nothing keeps the status line.
func errorMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("HTTP error! status: %d", status)

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		text := string(body)
		if text != "" && len(text) < maxPlainTextError {
			return text
		}
		return fallback
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return fallback
	}

	if msg := messageText(obj["message"]); msg != "" {
		return msg
	}
	switch obj["errors"].(type) {
	case map[string]any, []any:
		if msg := fieldErrors(body); msg != "" {
			return msg
		}
		return fallback
	}
	if msg := messageText(obj["error"]); msg != "" {
		return msg
	}
	return fallback
}

// fieldErrors joins "field: firstError" pairs in body order. An array of
// errors is keyed by index.
func fieldErrors(body []byte) string {
	var envelope struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(envelope.Errors))
	open, err := dec.Token()
	if err != nil || (open != json.Delim('{') && open != json.Delim('[')) {
		return ""
	}

	var parts []string
	for i := 0; dec.More(); i++ {
		field := strconv.Itoa(i)
		if open == json.Delim('{') {
			tok, err := dec.Token()
			if err != nil {
				return ""
			}
			field, _ = tok.(string)
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return ""
		}
		if list, ok := v.([]any); ok {
			if len(list) > 0 {
				v = list[0]
			} else {
				v = nil
			}
		}
		parts = append(parts, field+": "+display(v))
	}
	return strings.Join(parts, ", ")
}

// messageText returns v as a message when it is a truthy scalar.
func messageText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if !x {
			return ""
		}
	case float64:
		if x == 0 {
			return ""
		}
	}
	return display(v)
}

func display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case map[string]any, []any:
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
