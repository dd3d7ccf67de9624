package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// messageFields are the body fields a server error message is read from, in order.
var messageFields = []string{"error", "message", "detail"}

// handleResponse decodes a response body and decides success by status class.
// JSON bodies are decoded when the content type says so; anything else is
// returned as text.
func handleResponse(status int, contentType string, raw []byte, requestID string) (any, error) {
	body, decodeErr := decodeBody(contentType, raw)

	if status < 200 || status > 299 {
		msgBody, msgRaw := body, raw
		if decodeErr != nil {
			// An unparseable JSON error body carries no usable message.
			msgBody, msgRaw = nil, nil
		}
		return nil, &model.RequestError{
			Message:    errorMessage(status, msgBody, msgRaw),
			HTTPStatus: status,
			RawBody:    body,
			RequestID:  requestID,
		}
	}

	if decodeErr != nil {
		return nil, &model.RequestError{
			Message:   "malformed response from analysis service",
			RawBody:   string(raw),
			RequestID: requestID,
			Err:       fmt.Errorf("decoding response body: %w", decodeErr),
		}
	}

	return body, nil
}

// decodeBody returns the decoded JSON value, or the raw text when the body is
// not JSON. A JSON content type with an undecodable body returns the text and
// the decode error.
func decodeBody(contentType string, raw []byte) (any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	if !strings.Contains(contentType, "application/json") {
		return string(raw), nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw), err
	}
	return v, nil
}

// errorMessage picks the user-facing message for a failed response: a
// recognized body field, then the raw body text, then "HTTP <status> <text>".
func errorMessage(status int, body any, raw []byte) string {
	switch v := body.(type) {
	case map[string]any:
		for _, field := range messageFields {
			if msg := fieldMessage(v[field]); msg != "" {
				return msg
			}
		}
		if text := strings.TrimSpace(string(raw)); text != "" {
			return text
		}
	case string:
		if text := strings.TrimSpace(v); text != "" {
			return text
		}
	case nil:
	default:
		if text := strings.TrimSpace(string(raw)); text != "" {
			return text
		}
	}

	return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
}

// fieldMessage renders a message field. Structured values (such as a list of
// validation details) are re-encoded as JSON.
func fieldMessage(v any) string {
	switch m := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(m)
	case bool:
		if !m {
			return ""
		}
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}
