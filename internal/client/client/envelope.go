package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Envelope is the uniform response shape of the remote service.
type Envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
}

// OK is false only when the server said so explicitly.
func (e *Envelope) OK() bool {
	return e.Success == nil || *e.Success
}

// errorMessage finds a human-readable reason in an error body whatever its
// shape; it falls back to the status text.
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"message", "error.message", "error", "errors.0.message", "errors.0"} {
			if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return http.StatusText(status)
}

func isEmptyJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// decodeData unmarshals raw into v. ok is false when the server sent no data.
func decodeData(raw json.RawMessage, v any) (ok bool, err error) {
	if isEmptyJSON(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return true, nil
}

// decodeList accepts both a bare array and an object wrapping the array
// under key (e.g. {"invendus": [...]}). A missing list decodes as empty.
func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	out := []T{}
	if isEmptyJSON(raw) {
		return out, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '{' {
		inner := gjson.GetBytes(trimmed, key)
		if !inner.Exists() || !inner.IsArray() {
			return nil, fmt.Errorf("%w: expected %q array", ErrMalformedResponse, key)
		}
		trimmed = []byte(inner.Raw)
	}

	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}
