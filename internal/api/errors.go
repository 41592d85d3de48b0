package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Error is a non-2xx backend response.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if strings.TrimSpace(e.Detail) != "" {
		return e.Detail
	}
	if txt := http.StatusText(e.Status); txt != "" {
		return txt
	}
	return "request failed"
}

func newError(status int, raw []byte) *Error {
	return &Error{Status: status, Detail: detailFromBody(raw)}
}

// detailFromBody extracts the "detail" field. Strings are surfaced verbatim;
// structured details (validation errors) are re-encoded compactly.
func detailFromBody(raw []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}
	if bytes.Equal(bytes.TrimSpace(env.Detail), []byte("null")) {
		return ""
	}
	var b bytes.Buffer
	if err := json.Compact(&b, env.Detail); err != nil {
		return string(env.Detail)
	}
	return b.String()
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Message is the text shown to a user for a failed call.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
