package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NetworkError means the request never got a response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError means no response arrived within the configured bound.
type TimeoutError struct {
	Op    string
	URL   string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: no response after %s", e.Op, e.URL, e.After)
}

// FetchError is a failed read: non-2xx status or a success:false envelope.
type FetchError struct {
	Path    string
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("GET %s failed (%s): %s", e.Path, statusText(e.Status), e.Message)
}

// MutationError is a failed write: non-2xx status or a success:false envelope.
type MutationError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s failed (%s): %s", e.Method, e.Path, statusText(e.Status), e.Message)
}

func statusText(code int) string {
	if t := http.StatusText(code); t != "" {
		return fmt.Sprintf("%d %s", code, t)
	}
	return fmt.Sprintf("status %d", code)
}

// maxMessageRunes caps a raw error body quoted in a banner.
const maxMessageRunes = 200

func fallbackMessage(status int, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if r := []rune(msg); len(r) > maxMessageRunes {
		msg = string(r[:maxMessageRunes]) + "…"
	}
	if msg == "" {
		return statusText(status)
	}
	return msg
}
