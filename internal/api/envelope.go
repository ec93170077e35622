package api

import (
	"encoding/json"
	"errors"
	"strings"
)

// envelope is the outer JSON wrapper: {"success": ..., "<key>"|"data": ..., "message"?: ...}.
type envelope map[string]json.RawMessage

func decodeEnvelope(b []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, errors.New("response is not a JSON object")
	}
	return env, nil
}

// failed reports an explicit success:false. A missing flag is not a failure;
// several endpoints only send the payload key.
func (e envelope) failed() bool {
	raw, ok := e["success"]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return !b
}

func (e envelope) str(key string) string {
	raw, ok := e[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	// {"error": {"message": "..."}}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

func (e envelope) message(def string) string {
	for _, k := range []string{"message", "error"} {
		if s := e.str(k); s != "" {
			return s
		}
	}
	return def
}

func (e envelope) collection(key string) (json.RawMessage, bool) {
	if raw, ok := e[key]; ok {
		return raw, true
	}
	raw, ok := e["data"]
	return raw, ok
}

func (e envelope) id() string {
	if s := e.str("id"); s != "" {
		return s
	}
	raw, ok := e["data"]
	if !ok {
		return ""
	}
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}
	return data.ID
}

func envelopeMessage(body []byte, status int) string {
	if env, err := decodeEnvelope(body); err == nil {
		if msg := env.message(""); msg != "" {
			return msg
		}
	}
	return fallbackMessage(status, body)
}
