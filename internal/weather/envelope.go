package weather

import (
	"encoding/json"
	"fmt"
)

// Envelope is the backend response: exactly one of Success or Error is set.
type Envelope struct {
	Success json.RawMessage `json:"success,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Succeeded wraps a raw document.
func Succeeded(doc []byte) Envelope {
	return Envelope{Success: json.RawMessage(doc)}
}

// Failed wraps an error message.
func Failed(message string) Envelope {
	return Envelope{Error: message}
}

// Payload returns the success document, or ErrUpstream carrying the
// envelope's message when there is none.
func (e Envelope) Payload() ([]byte, error) {
	if len(e.Success) == 0 || string(e.Success) == "null" {
		msg := e.Error
		if msg == "" {
			msg = "response has no success payload"
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
	return e.Success, nil
}

// DecodeEnvelope parses a backend response body.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
