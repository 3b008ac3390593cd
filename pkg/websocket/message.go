package websocket

import (
	"encoding/json"
	"time"
)

// Message is the envelope of every frame sent to a UI.
type Message struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

// Encode stamps and marshals a typed payload.
func Encode(typ string, payload any) ([]byte, error) {
	return json.Marshal(Message{
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
