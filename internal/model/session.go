package model

import (
	"encoding/json"
	"time"
)

// SessionID is a server-generated opaque session identifier
type SessionID string

// Session is a single game instance. The server stores and forwards Phase
// and State without interpreting them: Phase is a caller-controlled progress
// counter and State is an opaque JSON payload. Both are last-write-wins.
type Session struct {
	// ID is immutable after creation
	ID SessionID `json:"id"`

	// Phase is a non-negative integer with no enforced transition graph
	Phase int `json:"phase"`

	// State is an arbitrary JSON document; null until the first set
	State json.RawMessage `json:"state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
