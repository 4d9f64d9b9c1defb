package request

import "encoding/json"

// SignupRequest is the request body for registering a player
type SignupRequest struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	Code              string `json:"code"`
	VerificationToken string `json:"verification_token"`
}

// AuthRequest is the request body for authenticating a player. Exactly one
// of ID or Code identifies the player.
type AuthRequest struct {
	ID                string `json:"id,omitempty"`
	Code              string `json:"code,omitempty"`
	VerificationToken string `json:"verification_token"`
}

// RecordResultRequest is the request body for recording a match outcome
type RecordResultRequest struct {
	VerificationToken string `json:"verification_token"`
	Result            string `json:"result"`
}

// SetSessionRequest is the request body for a partial session update.
// A nil Phase leaves the phase untouched; a nil State leaves the state
// untouched.
type SetSessionRequest struct {
	Phase *int            `json:"phase,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
}
