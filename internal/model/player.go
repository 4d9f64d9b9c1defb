package model

import "time"

// PlayerID is a caller-assigned unique player identifier
type PlayerID string

// Player is an identity record for the password-less credential scheme.
// A player is identified by their ID plus an opaque verification token, or
// alternatively by their scannable code plus the same token.
type Player struct {
	ID PlayerID `json:"id"`

	DisplayName string `json:"display_name"`

	// VerificationToken is an opaque shared secret compared as an exact,
	// case-sensitive string. It is never returned in API responses.
	VerificationToken string `json:"verification_token"`

	// Code is the opaque scannable payload, distinct from ID, usable as an
	// alternate lookup key.
	Code string `json:"code"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`

	CreatedAt time.Time `json:"created_at"`
}

// MatchResult is a recorded outcome for a player
type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
	ResultDraw MatchResult = "draw"
)

// Valid reports whether the result is one of the known outcomes
func (r MatchResult) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultDraw:
		return true
	}
	return false
}
