package response

import (
	"encoding/json"
	"time"

	"github.com/mizucoffee/canislupus-server/internal/model"
)

// Player represents a player in API responses. The verification token and
// code are never echoed back.
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Draws       int       `json:"draws"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Wins:        p.Wins,
		Losses:      p.Losses,
		Draws:       p.Draws,
		CreatedAt:   p.CreatedAt,
	}
}

// SignupResponse is the response for player registration
type SignupResponse struct {
	Player Player `json:"player"`
	// NextCode is a fresh opaque code the client may hand to the next
	// registrant.
	NextCode string `json:"next_code"`
}

// CodeResponse carries a freshly generated opaque code
type CodeResponse struct {
	Code string `json:"code"`
}

// Session represents a session record in API responses
type Session struct {
	ID        string          `json:"id"`
	Phase     int             `json:"phase"`
	State     json.RawMessage `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		ID:        string(s.ID),
		Phase:     s.Phase,
		State:     s.State,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// HealthResponse is the response for the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
