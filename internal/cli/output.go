package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case SignupResult:
		o.printSignupResult(v)
	case CodeResult:
		o.printCodeResult(v)
	case Session:
		o.printSession(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Draws       int       `json:"draws"`
	CreatedAt   time.Time `json:"created_at"`
}

// SignupResult combines player and next code
type SignupResult struct {
	Player   Player `json:"player"`
	NextCode string `json:"next_code"`
}

// CodeResult response type
type CodeResult struct {
	Code string `json:"code"`
}

// Session response type
type Session struct {
	ID        string          `json:"id"`
	Phase     int             `json:"phase"`
	State     json.RawMessage `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Record: %dW / %dL / %dD\n", p.Wins, p.Losses, p.Draws)
}

func (o *Output) printSignupResult(s SignupResult) {
	o.printPlayer(s.Player)
	fmt.Printf("Next code: %s\n", s.NextCode)
}

func (o *Output) printCodeResult(c CodeResult) {
	fmt.Println(c.Code)
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Phase: %d\n", s.Phase)

	state := "null"
	if len(s.State) > 0 {
		state = string(s.State)
	}
	fmt.Printf("State: %s\n", state)
	if !s.UpdatedAt.IsZero() {
		fmt.Printf("Updated: %s\n", s.UpdatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
