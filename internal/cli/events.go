package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <session-id>",
		Short: "Stream live events from a session",
		Long: `Connect to the server's websocket channel, join the session and print
every event as it arrives.

The first event is a snapshot of the session's current phase and state;
subsequent events reflect updates as they are applied.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// streamedEvent wraps a received event with its arrival time
type streamedEvent struct {
	Time  time.Time       `json:"time"`
	Event json.RawMessage `json:"event"`
}

func streamEvents(sessionID string, jsonOutput bool) error {
	wsURL, err := websocketURL(cfg.ServerURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	join := map[string]string{"type": "join", "session_id": sessionID}
	if err := conn.WriteJSON(join); err != nil {
		return fmt.Errorf("join failed: %w", err)
	}

	// Close the socket on interrupt so the read loop unblocks
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	if !jsonOutput {
		fmt.Printf("Connected to session %s\n", sessionID)
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			// A closed socket after Ctrl+C is a normal exit
			if strings.Contains(err.Error(), "use of closed network connection") {
				break
			}
			return fmt.Errorf("stream error: %w", err)
		}

		printEvent(payload, jsonOutput)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

func printEvent(payload []byte, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := streamedEvent{Time: now, Event: payload}
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
	} else {
		timestamp := now.Format("2006-01-02 15:04:05")
		display := string(payload)
		if len(display) > 200 {
			display = display[:200] + "..."
		}
		display = strings.ReplaceAll(display, "\n", " ")
		fmt.Printf("[%s] %s\n", timestamp, display)
	}
}
