package redis

import (
	"fmt"

	"github.com/mizucoffee/canislupus-server/internal/model"
)

// Key prefix for all stored data
const keyPrefix = "canislupus"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// codeIndexKey returns the Redis key for the code -> player_id index
func codeIndexKey(code string) string {
	return fmt.Sprintf("%s:idx:code:%s", keyPrefix, code)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}
