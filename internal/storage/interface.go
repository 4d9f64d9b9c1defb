package storage

import (
	"context"

	"github.com/mizucoffee/canislupus-server/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByCode(ctx context.Context, code string) (*model.Player, error)
	PlayerExists(ctx context.Context, id model.PlayerID) (bool, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
}
