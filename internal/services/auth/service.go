package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/mizucoffee/canislupus-server/internal/dependencies/clock"
	"github.com/mizucoffee/canislupus-server/internal/dependencies/random"
	"github.com/mizucoffee/canislupus-server/internal/model"
	"github.com/mizucoffee/canislupus-server/internal/storage"
)

// Errors
var (
	// ErrInvalidCredentials covers both an unknown player and a token
	// mismatch; callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Code generation alphabet and length, matching the shape of the opaque
// codes the reference clients already carry.
const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	codeLength   = 18
)

// Service manages player credentials: signup, code issuance and
// verification. Tokens are opaque shared secrets compared byte-for-byte;
// there is deliberately no hashing, rate limiting or session state here.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new credential service
func New(storage storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "auth")),
	}
}

// CreatePlayer registers a new player with zeroed counters. The id is
// caller-assigned and globally unique: a duplicate is rejected and the first
// record retained.
func (s *Service) CreatePlayer(ctx context.Context, id model.PlayerID, displayName, code, token string) (*model.Player, error) {
	exists, err := s.storage.PlayerExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrDuplicatePlayerID
	}

	player := &model.Player{
		ID:                id,
		DisplayName:       displayName,
		VerificationToken: token,
		Code:              code,
		CreatedAt:         s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player created", slog.String("player_id", string(id)))
	return player, nil
}

// AuthenticateByID resolves a player by id and verification token
func (s *Service) AuthenticateByID(ctx context.Context, id model.PlayerID, token string) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	return s.verify(player, token, err)
}

// AuthenticateByCode resolves a player by scannable code and verification token
func (s *Service) AuthenticateByCode(ctx context.Context, code, token string) (*model.Player, error) {
	player, err := s.storage.GetPlayerByCode(ctx, code)
	return s.verify(player, token, err)
}

func (s *Service) verify(player *model.Player, token string, err error) (*model.Player, error) {
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(player.VerificationToken), []byte(token)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return player, nil
}

// GetPlayer resolves a player by id without checking credentials. Intended
// for read paths that expose no secret material.
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// NewCode issues a fresh opaque code suitable as a scannable payload
func (s *Service) NewCode() string {
	return s.random.String(codeLength, codeAlphabet)
}

// RecordResult bumps the player's win/loss/draw counter. This is the only
// mutation path for the counters.
func (s *Service) RecordResult(ctx context.Context, id model.PlayerID, result model.MatchResult) (*model.Player, error) {
	if !result.Valid() {
		return nil, model.ErrInvalidUpdate
	}

	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	switch result {
	case model.ResultWin:
		player.Wins++
	case model.ResultLoss:
		player.Losses++
	case model.ResultDraw:
		player.Draws++
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}
