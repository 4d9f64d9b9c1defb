package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mizucoffee/canislupus-server/internal/dependencies/mocks"
	"github.com/mizucoffee/canislupus-server/internal/model"
	"github.com/mizucoffee/canislupus-server/internal/storage/memory"
	"github.com/mizucoffee/canislupus-server/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	random  *mocks.MockRandom
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(memory.New(), clk, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) createAlice() *model.Player {
	player, err := s.service.CreatePlayer(s.ctx, "0042", "Alice", "code-alice", "tok-alice")
	s.Require().NoError(err)
	return player
}

func (s *ServiceSuite) TestCreatePlayer() {
	player := s.createAlice()

	s.Equal(model.PlayerID("0042"), player.ID)
	s.Equal("Alice", player.DisplayName)
	s.Equal(0, player.Wins)
	s.Equal(0, player.Losses)
	s.Equal(0, player.Draws)
	s.False(player.CreatedAt.IsZero())
}

func (s *ServiceSuite) TestCreateDuplicateIDRejected() {
	s.createAlice()

	_, err := s.service.CreatePlayer(s.ctx, "0042", "Impostor", "code-other", "tok-other")
	s.ErrorIs(err, model.ErrDuplicatePlayerID)

	// First record retained
	player, err := s.service.AuthenticateByID(s.ctx, "0042", "tok-alice")
	s.Require().NoError(err)
	s.Equal("Alice", player.DisplayName)
}

func (s *ServiceSuite) TestAuthenticateByID() {
	s.createAlice()

	player, err := s.service.AuthenticateByID(s.ctx, "0042", "tok-alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("0042"), player.ID)
}

func (s *ServiceSuite) TestAuthenticateByIDWrongToken() {
	s.createAlice()

	_, err := s.service.AuthenticateByID(s.ctx, "0042", "TOK-ALICE")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateByIDUnknownPlayer() {
	_, err := s.service.AuthenticateByID(s.ctx, "9999", "tok-alice")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateByCode() {
	s.createAlice()

	player, err := s.service.AuthenticateByCode(s.ctx, "code-alice", "tok-alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("0042"), player.ID)

	_, err = s.service.AuthenticateByCode(s.ctx, "code-alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestNewCode() {
	s.random.QueueString("deterministic-code")
	s.Equal("deterministic-code", s.service.NewCode())
}

func (s *ServiceSuite) TestRecordResult() {
	s.createAlice()

	player, err := s.service.RecordResult(s.ctx, "0042", model.ResultWin)
	s.Require().NoError(err)
	s.Equal(1, player.Wins)

	player, err = s.service.RecordResult(s.ctx, "0042", model.ResultDraw)
	s.Require().NoError(err)
	s.Equal(1, player.Wins)
	s.Equal(1, player.Draws)
	s.Equal(0, player.Losses)
}

func (s *ServiceSuite) TestRecordResultInvalid() {
	s.createAlice()

	_, err := s.service.RecordResult(s.ctx, "0042", "victory")
	s.ErrorIs(err, model.ErrInvalidUpdate)
}

func (s *ServiceSuite) TestRecordResultUnknownPlayer() {
	_, err := s.service.RecordResult(s.ctx, "9999", model.ResultWin)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
