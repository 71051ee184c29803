// services/game_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/rpsserver/broadcast"
	"github.com/wfunc/rpsserver/logger"
	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/monitor"
	"github.com/wfunc/rpsserver/persistence"
	"github.com/wfunc/rpsserver/state"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrOpponentNotFound = errors.New("opponent not found")
)

// GameService loads games, runs them through the state machine and persists
// the outcome. Concurrent requests on one game are not coordinated: the last
// save wins.
type GameService struct {
	db          persistence.Store
	monitor     *monitor.Monitor
	broadcaster broadcast.Broadcaster
}

// NewGameService accepts a nil monitor or broadcaster; events are then dropped.
func NewGameService(db persistence.Store, mon *monitor.Monitor, broadcaster broadcast.Broadcaster) *GameService {
	if broadcaster == nil {
		broadcaster = broadcast.Nop{}
	}
	return &GameService{db: db, monitor: mon, broadcaster: broadcaster}
}

func (s *GameService) ListGames(ctx context.Context) ([]*models.Game, error) {
	return s.db.ListGames(ctx)
}

func (s *GameService) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	game, err := s.db.FindGame(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

// CreateGame opens a pending game with the caller on the left side.
func (s *GameService) CreateGame(ctx context.Context, caller *models.User) (*models.Game, error) {
	game := state.Create(caller.ID)
	if err := s.db.SaveGame(ctx, game); err != nil {
		return nil, fmt.Errorf("save new game: %w", err)
	}

	s.monitor.IncGamesCreated()
	logger.Log.Infof("User %d created game %d", caller.ID, game.ID)
	s.broadcaster.GameUpdated(game)
	return game, nil
}

// InviteOpponent attaches opponentID as the right player. The checks run in
// this order: game exists, game not started, opponent exists, opponent differs
// from the left player.
func (s *GameService) InviteOpponent(ctx context.Context, caller *models.User, gameID, opponentID int64) (*models.Game, error) {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	machine := state.NewMachine(game)
	if err := machine.CheckJoinable(); err != nil {
		return nil, err
	}

	opponent, err := s.db.FindUser(ctx, opponentID)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, ErrOpponentNotFound
		}
		return nil, err
	}

	if err := machine.JoinAsOpponent(opponent.ID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, game); err != nil {
		return nil, err
	}

	logger.Log.Infof("User %d added user %d to game %d", caller.ID, opponent.ID, game.ID)
	s.broadcaster.GameUpdated(game)
	return game, nil
}

// Play submits the caller's move. choice is passed raw so that state and
// participation errors take precedence over a malformed move.
func (s *GameService) Play(ctx context.Context, caller *models.User, gameID int64, choice string) (*models.Game, error) {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err := state.NewMachine(game).SubmitMove(caller.ID, models.Choice(choice)); err != nil {
		return nil, err
	}
	if err := s.save(ctx, game); err != nil {
		return nil, err
	}

	s.monitor.IncMovesSubmitted()
	if game.State == models.StateFinished {
		s.monitor.ObserveGameFinished(*game.Result)
		logger.Log.Infof("Game %d finished: %s", game.ID, *game.Result)
	}
	s.broadcaster.GameUpdated(game)
	return game, nil
}

// DeleteGame removes the game if the caller plays in it, whatever its state.
func (s *GameService) DeleteGame(ctx context.Context, caller *models.User, gameID int64) error {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	if err := state.NewMachine(game).AuthorizeDelete(caller.ID); err != nil {
		return err
	}

	if err := s.db.DeleteGame(ctx, game.ID); err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return err
	}

	s.monitor.IncGamesDeleted()
	logger.Log.Infof("User %d deleted game %d", caller.ID, game.ID)
	s.broadcaster.GameDeleted(game)
	return nil
}

func (s *GameService) save(ctx context.Context, game *models.Game) error {
	if err := s.db.SaveGame(ctx, game); err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("save game %d: %w", game.ID, err)
	}
	return nil
}
