// state/state.go
package state

import (
	"errors"
	"fmt"

	"github.com/wfunc/rpsserver/models"
)

var (
	// ErrTransitionNotAllowed is returned when a state transition is not allowed.
	ErrTransitionNotAllowed = errors.New("state transition not allowed")
	// ErrInvalidState is returned when an operation is attempted from a state that does not accept it.
	ErrInvalidState = errors.New("operation not allowed in current game state")
	// ErrSelfPlay is returned when the opponent is the player who opened the game.
	ErrSelfPlay = errors.New("player cannot play against themself")
	// ErrNotAParticipant is returned when the caller plays on neither side.
	ErrNotAParticipant = errors.New("user is not a player of this game")
	// ErrInvalidChoice is returned for a move outside rock, paper and scissors.
	ErrInvalidChoice = models.ErrInvalidChoice
)

// 状态转换表: from -> to
var transitions = map[models.GameState]models.GameState{
	models.StatePending: models.StateOngoing,
	models.StateOngoing: models.StateFinished,
}

// CanTransition reports whether a game may move directly from one state to another.
func CanTransition(from, to models.GameState) bool {
	next, ok := transitions[from]
	return ok && next == to
}

// Create opens a new game for the initiator.
func Create(initiator int64) *models.Game {
	return &models.Game{
		State:      models.StatePending,
		PlayerLeft: initiator,
	}
}

// Machine drives a single game through its states.
// It is not safe for concurrent use; callers load, mutate and save.
type Machine struct {
	game *models.Game
}

func NewMachine(game *models.Game) *Machine {
	return &Machine{game: game}
}

func (m *Machine) Game() *models.Game {
	return m.game
}

func (m *Machine) GetCurrentState() models.GameState {
	return m.game.State
}

// ChangeState moves the game to the next state if the transition table allows it.
func (m *Machine) ChangeState(to models.GameState) error {
	if !CanTransition(m.game.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, m.game.State, to)
	}
	m.game.State = to
	return nil
}

// CheckJoinable fails unless the game is still waiting for an opponent.
func (m *Machine) CheckJoinable() error {
	if m.game.State != models.StatePending {
		return fmt.Errorf("%w: game is %s", ErrInvalidState, m.game.State)
	}
	return nil
}

// JoinAsOpponent attaches the candidate as the right player and starts the game.
func (m *Machine) JoinAsOpponent(candidate int64) error {
	if err := m.CheckJoinable(); err != nil {
		return err
	}
	if candidate == m.game.PlayerLeft {
		return ErrSelfPlay
	}
	if err := m.ChangeState(models.StateOngoing); err != nil {
		return err
	}
	m.game.PlayerRight = &candidate
	return nil
}

// SubmitMove records the player's choice. When the opponent has already
// moved the round is resolved and the game finishes.
func (m *Machine) SubmitMove(player int64, choice models.Choice) error {
	g := m.game
	if g.State != models.StateOngoing {
		return fmt.Errorf("%w: game is %s", ErrInvalidState, g.State)
	}
	if !g.IsParticipant(player) {
		return ErrNotAParticipant
	}
	if !choice.Valid() {
		return ErrInvalidChoice
	}

	// A player may resubmit until the opponent moves; the last choice wins.
	if player == g.PlayerLeft {
		g.PlayLeft = &choice
	} else {
		g.PlayRight = &choice
	}

	if g.PlayLeft == nil || g.PlayRight == nil {
		return nil
	}

	result, err := Resolve(*g.PlayLeft, *g.PlayRight)
	if err != nil {
		return err
	}
	if err := m.ChangeState(models.StateFinished); err != nil {
		return err
	}
	g.Result = &result
	return nil
}

// AuthorizeDelete checks that the requester may remove the game. Games may be
// removed in any state.
func (m *Machine) AuthorizeDelete(requester int64) error {
	if !m.game.IsParticipant(requester) {
		return ErrNotAParticipant
	}
	return nil
}
