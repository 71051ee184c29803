// models/models.go
package models

import (
	"errors"
	"strconv"
)

// GameState 对局状态
type GameState string

const (
	StatePending  GameState = "pending"
	StateOngoing  GameState = "ongoing"
	StateFinished GameState = "finished"
)

// Choice 玩家出招
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// Result 对局结果
type Result string

const (
	WinLeft  Result = "winLeft"
	WinRight Result = "winRight"
	Draw     Result = "draw"
)

// ErrInvalidChoice is returned when a move is not rock, paper or scissors.
var ErrInvalidChoice = errors.New("invalid choice")

// ParseChoice decodes a move. Anything other than the three known values fails.
func ParseChoice(s string) (Choice, error) {
	switch c := Choice(s); c {
	case Rock, Paper, Scissors:
		return c, nil
	}
	return "", ErrInvalidChoice
}

// Valid reports whether c is one of the three known moves.
func (c Choice) Valid() bool {
	_, err := ParseChoice(string(c))
	return err == nil
}

// ParseID accepts only non-empty strings of ASCII digits.
func ParseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// User 用户
type User struct {
	ID   int64  `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
}

// Game 对局
type Game struct {
	ID          int64     `json:"id"`
	State       GameState `json:"state"`
	PlayerLeft  int64     `json:"playerLeft"`
	PlayerRight *int64    `json:"playerRight"`
	PlayLeft    *Choice   `json:"playLeft"`
	PlayRight   *Choice   `json:"playRight"`
	Result      *Result   `json:"result"`
}

// IsParticipant reports whether userID plays on either side of the game.
func (g *Game) IsParticipant(userID int64) bool {
	if g.PlayerLeft == userID {
		return true
	}
	return g.PlayerRight != nil && *g.PlayerRight == userID
}

// Participants returns the ids of the players currently attached to the game.
func (g *Game) Participants() []int64 {
	ids := []int64{g.PlayerLeft}
	if g.PlayerRight != nil {
		ids = append(ids, *g.PlayerRight)
	}
	return ids
}

// Clone returns a deep copy so stores never share pointers with callers.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	if g.PlayerRight != nil {
		v := *g.PlayerRight
		c.PlayerRight = &v
	}
	if g.PlayLeft != nil {
		v := *g.PlayLeft
		c.PlayLeft = &v
	}
	if g.PlayRight != nil {
		v := *g.PlayRight
		c.PlayRight = &v
	}
	if g.Result != nil {
		v := *g.Result
		c.Result = &v
	}
	return &c
}
