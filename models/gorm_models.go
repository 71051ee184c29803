// models/gorm_models.go
package models

import (
	"time"
)

// GormUser 用户表
type GormUser struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"not null;default:''"`
	CreatedAt time.Time
}

func (GormUser) TableName() string { return "users" }

// GormGame 对局表，列名与 database/sql 实现保持一致
type GormGame struct {
	ID          int64   `gorm:"primaryKey"`
	State       string  `gorm:"type:varchar(16);not null;index:idx_games_state"`
	PlayerLeft  int64   `gorm:"column:player_left;not null;index:idx_games_player_left"`
	PlayerRight *int64  `gorm:"column:player_right;index:idx_games_player_right"`
	PlayLeft    *string `gorm:"column:play_left;type:varchar(16)"`
	PlayRight   *string `gorm:"column:play_right;type:varchar(16)"`
	Result      *string `gorm:"type:varchar(16)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (GormGame) TableName() string { return "games" }

func optString[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func optTyped[T ~string](v *string) *T {
	if v == nil {
		return nil
	}
	t := T(*v)
	return &t
}

// NewGormGame converts a game into its table row.
func NewGormGame(g *Game) *GormGame {
	row := &GormGame{
		ID:         g.ID,
		State:      string(g.State),
		PlayerLeft: g.PlayerLeft,
		PlayLeft:   optString(g.PlayLeft),
		PlayRight:  optString(g.PlayRight),
		Result:     optString(g.Result),
	}
	if g.PlayerRight != nil {
		v := *g.PlayerRight
		row.PlayerRight = &v
	}
	return row
}

// ToGame converts a table row back into a game.
func (r *GormGame) ToGame() *Game {
	g := &Game{
		ID:         r.ID,
		State:      GameState(r.State),
		PlayerLeft: r.PlayerLeft,
		PlayLeft:   optTyped[Choice](r.PlayLeft),
		PlayRight:  optTyped[Choice](r.PlayRight),
		Result:     optTyped[Result](r.Result),
	}
	if r.PlayerRight != nil {
		v := *r.PlayerRight
		g.PlayerRight = &v
	}
	return g
}
