// persistence/interface.go
package persistence

import (
	"context"
	"errors"

	"github.com/wfunc/rpsserver/models"
)

// Store 用户与对局存储接口
//
// Writes are last-write-wins: there is no locking or versioning.
type Store interface {
	FindUser(ctx context.Context, id int64) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	FindGame(ctx context.Context, id int64) (*models.Game, error)
	ListGames(ctx context.Context) ([]*models.Game, error)
	// SaveGame inserts the game when its ID is zero and sets the new ID.
	// Updating a game that no longer exists returns ErrRecordNotFound.
	SaveGame(ctx context.Context, game *models.Game) error
	DeleteGame(ctx context.Context, id int64) error
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownDriver  = errors.New("unknown database driver")
)
