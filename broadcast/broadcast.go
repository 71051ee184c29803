// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"

	"github.com/wfunc/rpsserver/logger"
	"github.com/wfunc/rpsserver/models"
	"github.com/wfunc/rpsserver/network"
	"github.com/wfunc/rpsserver/session"
)

// 广播接口
type Broadcaster interface {
	GameUpdated(game *models.Game)
	GameDeleted(game *models.Game)
}

// UserBroadcaster pushes game events to every live session of the game's participants.
type UserBroadcaster struct {
	sessionManager *session.Manager
}

func NewUserBroadcaster(sessionManager *session.Manager) *UserBroadcaster {
	return &UserBroadcaster{sessionManager: sessionManager}
}

func (b *UserBroadcaster) GameUpdated(game *models.Game) {
	data, err := json.Marshal(game)
	if err != nil {
		logger.Log.Errorf("Error marshalling game %d: %v", game.ID, err)
		return
	}
	b.BroadcastToUsers(game.Participants(), network.MsgTypeGameUpdated, data)
}

func (b *UserBroadcaster) GameDeleted(game *models.Game) {
	data, _ := json.Marshal(map[string]int64{"id": game.ID})
	b.BroadcastToUsers(game.Participants(), network.MsgTypeGameDeleted, data)
}

// BroadcastToUsers sends to all sessions of the given users and returns how
// many sends succeeded. Failed sessions are left for their read loop to reap.
func (b *UserBroadcaster) BroadcastToUsers(userIDs []int64, msgType string, data []byte) int {
	sent := 0
	for _, userID := range userIDs {
		for _, s := range b.sessionManager.GetByUserID(userID) {
			if err := s.Send(msgType, data); err != nil {
				logger.Log.Warnf("Failed to send %s to session %s: %v", msgType, s.GetID(), err)
				continue
			}
			sent++
		}
	}
	return sent
}

// Nop discards all events.
type Nop struct{}

func (Nop) GameUpdated(*models.Game) {}
func (Nop) GameDeleted(*models.Game) {}
