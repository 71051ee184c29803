package network

import "encoding/json"

const (
	MsgTypeHeartbeat   = "heartbeat"
	MsgTypeGameUpdated = "game_updated"
	MsgTypeGameDeleted = "game_deleted"
)

// Packet 消息封包: {"type": ..., "data": ...}
type Packet struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
