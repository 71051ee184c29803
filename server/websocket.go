package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/rpsserver/logger"
	"github.com/wfunc/rpsserver/network"
	"github.com/wfunc/rpsserver/session"
)

const heartbeatInterval = 30 * time.Second

// handleWebSocket subscribes an authenticated user to events of the games
// they play in.
func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user := s.authenticate(w, r)
	if user == nil {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), user.ID, wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlineSessions()

	logger.Log.Infof("New connection from %s, user %d, session ID: %s", wsConn.RemoteAddr(), user.ID, sess.GetID())

	done := make(chan struct{})
	defer func() {
		close(done)
		logger.Log.Infof("Connection closed from %s, session ID: %s, age %s, idle %s",
			wsConn.RemoteAddr(), sess.GetID(), sess.Age().Round(time.Second), time.Since(sess.GetLastActive()).Round(time.Second))
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlineSessions()
		wsConn.Close()
	}()

	wsConn.SetHeartbeat(heartbeatInterval)
	go s.pingLoop(wsConn, done)

	for {
		packet, err := wsConn.ReadPacket()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Log.Warnf("Session %s read error: %v", sess.GetID(), err)
			}
			return
		}
		s.handlePacket(sess, packet)
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.Type {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	default:
		logger.Log.Infof("Unknown message type %q from session %s", packet.Type, sess.GetID())
	}
}

func (s *GameServer) pingLoop(conn *network.WSConnection, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
