package session

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/rpsserver/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	mu     sync.Mutex
	sent   []string
	closed bool
}

func (m *MockConnection) Send(msgType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msgType)
	return nil
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, 1, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	found := manager.GetByUserID(1)
	if len(found) != 1 || found[0] != sess {
		t.Fatal("GetByUserID should return the added session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}
	if len(manager.GetByUserID(1)) != 0 {
		t.Fatal("GetByUserID should not find the removed session")
	}
}

func TestManager_GetByUserID(t *testing.T) {
	manager := NewManager()

	manager.Add(NewSession("session1", 100, &MockConnection{}))
	manager.Add(NewSession("session2", 200, &MockConnection{}))
	manager.Add(NewSession("session3", 100, &MockConnection{}))

	if got := len(manager.GetByUserID(100)); got != 2 {
		t.Errorf("Expected 2 sessions for UserID 100, got %d", got)
	}
	if got := len(manager.GetByUserID(200)); got != 1 {
		t.Errorf("Expected 1 session for UserID 200, got %d", got)
	}
	if got := len(manager.GetByUserID(300)); got != 0 {
		t.Errorf("Expected 0 sessions for UserID 300, got %d", got)
	}
}

func TestSession_SendTouches(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("s", 1, conn)
	before := sess.GetLastActive()

	time.Sleep(time.Millisecond)
	if err := sess.Send(network.MsgTypeGameUpdated, []byte(`{}`)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !sess.GetLastActive().After(before) {
		t.Error("Send should update LastActive")
	}
	if len(conn.sent) != 1 || conn.sent[0] != network.MsgTypeGameUpdated {
		t.Errorf("Unexpected sent messages: %v", conn.sent)
	}
}

func TestManager_CloseAll(t *testing.T) {
	manager := NewManager()
	c1, c2 := &MockConnection{}, &MockConnection{}
	manager.Add(NewSession("a", 1, c1))
	manager.Add(NewSession("b", 2, c2))

	manager.CloseAll()

	if manager.Count() != 0 {
		t.Errorf("Expected no sessions after CloseAll, got %d", manager.Count())
	}
	if !c1.closed || !c2.closed {
		t.Error("CloseAll should close every connection")
	}
}

func TestSession_Age(t *testing.T) {
	sess := NewSession("s", 1, &MockConnection{})
	sess.CreatedAt = time.Now().Add(-time.Minute)

	if age := sess.Age(); age < time.Minute {
		t.Errorf("Expected age of at least a minute, got %s", age)
	}
}
