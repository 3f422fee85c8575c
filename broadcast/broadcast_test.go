package broadcast

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/impostor/network"
	"github.com/wfunc/impostor/session"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (m *MockConnection) Send(event string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, event)
	return nil
}

func (m *MockConnection) ReadEvent() (*network.Event, error)  { return nil, nil }
func (m *MockConnection) Close() error                        { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration) {}

func (m *MockConnection) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func setup() (*SessionBroadcaster, map[string]*MockConnection) {
	manager := session.NewManager()
	conns := make(map[string]*MockConnection)
	for _, id := range []string{"s1", "s2", "s3"} {
		conn := &MockConnection{}
		conns[id] = conn
		manager.Add(session.NewSession(id, conn))
	}
	return NewSessionBroadcaster(manager), conns
}

func TestToSessions_DeliversToListedOnly(t *testing.T) {
	broadcaster, conns := setup()

	if err := broadcaster.ToSessions([]string{"s1", "s3"}, "chatMessage", nil); err != nil {
		t.Fatalf("ToSessions failed: %v", err)
	}

	if conns["s1"].count() != 1 || conns["s3"].count() != 1 {
		t.Error("Listed sessions should receive the event")
	}
	if conns["s2"].count() != 0 {
		t.Error("Unlisted session must not receive the event")
	}
}

func TestToSessions_SkipsUnknownAndFailing(t *testing.T) {
	broadcaster, conns := setup()
	conns["s2"].sendErr = errors.New("connection reset")

	err := broadcaster.ToSessions([]string{"s1", "ghost", "s2", "s3"}, "playersUpdate", nil)
	if err != nil {
		t.Fatalf("ToSessions should not fail on dead recipients: %v", err)
	}

	if conns["s1"].count() != 1 || conns["s3"].count() != 1 {
		t.Error("Healthy sessions should still receive the event")
	}
}

func TestToSession_UnknownSession(t *testing.T) {
	broadcaster, _ := setup()

	if err := broadcaster.ToSession("ghost", "error", nil); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestToAll_DeliversToEveryone(t *testing.T) {
	broadcaster, conns := setup()

	if err := broadcaster.ToAll("roomListUpdate", nil); err != nil {
		t.Fatalf("ToAll failed: %v", err)
	}
	for id, conn := range conns {
		if conn.count() != 1 {
			t.Errorf("Session %s should receive the broadcast, got %d events", id, conn.count())
		}
	}
}
