// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/impostor/network"
)

// Session is the transient per-connection identity. PlayerName and RoomCode
// are bound once the connection joins a room.
type Session struct {
	ID         string
	Conn       network.Connection
	RoomCode   string
	PlayerName string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(event string, payload interface{}) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(event, payload)
}

func (s *Session) GetID() string {
	return s.ID
}

// Bind attaches the session to a room under the given player name.
func (s *Session) Bind(roomCode, playerName string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomCode = roomCode
	s.PlayerName = playerName
}

// Unbind detaches the session from its room.
func (s *Session) Unbind() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomCode = ""
	s.PlayerName = ""
}

// Room returns the bound room code and player name.
func (s *Session) Room() (code, playerName string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.RoomCode, s.PlayerName
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager is the authoritative session map.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns a snapshot of every registered session.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}
