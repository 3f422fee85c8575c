// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/impostor/logger"
	"github.com/wfunc/impostor/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionBroadcaster delivers events to sessions by id. Rooms pass their
// own recipient lists, so this stays a thin fan-out over the session map
// and the emission order of a transition is preserved.
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{
		sessionManager: sessionManager,
	}
}

func (b *SessionBroadcaster) ToSessions(sessionIDs []string, event string, payload interface{}) error {
	for _, id := range sessionIDs {
		s, exists := b.sessionManager.Get(id)
		if !exists {
			continue
		}
		if err := s.Send(event, payload); err != nil {
			// A dead connection is cleaned up by its own read loop.
			logger.Log.Debugf("Send %s to session %s failed: %v", event, id, err)
			continue
		}
	}
	return nil
}

func (b *SessionBroadcaster) ToSession(sessionID string, event string, payload interface{}) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return ErrSessionNotFound
	}
	return s.Send(event, payload)
}

func (b *SessionBroadcaster) ToAll(event string, payload interface{}) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(event, payload); err != nil {
			logger.Log.Debugf("Send %s to session %s failed: %v", event, s.GetID(), err)
			continue
		}
	}
	return nil
}
