// room/interfaces.go
package room

import "github.com/wfunc/impostor/models"

// Broadcaster delivers events to sessions. Rooms hand over explicit
// recipient lists so the broadcaster never has to reach back into room
// state; this is defined here to break the import cycle with the broadcast
// package.
type Broadcaster interface {
	ToSessions(sessionIDs []string, event string, payload interface{}) error
	ToSession(sessionID string, event string, payload interface{}) error
	ToAll(event string, payload interface{}) error
}

// GameRecorder archives finished games. Implementations must not block;
// a nil recorder disables archiving.
type GameRecorder interface {
	RecordGame(record *models.GameRecord)
}
