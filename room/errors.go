// room/errors.go
package room

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrDuplicateRoom       = errors.New("room code already in use")
	ErrUnauthorized        = errors.New("only the room creator may do that")
	ErrCapacityExceeded    = errors.New("room is full")
	ErrDuplicateName       = errors.New("name already taken in this room")
	ErrInsufficientPlayers = errors.New("need at least 3 connected players")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInvalidSettings     = errors.New("invalid room settings")
)
