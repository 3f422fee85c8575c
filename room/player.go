// room/player.go
package room

// Status is the roster membership state of a player. A disconnected player
// keeps their roster seat so they can reconnect by name.
type Status int

const (
	StatusConnected Status = iota
	StatusDisconnected
	StatusLeft
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusLeft:
		return "left"
	}
	return "unknown"
}

// Player is one roster seat. Identity within a room is the display name;
// SessionID is the transient connection binding and is empty while
// disconnected.
type Player struct {
	SessionID string
	Name      string
	Status    Status
	IsCreator bool

	// Per-game state, reset when a new game starts.
	Impostor     bool
	Eliminated   bool
	HasDescribed bool
	HasVoted     bool
	VotedFor     string

	// Cumulative, kept across games within the room.
	Score             int
	GamesWon          int
	GamesImpostor     int
	GamesInvestigator int
}

func (p *Player) Connected() bool {
	return p.Status == StatusConnected
}

func (p *Player) Alive() bool {
	return !p.Eliminated
}

// resetForGame clears all per-game state, keeping scores and statistics.
func (p *Player) resetForGame() {
	p.Impostor = false
	p.Eliminated = false
	p.resetForRound()
}

// resetForRound clears per-round flags.
func (p *Player) resetForRound() {
	p.HasDescribed = false
	p.resetForVote()
}

// resetForVote clears the voting-phase flags.
func (p *Player) resetForVote() {
	p.HasVoted = false
	p.VotedFor = ""
}
