// room/room.go
package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/wfunc/impostor/config"
	"github.com/wfunc/impostor/network"
	"github.com/wfunc/impostor/timer"
	"github.com/wfunc/impostor/topic"
)

// Options are the creation-time settings of a room.
type Options struct {
	Name         string
	Public       bool
	MaxPlayers   int
	NumImpostors int
}

// Room 是游戏房间的核心结构. All state is guarded by mu; every exported
// method is a synchronized entry point, including the timer callbacks, so
// no two mutations of the same room ever interleave.
type Room struct {
	Code         string
	Name         string
	Public       bool
	MaxPlayers   int
	NumImpostors int
	CreatedAt    time.Time

	phase        Phase
	round        int
	players      []*Player
	turnOrder    []string
	turnIndex    int
	topic        topic.Topic
	impostors    []string
	votes        map[string]int
	voteLog      []VoteRecord
	chatLog      []ChatMessage
	lastActivity time.Time

	// timerGen invalidates stale phase-advance callbacks: every schedule or
	// cancel bumps it, and a fired callback whose captured generation no
	// longer matches is a no-op. lastTimer is the payload of the pending
	// timer, replayed to reconnecting players.
	timerID   int64
	timerGen  int64
	lastTimer TimerUpdate
	closed    bool

	mu sync.Mutex

	broadcaster Broadcaster
	timers      *timer.Manager
	topics      topic.Provider
	recorder    GameRecorder
	cfg         config.GameConfig
}

func newRoom(code string, opts Options, broadcaster Broadcaster, timers *timer.Manager,
	topics topic.Provider, recorder GameRecorder, cfg config.GameConfig) *Room {
	now := time.Now()
	name := opts.Name
	if name == "" {
		name = code
	}
	return &Room{
		Code:         code,
		Name:         name,
		Public:       opts.Public,
		MaxPlayers:   opts.MaxPlayers,
		NumImpostors: opts.NumImpostors,
		CreatedAt:    now,
		phase:        PhaseLobby,
		votes:        make(map[string]int),
		lastActivity: now,
		broadcaster:  broadcaster,
		timers:       timers,
		topics:       topics,
		recorder:     recorder,
		cfg:          cfg,
	}
}

// --- roster ---

// Join seats a new player. The first player to join becomes the creator.
func (r *Room) Join(sessionID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseLobby {
		return ErrGameInProgress
	}
	if len(r.players) >= r.MaxPlayers {
		return ErrCapacityExceeded
	}
	if r.findByName(name) != nil {
		return ErrDuplicateName
	}

	player := &Player{
		SessionID: sessionID,
		Name:      name,
		Status:    StatusConnected,
		IsCreator: len(r.players) == 0,
	}
	r.players = append(r.players, player)
	r.touch()

	r.appendChat(ChatMessage{Type: "system", Message: name + " joined the room"})
	r.broadcastPlayers()
	return nil
}

// Reconnect rebinds an existing seat to a new connection, matching by name.
// The rebind is idempotent: it works even if the old connection is still
// nominally registered.
func (r *Room) Reconnect(sessionID, name string) (*ReconnectSuccess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findByName(name)
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	player.SessionID = sessionID
	player.Status = StatusConnected
	r.touch()

	r.appendChat(ChatMessage{Type: "system", Message: name + " reconnected"})
	r.broadcastPlayers()
	r.resync(player)

	return &ReconnectSuccess{
		Room:      r.Code,
		GameState: r.phase.String(),
		IsCreator: player.IsCreator,
		Message:   "Reconnected to room " + r.Code,
	}, nil
}

// resync unicasts the current game view to a freshly reconnected player:
// role first, then phase, then timer, matching the broadcast order of a
// normal transition.
func (r *Room) resync(player *Player) {
	if r.phase == PhaseLobby {
		return
	}
	r.sendRole(player)
	update := GameStateUpdate{State: r.phase.String(), Round: r.round}
	if r.phase == PhaseDescribing {
		update.CurrentPlayer = r.currentTurnName()
	}
	if r.phase == PhaseVoting {
		update.Candidates = r.aliveNames()
	}
	r.broadcaster.ToSession(player.SessionID, network.EvtGameStateUpdate, update)

	// The wall-clock payload lets the client compute the remaining time.
	if r.timerID != 0 {
		r.broadcaster.ToSession(player.SessionID, network.EvtTimerUpdate, r.lastTimer)
	}
}

// Disconnect marks the player for sessionID as disconnected, keeping their
// seat. If the creator drops, the first remaining connected player in
// roster order is promoted.
func (r *Room) Disconnect(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findBySession(sessionID)
	if player == nil {
		return
	}

	player.Status = StatusDisconnected
	player.SessionID = ""
	r.touch()

	if player.IsCreator {
		r.promoteCreator(player)
	}

	r.appendChat(ChatMessage{Type: "system", Message: player.Name + " disconnected"})
	r.broadcastPlayers()

	// The phase may have been waiting on this player.
	if r.phase == PhaseVoting {
		r.maybeFinalizeVotes()
	}
}

// Leave removes the seat entirely. Returns true when the roster is empty
// afterwards, in which case the caller deletes the room.
func (r *Room) Leave(sessionID string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.players {
		if p.SessionID == sessionID && p.Status == StatusConnected {
			idx = i
			break
		}
	}
	if idx < 0 {
		return len(r.players) == 0
	}

	player := r.players[idx]
	player.Status = StatusLeft
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.touch()

	if player.IsCreator {
		player.IsCreator = false
		r.promoteCreator(nil)
	}

	if len(r.players) == 0 {
		return true
	}

	r.appendChat(ChatMessage{Type: "system", Message: player.Name + " left the room"})
	r.broadcastPlayers()

	if r.phase == PhaseVoting {
		r.maybeFinalizeVotes()
	}
	return false
}

// promoteCreator moves the creator flag to the first connected player in
// roster order. When nobody else is connected, a still-seated former keeps
// the flag; a departed former hands it to the first remaining seat, so a
// non-empty roster always has exactly one creator.
func (r *Room) promoteCreator(former *Player) {
	for _, p := range r.players {
		if p != former && p.Connected() {
			if former != nil {
				former.IsCreator = false
			}
			p.IsCreator = true
			r.appendChat(ChatMessage{Type: "system", Message: p.Name + " is now the room leader"})
			return
		}
	}

	if former == nil {
		for _, p := range r.players {
			p.IsCreator = true
			r.appendChat(ChatMessage{Type: "system", Message: p.Name + " is now the room leader"})
			return
		}
	}
}

// --- chat ---

// SendChat relays a free-form player message to the room.
func (r *Room) SendChat(sessionID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findBySession(sessionID)
	if player == nil || message == "" {
		return
	}
	r.touch()
	r.appendChat(ChatMessage{Type: "player", PlayerName: player.Name, Message: message})
}

// appendChat records the message and broadcasts it. Lock held by caller.
func (r *Room) appendChat(msg ChatMessage) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	r.chatLog = append(r.chatLog, msg)
	r.broadcaster.ToSessions(r.connectedSessionIDs(), network.EvtChatMessage, msg)
}

// --- lookups, lock held by caller ---

func (r *Room) findByName(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) findBySession(sessionID string) *Player {
	if sessionID == "" {
		return nil
	}
	for _, p := range r.players {
		if p.SessionID == sessionID && p.Status == StatusConnected {
			return p
		}
	}
	return nil
}

func (r *Room) connectedCount() int {
	count := 0
	for _, p := range r.players {
		if p.Connected() {
			count++
		}
	}
	return count
}

func (r *Room) aliveCount() int {
	count := 0
	for _, p := range r.players {
		if p.Alive() {
			count++
		}
	}
	return count
}

func (r *Room) aliveNames() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if p.Alive() {
			names = append(names, p.Name)
		}
	}
	return names
}

func (r *Room) creatorName() string {
	for _, p := range r.players {
		if p.IsCreator {
			return p.Name
		}
	}
	return ""
}

func (r *Room) canStart() bool {
	return r.phase == PhaseLobby && r.connectedCount() >= 3
}

func (r *Room) connectedSessionIDs() []string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if p.Connected() {
			ids = append(ids, p.SessionID)
		}
	}
	return ids
}

func (r *Room) touch() {
	r.lastActivity = time.Now()
}

// --- broadcast helpers, lock held by caller ---

func (r *Room) broadcastPlayers() {
	infos := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		infos = append(infos, PlayerInfo{
			Name:         p.Name,
			IsCreator:    p.IsCreator,
			Eliminated:   p.Eliminated,
			Disconnected: !p.Connected(),
			HasDescribed: p.HasDescribed,
			HasVoted:     p.HasVoted,
			Score:        p.Score,
			GamesWon:     p.GamesWon,
		})
	}
	r.broadcaster.ToSessions(r.connectedSessionIDs(), network.EvtPlayersUpdate, PlayersUpdate{
		Players:   infos,
		GameState: r.phase.String(),
		CanStart:  r.canStart(),
		CreatorID: r.creatorName(),
	})
}

func (r *Room) broadcastState(update GameStateUpdate) {
	update.Round = r.round
	r.broadcaster.ToSessions(r.connectedSessionIDs(), network.EvtGameStateUpdate, update)
}

// --- timers ---

// scheduleAdvance arms the single pending phase timer. Any previous timer
// is cancelled first; a room never has two pending advance callbacks. The
// fired callback runs fn with the room lock held after revalidating that
// the room still exists and the timer was not superseded.
func (r *Room) scheduleAdvance(d time.Duration, fn func()) {
	if r.timerID != 0 {
		r.timers.Cancel(r.timerID)
	}
	r.timerGen++
	gen := r.timerGen

	r.timerID = r.timers.Schedule(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || gen != r.timerGen {
			return
		}
		r.timerID = 0
		fn()
	})

	r.lastTimer = TimerUpdate{
		DurationMs:       d.Milliseconds(),
		StartTimeEpochMs: time.Now().UnixMilli(),
	}
	r.broadcaster.ToSessions(r.connectedSessionIDs(), network.EvtTimerUpdate, r.lastTimer)
}

// cancelAdvance drops any pending phase timer. Lock held by caller.
func (r *Room) cancelAdvance() {
	if r.timerID != 0 {
		r.timers.Cancel(r.timerID)
		r.timerID = 0
	}
	r.timerGen++
}

// close marks the room dead so in-flight timer callbacks become no-ops.
func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelAdvance()
	r.closed = true
}

// --- snapshots ---

// Info returns the registry listing entry.
func (r *Room) Info() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Info{
		Code:       r.Code,
		Name:       r.Name,
		Players:    r.connectedCount(),
		MaxPlayers: r.MaxPlayers,
		Phase:      r.phase.String(),
		Joinable:   r.phase == PhaseLobby && len(r.players) < r.MaxPlayers,
	}
}

// Phase returns the current phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Round returns the current round counter.
func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// HasSession reports whether sessionID is a connected member.
func (r *Room) HasSession(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findBySession(sessionID) != nil
}

// idle reports whether the room has no connected players and has been
// inactive since before cutoff.
func (r *Room) idle(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectedCount() == 0 && r.lastActivity.Before(cutoff)
}

func (r *Room) String() string {
	return fmt.Sprintf("room %s (%s)", r.Code, r.Name)
}
