// room/manager.go
package room

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/impostor/config"
	"github.com/wfunc/impostor/logger"
	"github.com/wfunc/impostor/network"
	"github.com/wfunc/impostor/timer"
	"github.com/wfunc/impostor/topic"
)

const (
	codeLength  = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	MinPlayers = 3
	MaxPlayers = 8
)

// Manager 管理所有房间. It owns the authoritative code -> room map;
// create and delete are atomic with respect to concurrent joins.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex

	broadcaster Broadcaster
	timers      *timer.Manager
	topics      topic.Provider
	recorder    GameRecorder
	cfg         config.GameConfig

	sweepTask int64
}

func NewManager(broadcaster Broadcaster, timers *timer.Manager, topics topic.Provider,
	recorder GameRecorder, cfg config.GameConfig) *Manager {
	m := &Manager{
		rooms:       make(map[string]*Room),
		broadcaster: broadcaster,
		timers:      timers,
		topics:      topics,
		recorder:    recorder,
		cfg:         cfg,
	}
	if cfg.SweepInterval > 0 {
		m.sweepTask = timers.Repeat(cfg.SweepInterval, m.Sweep)
	}
	return m
}

// Normalize canonicalizes a user-supplied room code. Codes are
// case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create registers a new room. An empty code requests a generated one; an
// explicit code that collides fails with ErrDuplicateRoom.
func (m *Manager) Create(code string, opts Options) (*Room, error) {
	if opts.MaxPlayers == 0 {
		opts.MaxPlayers = MaxPlayers
	}
	if opts.NumImpostors == 0 {
		opts.NumImpostors = 1
	}
	if opts.MaxPlayers < MinPlayers || opts.MaxPlayers > MaxPlayers {
		return nil, ErrInvalidSettings
	}
	if !ValidImpostorCount(opts.MaxPlayers, opts.NumImpostors) {
		return nil, ErrInvalidSettings
	}

	m.mutex.Lock()
	code = Normalize(code)
	if code == "" {
		code = m.generateCode()
	} else if _, exists := m.rooms[code]; exists {
		m.mutex.Unlock()
		return nil, ErrDuplicateRoom
	}

	room := newRoom(code, opts, m.broadcaster, m.timers, m.topics, m.recorder, m.cfg)
	m.rooms[code] = room
	m.mutex.Unlock()

	logger.Log.Infof("Created %s (public=%v, capacity=%d, impostors=%d)",
		room, room.Public, room.MaxPlayers, room.NumImpostors)
	m.notifyRoomList()
	return room, nil
}

// GetOrCreate implements create-if-absent join semantics: joining an
// unknown code creates a private room with default settings.
func (m *Manager) GetOrCreate(code string) (*Room, error) {
	code = Normalize(code)
	if code == "" {
		return nil, ErrRoomNotFound
	}
	if room, exists := m.Get(code); exists {
		return room, nil
	}
	room, err := m.Create(code, Options{})
	if err == ErrDuplicateRoom {
		// Lost the race to a concurrent creator; the room exists now.
		if room, exists := m.Get(code); exists {
			return room, nil
		}
	}
	return room, err
}

func (m *Manager) Get(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[Normalize(code)]
	return room, exists
}

// FindBySession scans all rooms for the one holding the given connection.
func (m *Manager) FindBySession(sessionID string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, room := range m.rooms {
		if room.HasSession(sessionID) {
			return room, true
		}
	}
	return nil, false
}

// Delete removes and closes a room.
func (m *Manager) Delete(code string) {
	m.mutex.Lock()
	room, exists := m.rooms[Normalize(code)]
	if exists {
		delete(m.rooms, Normalize(code))
	}
	m.mutex.Unlock()

	if exists {
		room.close()
		logger.Log.Infof("Deleted %s", room)
		m.notifyRoomList()
	}
}

// Count returns the number of registered rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// ListPublic returns listing entries for public rooms, joinable first, then
// most recently active.
func (m *Manager) ListPublic() []Info {
	m.mutex.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		if room.Public {
			rooms = append(rooms, room)
		}
	}
	m.mutex.RUnlock()

	infos := make([]Info, 0, len(rooms))
	activity := make(map[string]time.Time, len(rooms))
	for _, room := range rooms {
		info := room.Info()
		infos = append(infos, info)
		room.mu.Lock()
		activity[info.Code] = room.lastActivity
		room.mu.Unlock()
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Joinable != infos[j].Joinable {
			return infos[i].Joinable
		}
		return activity[infos[i].Code].After(activity[infos[j].Code])
	})
	return infos
}

// Sweep deletes rooms that have had no connected players for longer than
// the room TTL. Rooms with any connected player are never swept.
func (m *Manager) Sweep() {
	cutoff := time.Now().Add(-m.cfg.RoomTTL)

	m.mutex.RLock()
	var stale []string
	for code, room := range m.rooms {
		if room.idle(cutoff) {
			stale = append(stale, code)
		}
	}
	m.mutex.RUnlock()

	for _, code := range stale {
		logger.Log.Infof("Sweeping idle room %s", code)
		m.Delete(code)
	}
}

// Stop cancels the periodic sweep.
func (m *Manager) Stop() {
	if m.sweepTask != 0 {
		m.timers.Cancel(m.sweepTask)
	}
}

// generateCode returns a fresh 6-character code. Caller holds the write
// lock.
func (m *Manager) generateCode() string {
	for {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeCharset[rand.Intn(len(codeCharset))]
		}
		code := string(b)
		if _, exists := m.rooms[code]; !exists {
			return code
		}
	}
}

func (m *Manager) notifyRoomList() {
	m.broadcaster.ToAll(network.EvtRoomListUpdate, nil)
}

// ValidImpostorCount applies the capacity table: 3 players play with
// exactly one impostor, up to 4 with at most one, up to 8 with at most two,
// larger games with at most a third of the seats.
func ValidImpostorCount(numPlayers, numImpostors int) bool {
	if numImpostors < 1 {
		return false
	}
	switch {
	case numPlayers <= 3:
		return numImpostors == 1
	case numPlayers <= 4:
		return numImpostors <= 1
	case numPlayers <= 8:
		return numImpostors <= 2
	default:
		return numImpostors <= numPlayers/3
	}
}

// RecommendedImpostorCount is the clamp target used when a stored setting
// becomes invalid for the roster that is actually present.
func RecommendedImpostorCount(numPlayers int) int {
	if numPlayers <= 6 {
		return 1
	}
	return 2
}
