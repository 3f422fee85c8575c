// room/game.go
package room

import (
	"context"
	"math/rand"
	"strings"

	"github.com/wfunc/impostor/logger"
	"github.com/wfunc/impostor/network"
	"github.com/wfunc/impostor/topic"
)

// StartGame begins a new game. Only the creator may start, the room must
// be in the lobby, and at least three players must be connected. The topic
// pool is fetched before the room lock is taken so a slow catalog never
// stalls timer callbacks; provider failure falls back to the static pool
// and never blocks the start.
func (r *Room) StartGame(ctx context.Context, sessionID string) error {
	pool := r.fetchPool(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findBySession(sessionID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if !player.IsCreator {
		return ErrUnauthorized
	}
	if r.phase != PhaseLobby {
		return ErrGameInProgress
	}
	if r.connectedCount() < MinPlayers {
		return ErrInsufficientPlayers
	}

	// A roster that shrank between games can invalidate the configured
	// impostor count; clamp silently to the recommended value.
	numPlayers := len(r.players)
	if !ValidImpostorCount(numPlayers, r.NumImpostors) {
		clamped := RecommendedImpostorCount(numPlayers)
		logger.Log.Infof("%s: clamping impostor count %d -> %d for %d players",
			r, r.NumImpostors, clamped, numPlayers)
		r.NumImpostors = clamped
	}

	r.topic = pool[rand.Intn(len(pool))]
	r.round = 0
	for _, p := range r.players {
		p.resetForGame()
	}
	r.assignImpostors()
	r.touch()

	logger.Log.Infof("%s: game started, topic %q, impostors %v",
		r, r.topic.Name, r.impostors)

	r.appendChat(ChatMessage{Type: "system", Message: "The game has started!"})
	for _, p := range r.players {
		r.sendRole(p)
	}
	r.beginRound()
	return nil
}

// RestartGame starts the next game from the lobby after a finished one.
// Same contract as StartGame.
func (r *Room) RestartGame(ctx context.Context, sessionID string) error {
	return r.StartGame(ctx, sessionID)
}

func (r *Room) fetchPool(ctx context.Context) []topic.Topic {
	pool, err := r.topics.Topics(ctx)
	if err != nil || len(pool) == 0 {
		if err != nil {
			logger.Log.Warnf("%s: topic provider failed, using fallback pool: %v", r, err)
		}
		pool = topic.FallbackPool()
	}
	return pool
}

// assignImpostors shuffles the roster uniformly (Fisher-Yates via
// rand.Shuffle) and marks the first NumImpostors seats. Lock held.
func (r *Room) assignImpostors() {
	shuffled := make([]*Player, len(r.players))
	copy(shuffled, r.players)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	r.impostors = r.impostors[:0]
	for i, p := range shuffled {
		p.Impostor = i < r.NumImpostors
		if p.Impostor {
			r.impostors = append(r.impostors, p.Name)
		}
	}
}

// sendRole unicasts the role assignment. The impostor learns only the
// role; everyone else gets the topic and its metadata. Lock held.
func (r *Room) sendRole(p *Player) {
	if !p.Connected() {
		return
	}
	payload := RoleAssigned{Impostor: p.Impostor}
	if !p.Impostor {
		t := r.topic
		payload.Topic = t.Name
		payload.TopicData = &t
	}
	r.broadcaster.ToSession(p.SessionID, network.EvtRoleAssigned, payload)
}

// beginRound starts the next describing round: bumps the round counter,
// resets per-round flags, reshuffles the turn order, and puts the first
// eligible player on the clock. Lock held.
func (r *Room) beginRound() {
	if !r.transition(PhaseDescribing) {
		return
	}
	r.round++
	for _, p := range r.players {
		p.resetForRound()
	}

	order := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if p.Alive() {
			order = append(order, p.Name)
		}
	}
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	r.turnOrder = order
	r.turnIndex = -1

	if !r.advanceTurn() {
		// Nobody can act; fall through to the debate.
		r.toDebating()
	}
}

// SubmitDescription handles a one-word clue from the player whose turn it
// is. Out-of-phase, out-of-turn, duplicate, or dead submissions are
// silently ignored so client/server races stay harmless.
func (r *Room) SubmitDescription(sessionID, word string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	word = strings.TrimSpace(word)
	player := r.findBySession(sessionID)
	if r.phase != PhaseDescribing || player == nil || word == "" {
		return
	}
	if !player.Alive() || player.HasDescribed || player.Name != r.currentTurnName() {
		return
	}

	player.HasDescribed = true
	r.touch()
	r.appendChat(ChatMessage{Type: "description", PlayerName: player.Name, Message: word})

	if !r.advanceTurn() {
		r.toDebating()
	}
}

// currentTurnName returns the name at the current turn index, or "".
func (r *Room) currentTurnName() string {
	if r.turnIndex < 0 || r.turnIndex >= len(r.turnOrder) {
		return ""
	}
	return r.turnOrder[r.turnIndex]
}

// advanceTurn moves the turn to the next player who is alive, connected,
// and has not described yet, searching at most one full pass so a roster
// with no eligible player cannot loop forever. Returns false when the
// describing phase is over (everyone described or nobody can act).
func (r *Room) advanceTurn() bool {
	r.cancelAdvance()

	if r.allAliveDescribed() {
		return false
	}

	n := len(r.turnOrder)
	for step := 1; step <= n; step++ {
		idx := (r.turnIndex + step) % n
		p := r.findByName(r.turnOrder[idx])
		if p == nil || !p.Alive() || !p.Connected() || p.HasDescribed {
			continue
		}

		r.turnIndex = idx
		r.broadcastState(GameStateUpdate{
			State:         PhaseDescribing.String(),
			CurrentPlayer: p.Name,
		})
		r.scheduleAdvance(r.cfg.DescribeDuration, r.describeTimeout)
		return true
	}
	return false
}

// describeTimeout fires when the current player ran out of time. The turn
// moves on without a clue. Lock held by the timer plumbing.
func (r *Room) describeTimeout() {
	if r.phase != PhaseDescribing {
		return
	}
	name := r.currentTurnName()
	if name != "" {
		r.appendChat(ChatMessage{Type: "system", Message: name + " ran out of time"})
	}
	if !r.advanceTurn() {
		r.toDebating()
	}
}

func (r *Room) allAliveDescribed() bool {
	for _, p := range r.players {
		if p.Alive() && p.Connected() && !p.HasDescribed {
			return false
		}
	}
	return true
}

// toDebating opens the free-discussion phase. Lock held.
func (r *Room) toDebating() {
	if !r.transition(PhaseDebating) {
		return
	}
	r.appendChat(ChatMessage{Type: "system", Message: "All clues are in. Debate who the impostor is!"})
	r.broadcastState(GameStateUpdate{State: PhaseDebating.String()})
	r.scheduleAdvance(r.cfg.DebateDuration, r.toVoting)
}

// toVoting opens the elimination vote. Lock held.
func (r *Room) toVoting() {
	if !r.transition(PhaseVoting) {
		return
	}
	r.votes = make(map[string]int)
	r.voteLog = r.voteLog[:0]
	for _, p := range r.players {
		p.resetForVote()
	}

	r.appendChat(ChatMessage{Type: "system", Message: "Voting has begun. Choose who to eliminate."})
	r.broadcastState(GameStateUpdate{
		State:      PhaseVoting.String(),
		Candidates: r.aliveNames(),
	})
	r.scheduleAdvance(r.cfg.VoteDuration, r.finalizeVotes)
}
