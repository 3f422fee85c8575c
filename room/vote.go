// room/vote.go
package room

import (
	"fmt"
	"time"

	"github.com/wfunc/impostor/network"
)

// CastVote records one elimination vote. Votes outside the voting phase,
// from dead or already-voted players, or against absent/dead targets are
// silently ignored.
func (r *Room) CastVote(sessionID, targetName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	voter := r.findBySession(sessionID)
	if r.phase != PhaseVoting || voter == nil || !voter.Alive() || voter.HasVoted {
		return
	}
	target := r.findByName(targetName)
	if target == nil || !target.Alive() {
		return
	}

	voter.HasVoted = true
	voter.VotedFor = target.Name
	r.votes[target.Name]++
	r.voteLog = append(r.voteLog, VoteRecord{
		Voter:     voter.Name,
		Target:    target.Name,
		Timestamp: time.Now(),
	})
	r.touch()

	r.broadcaster.ToSessions(r.connectedSessionIDs(), network.EvtVoteUpdate, VoteUpdate{
		Voter:         voter.Name,
		Target:        target.Name,
		TotalVotes:    len(r.voteLog),
		RequiredVotes: r.requiredVotes(),
		VoteDetails:   append([]VoteRecord(nil), r.voteLog...),
		Votes:         copyTally(r.votes),
	})

	r.maybeFinalizeVotes()
}

// requiredVotes is the number of ballots that closes the vote early:
// every player who is both alive and connected.
func (r *Room) requiredVotes() int {
	count := 0
	for _, p := range r.players {
		if p.Alive() && p.Connected() {
			count++
		}
	}
	return count
}

// maybeFinalizeVotes closes the vote once every alive connected player has
// voted. The voting timer covers the rest. Lock held.
func (r *Room) maybeFinalizeVotes() {
	if r.phase != PhaseVoting {
		return
	}
	for _, p := range r.players {
		if p.Alive() && p.Connected() && !p.HasVoted {
			return
		}
	}
	r.finalizeVotes()
}

// finalizeVotes tabulates the ballots and moves to results. A strict
// plurality eliminates its target; a tie for the maximum, or zero ballots,
// eliminates nobody. Lock held.
func (r *Room) finalizeVotes() {
	if r.phase != PhaseVoting {
		return
	}
	r.cancelAdvance()
	r.transition(PhaseResults)

	eliminated := r.tabulate()

	result := VoteResults{
		Votes:       copyTally(r.votes),
		VoteDetails: append([]VoteRecord(nil), r.voteLog...),
	}
	if eliminated == nil {
		result.Message = "The vote was tied. Nobody was eliminated."
	} else {
		eliminated.Eliminated = true
		result.EliminatedPlayer = eliminated.Name
		result.WasImpostor = eliminated.Impostor
		if eliminated.Impostor {
			result.Message = fmt.Sprintf("%s was eliminated. They were an impostor!", eliminated.Name)
		} else {
			result.Message = fmt.Sprintf("%s was eliminated. They were an investigator.", eliminated.Name)
		}
	}

	r.appendChat(ChatMessage{Type: "system", Message: result.Message})
	r.broadcaster.ToSessions(r.connectedSessionIDs(), network.EvtVoteResults, result)
	r.broadcastState(GameStateUpdate{State: PhaseResults.String()})
	r.broadcastPlayers()

	r.settleRound()
}

// tabulate returns the strict-plurality target, or nil when no candidate
// has strictly more votes than every other. Ties are never broken; the
// conservative outcome is no elimination.
func (r *Room) tabulate() *Player {
	best, bestCount, tied := "", 0, false
	for name, count := range r.votes {
		switch {
		case count > bestCount:
			best, bestCount, tied = name, count, false
		case count == bestCount && count > 0:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return nil
	}
	return r.findByName(best)
}

func copyTally(tally map[string]int) map[string]int {
	out := make(map[string]int, len(tally))
	for k, v := range tally {
		out[k] = v
	}
	return out
}
