package room

import (
	"context"
	"testing"

	"github.com/wfunc/impostor/network"
)

// startVotingGame seats n players, starts the game, and drives it to the
// voting phase.
func startVotingGame(t *testing.T, n int) (*Room, *MockBroadcaster) {
	t.Helper()
	room, broadcaster := newTestRoom(t)
	seatPlayers(t, room, n)
	if err := room.StartGame(context.Background(), "s1"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	openVote(t, room)
	if room.Phase() != PhaseVoting {
		t.Fatalf("Expected voting phase, got %s", room.Phase())
	}
	return room, broadcaster
}

func TestCastVote_IgnoredOutsideVotingPhase(t *testing.T) {
	room, _ := newTestRoom(t)
	seatPlayers(t, room, 3)

	room.CastVote("s1", "p2")

	room.mu.Lock()
	total := len(room.voteLog)
	room.mu.Unlock()
	if total != 0 {
		t.Error("Votes outside the voting phase must be ignored")
	}
}

func TestCastVote_DoubleVoteIgnored(t *testing.T) {
	room, _ := startVotingGame(t, 4)

	room.CastVote("s1", "p2")
	room.CastVote("s1", "p3")

	room.mu.Lock()
	defer room.mu.Unlock()
	if len(room.voteLog) != 1 {
		t.Fatalf("Expected 1 recorded vote, got %d", len(room.voteLog))
	}
	if room.voteLog[0].Target != "p2" {
		t.Errorf("Second ballot must not replace the first, target is %s", room.voteLog[0].Target)
	}
}

func TestCastVote_UnknownTargetIgnored(t *testing.T) {
	room, _ := startVotingGame(t, 4)

	room.CastVote("s1", "stranger")

	room.mu.Lock()
	total := len(room.voteLog)
	room.mu.Unlock()
	if total != 0 {
		t.Error("Votes for absent players must be ignored")
	}
}

func TestCastVote_BroadcastsProgress(t *testing.T) {
	room, broadcaster := startVotingGame(t, 4)

	room.CastVote("s1", "p2")

	evt, ok := broadcaster.lastOf(network.EvtVoteUpdate)
	if !ok {
		t.Fatal("Expected a vote update broadcast")
	}
	update := evt.Payload.(VoteUpdate)
	if update.TotalVotes != 1 {
		t.Errorf("Expected 1 total vote, got %d", update.TotalVotes)
	}
	if update.RequiredVotes != 4 {
		t.Errorf("Expected 4 required votes, got %d", update.RequiredVotes)
	}
	if update.Votes["p2"] != 1 {
		t.Errorf("Expected 1 vote for p2, got %d", update.Votes["p2"])
	}
}

func TestVote_PluralityEliminates(t *testing.T) {
	// Five players, one impostor. Three ballots against one investigator is
	// a strict plurality; with four investigators left the game continues.
	room, broadcaster := startVotingGame(t, 5)

	investigators := investigatorNames(room)
	impostor := impostorNames(room)[0]
	target := investigators[0]

	for _, name := range investigators[1:] {
		room.CastVote(sessionOf(t, room, name), target)
	}
	room.CastVote(sessionOf(t, room, impostor), investigators[1])
	room.CastVote(sessionOf(t, room, target), impostor)

	if room.Phase() != PhaseResults {
		t.Fatalf("All ballots in should finalize the vote, phase is %s", room.Phase())
	}
	if !playerByName(t, room, target).Eliminated {
		t.Errorf("Plurality target %s should be eliminated", target)
	}

	evt, ok := broadcaster.lastOf(network.EvtVoteResults)
	if !ok {
		t.Fatal("Expected a vote results broadcast")
	}
	result := evt.Payload.(VoteResults)
	if result.EliminatedPlayer != target {
		t.Errorf("Expected %s eliminated, got %s", target, result.EliminatedPlayer)
	}
	if result.WasImpostor {
		t.Error("Eliminated investigator should not be reported as impostor")
	}
}

func TestVote_TieEliminatesNobody(t *testing.T) {
	room, broadcaster := startVotingGame(t, 4)

	// Two against p1, two against p2.
	room.CastVote("s1", "p2")
	room.CastVote("s2", "p1")
	room.CastVote("s3", "p1")
	room.CastVote("s4", "p2")

	if room.Phase() != PhaseResults {
		t.Fatalf("Tie should still move to results, phase is %s", room.Phase())
	}

	room.mu.Lock()
	for _, p := range room.players {
		if p.Eliminated {
			t.Errorf("Tied vote must not eliminate %s", p.Name)
		}
	}
	room.mu.Unlock()

	evt, ok := broadcaster.lastOf(network.EvtVoteResults)
	if !ok {
		t.Fatal("Expected a vote results broadcast")
	}
	if result := evt.Payload.(VoteResults); result.EliminatedPlayer != "" {
		t.Errorf("Tie should report no elimination, got %s", result.EliminatedPlayer)
	}
}

func TestVote_DisconnectOfLastHoldoutFinalizes(t *testing.T) {
	room, _ := startVotingGame(t, 4)

	room.CastVote("s1", "p2")
	room.CastVote("s2", "p3")
	room.CastVote("s3", "p2")

	if room.Phase() != PhaseVoting {
		t.Fatalf("Vote should still be open, phase is %s", room.Phase())
	}

	// The only player who has not voted drops; nobody is left to wait for.
	room.Disconnect("s4")

	if room.Phase() != PhaseResults {
		t.Errorf("Vote should finalize when the last holdout disconnects, phase is %s", room.Phase())
	}
}
