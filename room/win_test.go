package room

import (
	"context"
	"sync"
	"testing"

	"github.com/wfunc/impostor/models"
	"github.com/wfunc/impostor/network"
)

// mockRecorder is a test double for the GameRecorder interface.
type mockRecorder struct {
	mu      sync.Mutex
	records []*models.GameRecord
}

func (m *mockRecorder) RecordGame(record *models.GameRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
}

func (m *mockRecorder) last() *models.GameRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		return nil
	}
	return m.records[len(m.records)-1]
}

func TestCheckGameEnd(t *testing.T) {
	cases := []struct {
		name      string
		impostors int
		others    int
		want      string
	}{
		{"no impostors left", 0, 3, WinnerInvestigator},
		{"impostors match investigators", 1, 1, WinnerImpostor},
		{"impostors outnumbered", 1, 2, ""},
		{"two on two", 2, 2, WinnerImpostor},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			room, _ := newTestRoom(t)
			for i := 0; i < c.impostors; i++ {
				room.players = append(room.players, &Player{
					Name: "imp", Status: StatusConnected, Impostor: true,
				})
			}
			for i := 0; i < c.others; i++ {
				room.players = append(room.players, &Player{
					Name: "inv", Status: StatusConnected,
				})
			}

			room.mu.Lock()
			got := room.checkGameEnd()
			room.mu.Unlock()
			if got != c.want {
				t.Errorf("Expected winner %q, got %q", c.want, got)
			}
		})
	}
}

func TestCheckGameEnd_IgnoresDisconnectedPlayers(t *testing.T) {
	room, _ := newTestRoom(t)
	room.players = []*Player{
		{Name: "imp", Status: StatusConnected, Impostor: true},
		{Name: "inv1", Status: StatusConnected},
		{Name: "inv2", Status: StatusDisconnected},
	}

	room.mu.Lock()
	got := room.checkGameEnd()
	room.mu.Unlock()

	// Only one investigator is actually present, so the impostor is no
	// longer outnumbered.
	if got != WinnerImpostor {
		t.Errorf("Expected impostor win with disconnected investigator, got %q", got)
	}
}

// eliminateByVote drives a full vote in which everyone except the target
// votes against the target, and the target votes for someone else.
func eliminateByVote(t *testing.T, room *Room, target string) {
	t.Helper()
	openVote(t, room)

	var other string
	room.mu.Lock()
	for _, p := range room.players {
		if p.Name != target && p.Alive() {
			other = p.Name
			break
		}
	}
	room.mu.Unlock()

	room.CastVote(sessionOf(t, room, target), other)
	room.mu.Lock()
	voters := make([]string, 0, len(room.players))
	for _, p := range room.players {
		if p.Name != target && p.Alive() && p.Connected() {
			voters = append(voters, p.SessionID)
		}
	}
	room.mu.Unlock()
	for _, sid := range voters {
		room.CastVote(sid, target)
	}
}

func TestGameEnd_ImpostorWin(t *testing.T) {
	// Three players, one impostor. Eliminating an investigator leaves the
	// impostor facing a single investigator: the impostors win.
	recorder := &mockRecorder{}
	room, broadcaster := newTestRoomWith(t, Options{MaxPlayers: MaxPlayers, NumImpostors: 1}, recorder)
	seatPlayers(t, room, 3)
	if err := room.StartGame(context.Background(), "s1"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	impostor := impostorNames(room)[0]
	target := investigatorNames(room)[0]
	eliminateByVote(t, room, target)

	evt, ok := broadcaster.lastOf(network.EvtGameEnd)
	if !ok {
		t.Fatal("Expected a game end broadcast")
	}
	end := evt.Payload.(GameEnd)
	if end.Winner != WinnerImpostor {
		t.Fatalf("Expected impostor win, got %q", end.Winner)
	}
	if !end.CanRestart {
		t.Error("Finished game should allow a restart")
	}

	imp := playerByName(t, room, impostor)
	if imp.Score != 3 {
		t.Errorf("Winning impostor should score 3 points, got %d", imp.Score)
	}
	if imp.GamesWon != 1 || imp.GamesImpostor != 1 {
		t.Errorf("Impostor counters wrong: won=%d asImpostor=%d", imp.GamesWon, imp.GamesImpostor)
	}
	for _, name := range investigatorNames(room) {
		p := playerByName(t, room, name)
		if p.Score != 0 {
			t.Errorf("Losing investigator %s should score 0, got %d", name, p.Score)
		}
		if p.GamesInvestigator != 1 {
			t.Errorf("Investigator %s should have 1 game as investigator, got %d", name, p.GamesInvestigator)
		}
	}

	record := recorder.last()
	if record == nil {
		t.Fatal("Finished game should be archived")
	}
	if record.Winner != WinnerImpostor || record.Rounds != 1 {
		t.Errorf("Archive mismatch: winner=%s rounds=%d", record.Winner, record.Rounds)
	}
	if len(record.Impostors) != 1 || record.Impostors[0] != impostor {
		t.Errorf("Archive should name the impostor, got %v", record.Impostors)
	}
}

func TestGameEnd_InvestigatorWin(t *testing.T) {
	room, broadcaster := newTestRoom(t)
	seatPlayers(t, room, 3)
	if err := room.StartGame(context.Background(), "s1"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	impostor := impostorNames(room)[0]
	eliminateByVote(t, room, impostor)

	evt, ok := broadcaster.lastOf(network.EvtGameEnd)
	if !ok {
		t.Fatal("Expected a game end broadcast")
	}
	end := evt.Payload.(GameEnd)
	if end.Winner != WinnerInvestigator {
		t.Fatalf("Expected investigator win, got %q", end.Winner)
	}

	for _, name := range investigatorNames(room) {
		p := playerByName(t, room, name)
		if p.Score != 1 {
			t.Errorf("Winning investigator %s should score 1 point, got %d", name, p.Score)
		}
		if p.GamesWon != 1 {
			t.Errorf("Investigator %s should have 1 win, got %d", name, p.GamesWon)
		}
	}
	imp := playerByName(t, room, impostor)
	if imp.Score != 0 {
		t.Errorf("Losing impostor should score 0, got %d", imp.Score)
	}
	if imp.GamesImpostor != 1 {
		t.Errorf("Impostor counter should still increment, got %d", imp.GamesImpostor)
	}
}

func TestGameEnd_EliminatedInvestigatorGetsNoBonus(t *testing.T) {
	// Round one eliminates an investigator, round two eliminates the
	// impostor. The investigators win, but the fallen one takes nothing.
	room, _ := newTestRoom(t)
	seatPlayers(t, room, 5)
	if err := room.StartGame(context.Background(), "s1"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	fallen := investigatorNames(room)[0]
	eliminateByVote(t, room, fallen)
	if room.Phase() != PhaseResults {
		t.Fatalf("Expected results phase after round one, got %s", room.Phase())
	}

	room.mu.Lock()
	room.beginRound()
	room.mu.Unlock()

	impostor := impostorNames(room)[0]
	eliminateByVote(t, room, impostor)

	out := playerByName(t, room, fallen)
	if out.Score != 0 || out.GamesWon != 0 {
		t.Errorf("Eliminated investigator must not collect the win bonus: score=%d won=%d",
			out.Score, out.GamesWon)
	}
	if out.GamesInvestigator != 1 {
		t.Errorf("Role counter should still increment, got %d", out.GamesInvestigator)
	}

	for _, name := range investigatorNames(room) {
		if name == fallen {
			continue
		}
		p := playerByName(t, room, name)
		if p.Score != 1 || p.GamesWon != 1 {
			t.Errorf("Surviving investigator %s should collect the bonus: score=%d won=%d",
				name, p.Score, p.GamesWon)
		}
	}
}

func TestBackToLobby_KeepsScores(t *testing.T) {
	room, _ := newTestRoom(t)
	seatPlayers(t, room, 3)
	if err := room.StartGame(context.Background(), "s1"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	impostor := impostorNames(room)[0]
	eliminateByVote(t, room, impostor)

	room.mu.Lock()
	room.backToLobby()
	room.mu.Unlock()

	if room.Phase() != PhaseLobby {
		t.Fatalf("Expected lobby phase, got %s", room.Phase())
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	for _, p := range room.players {
		if p.Impostor || p.Eliminated || p.HasDescribed || p.HasVoted {
			t.Errorf("Per-game state of %s should be reset", p.Name)
		}
		if p.Name != impostor && p.Score != 1 {
			t.Errorf("Score of %s should survive the lobby reset, got %d", p.Name, p.Score)
		}
	}
	if len(room.impostors) != 0 {
		t.Error("Impostor list should be cleared in the lobby")
	}
}

func TestGameContinues_AfterNonDecisiveElimination(t *testing.T) {
	room, _ := newTestRoom(t)
	seatPlayers(t, room, 5)
	if err := room.StartGame(context.Background(), "s1"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	target := investigatorNames(room)[0]
	eliminateByVote(t, room, target)

	// One impostor against three investigators: nobody has won yet.
	if room.Phase() != PhaseResults {
		t.Fatalf("Expected results phase, got %s", room.Phase())
	}

	room.mu.Lock()
	winner := room.checkGameEnd()
	room.mu.Unlock()
	if winner != "" {
		t.Errorf("Game should continue, got winner %q", winner)
	}
}
