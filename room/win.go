// room/win.go
package room

import (
	"fmt"
	"time"

	"github.com/wfunc/impostor/logger"
	"github.com/wfunc/impostor/models"
	"github.com/wfunc/impostor/network"
)

const (
	WinnerImpostor     = "impostor"
	WinnerInvestigator = "investigator"

	impostorWinBonus     = 3
	investigatorWinBonus = 1
)

// checkGameEnd compares the surviving sides, counting only players who are
// both alive and connected. Impostors win when they are not outnumbered;
// investigators win when no impostor remains. An empty winner means the
// game goes on. Lock held.
func (r *Room) checkGameEnd() string {
	aliveImpostors, aliveInvestigators := 0, 0
	for _, p := range r.players {
		if !p.Alive() || !p.Connected() {
			continue
		}
		if p.Impostor {
			aliveImpostors++
		} else {
			aliveInvestigators++
		}
	}

	if aliveImpostors == 0 {
		return WinnerInvestigator
	}
	if aliveImpostors >= aliveInvestigators {
		return WinnerImpostor
	}
	return ""
}

// settleRound runs after the vote results are out: either the game ends
// and scores are awarded, or the next round begins after a short delay.
// Lock held.
func (r *Room) settleRound() {
	winner := r.checkGameEnd()
	if winner == "" {
		r.appendChat(ChatMessage{Type: "system", Message: "The game continues. Next round soon..."})
		r.scheduleAdvance(r.cfg.ResultsDelay, func() {
			if r.phase == PhaseResults {
				r.beginRound()
			}
		})
		return
	}
	r.endGame(winner)
}

// endGame awards scores and statistics, announces the outcome, archives
// the record, and returns the room to the lobby after the results delay.
// Scores and statistics persist across games; per-game flags reset when
// the next game starts. Lock held.
func (r *Room) endGame(winner string) {
	record := &models.GameRecord{
		RoomCode:   r.Code,
		RoomName:   r.Name,
		Winner:     winner,
		Topic:      r.topic.Name,
		Rounds:     r.round,
		Impostors:  append([]string(nil), r.impostors...),
		FinishedAt: time.Now(),
	}

	for _, p := range r.players {
		points := 0
		won := false
		if p.Impostor {
			p.GamesImpostor++
			if winner == WinnerImpostor {
				points = impostorWinBonus
				won = true
			}
		} else {
			p.GamesInvestigator++
			// Only surviving investigators collect the bonus.
			if winner == WinnerInvestigator && p.Alive() {
				points = investigatorWinBonus
				won = true
			}
		}
		if won {
			p.Score += points
			p.GamesWon++
		}
		record.Players = append(record.Players, models.PlayerResult{
			Name:     p.Name,
			Impostor: p.Impostor,
			Won:      won,
			Points:   points,
			Score:    p.Score,
		})
	}

	var message string
	if winner == WinnerImpostor {
		message = fmt.Sprintf("The impostors win! The topic was %s.", r.topic.Name)
	} else {
		message = fmt.Sprintf("The investigators win! The topic was %s.", r.topic.Name)
	}

	t := r.topic
	end := GameEnd{
		Winner:       winner,
		Message:      message,
		Topic:        r.topic.Name,
		TopicData:    &t,
		Impostors:    append([]string(nil), r.impostors...),
		NumImpostors: len(r.impostors),
		Scores:       r.scoreboard(),
		CanRestart:   true,
		CreatorName:  r.creatorName(),
	}

	logger.Log.Infof("%s: game over, winner=%s after %d round(s)", r, winner, r.round)

	r.appendChat(ChatMessage{Type: "system", Message: message})
	r.broadcaster.ToSessions(r.connectedSessionIDs(), network.EvtGameEnd, end)

	if r.recorder != nil {
		r.recorder.RecordGame(record)
	}

	r.scheduleAdvance(r.cfg.ResultsDelay, r.backToLobby)
}

// backToLobby reopens the lobby for a restart. Lock held.
func (r *Room) backToLobby() {
	if !r.transition(PhaseLobby) {
		return
	}
	r.turnOrder = nil
	r.turnIndex = -1
	r.votes = make(map[string]int)
	r.voteLog = r.voteLog[:0]
	r.impostors = r.impostors[:0]
	for _, p := range r.players {
		p.resetForGame()
	}

	r.broadcastState(GameStateUpdate{State: PhaseLobby.String()})
	r.broadcastPlayers()
}

// scoreboard snapshots the cumulative scores, lock held.
func (r *Room) scoreboard() []ScoreEntry {
	scores := make([]ScoreEntry, 0, len(r.players))
	for _, p := range r.players {
		scores = append(scores, ScoreEntry{
			Name:              p.Name,
			Score:             p.Score,
			GamesWon:          p.GamesWon,
			GamesImpostor:     p.GamesImpostor,
			GamesInvestigator: p.GamesInvestigator,
		})
	}
	return scores
}
