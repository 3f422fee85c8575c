// room/events.go
package room

import (
	"time"

	"github.com/wfunc/impostor/topic"
)

// Payloads for the outbound events. Field names follow the client wire
// format, so these marshal directly.

type PlayerInfo struct {
	Name         string `json:"name"`
	IsCreator    bool   `json:"isCreator"`
	Eliminated   bool   `json:"eliminated"`
	Disconnected bool   `json:"disconnected"`
	HasDescribed bool   `json:"hasDescribed"`
	HasVoted     bool   `json:"hasVoted"`
	Score        int    `json:"score"`
	GamesWon     int    `json:"gamesWon"`
}

type PlayersUpdate struct {
	Players   []PlayerInfo `json:"players"`
	GameState string       `json:"gameState"`
	CanStart  bool         `json:"canStart"`
	CreatorID string       `json:"creatorId"`
}

// RoleAssigned is unicast per player. Topic fields are omitted for the
// impostor, who must not learn the topic.
type RoleAssigned struct {
	Impostor  bool         `json:"impostor"`
	Topic     string       `json:"topic,omitempty"`
	TopicData *topic.Topic `json:"topicData,omitempty"`
}

type GameStateUpdate struct {
	State         string   `json:"state"`
	CurrentPlayer string   `json:"currentPlayer,omitempty"`
	Round         int      `json:"round"`
	Candidates    []string `json:"candidates,omitempty"`
}

type ChatMessage struct {
	Type       string `json:"type"` // system, player, description
	PlayerName string `json:"playerName,omitempty"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"` // epoch ms
}

// TimerUpdate carries the wall-clock deadline so late observers can compute
// the remaining time themselves.
type TimerUpdate struct {
	DurationMs       int64 `json:"durationMs"`
	StartTimeEpochMs int64 `json:"startTimeEpochMs"`
}

type VoteRecord struct {
	Voter     string    `json:"voter"`
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
}

type VoteUpdate struct {
	Voter         string         `json:"voter"`
	Target        string         `json:"target"`
	TotalVotes    int            `json:"totalVotes"`
	RequiredVotes int            `json:"requiredVotes"`
	VoteDetails   []VoteRecord   `json:"voteDetails"`
	Votes         map[string]int `json:"votes"`
}

type VoteResults struct {
	EliminatedPlayer string         `json:"eliminatedPlayer,omitempty"`
	WasImpostor      bool           `json:"wasImpostor"`
	Votes            map[string]int `json:"votes"`
	VoteDetails      []VoteRecord   `json:"voteDetails"`
	Message          string         `json:"message"`
}

type ScoreEntry struct {
	Name              string `json:"name"`
	Score             int    `json:"score"`
	GamesWon          int    `json:"gamesWon"`
	GamesImpostor     int    `json:"gamesImpostor"`
	GamesInvestigator int    `json:"gamesInvestigator"`
}

type GameEnd struct {
	Winner       string       `json:"winner"` // "impostor" or "investigator"
	Message      string       `json:"message"`
	Topic        string       `json:"topic"`
	TopicData    *topic.Topic `json:"topicData,omitempty"`
	Impostors    []string     `json:"impostors"`
	NumImpostors int          `json:"numImpostors"`
	Scores       []ScoreEntry `json:"scores"`
	CanRestart   bool         `json:"canRestart"`
	CreatorName  string       `json:"creatorName"`
}

type ReconnectSuccess struct {
	Room      string `json:"room"`
	GameState string `json:"gameState"`
	IsCreator bool   `json:"isCreator"`
	Message   string `json:"message"`
}

// Info is the registry listing entry served by GET /rooms.
type Info struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Phase      string `json:"phase"`
	Joinable   bool   `json:"joinable"`
}
