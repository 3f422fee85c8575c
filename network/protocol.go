package network

// Inbound event names (client -> server).
const (
	EvtJoinRoom          = "joinRoom"
	EvtRejoinRoom        = "rejoinRoom"
	EvtLeaveRoom         = "leaveRoom"
	EvtStartGame         = "startGame"
	EvtRestartGame       = "restartGame"
	EvtSubmitDescription = "submitDescription"
	EvtSendMessage       = "sendMessage"
	EvtVote              = "vote"
)

// Outbound event names (server -> client).
const (
	EvtError            = "error"
	EvtPlayersUpdate    = "playersUpdate"
	EvtRoleAssigned     = "roleAssigned"
	EvtGameStateUpdate  = "gameStateUpdate"
	EvtChatMessage      = "chatMessage"
	EvtTimerUpdate      = "timerUpdate"
	EvtVoteUpdate       = "voteUpdate"
	EvtVoteResults      = "voteResults"
	EvtGameEnd          = "gameEnd"
	EvtReconnectSuccess = "reconnectSuccess"
	EvtRoomListUpdate   = "roomListUpdate"
)
