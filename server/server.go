package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/impostor/broadcast"
	"github.com/wfunc/impostor/config"
	"github.com/wfunc/impostor/logger"
	"github.com/wfunc/impostor/monitor"
	"github.com/wfunc/impostor/network"
	"github.com/wfunc/impostor/room"
	"github.com/wfunc/impostor/services"
	"github.com/wfunc/impostor/session"
	"github.com/wfunc/impostor/timer"
	"github.com/wfunc/impostor/topic"
)

// GameServer wires the transport to the room registry: one goroutine per
// websocket connection reads events and applies them to the single
// authoritative room state.
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    *broadcast.SessionBroadcaster
	timers         *timer.Manager
	monitor        *monitor.Monitor
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, topics topic.Provider, stats *services.StatsService,
	mon *monitor.Monitor) *GameServer {
	sessionManager := session.NewManager()
	broadcaster := broadcast.NewSessionBroadcaster(sessionManager)
	timers := timer.NewManager()

	var recorder room.GameRecorder
	if stats != nil {
		recorder = stats
	}

	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		sessionManager: sessionManager,
		broadcaster:    broadcaster,
		timers:         timers,
		roomManager:    room.NewManager(broadcaster, timers, topics, recorder, cfg.Game),
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	return s
}

func (s *GameServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/rooms", s.handleRooms)
	mux.HandleFunc("/healthz", s.handleHealth)

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.roomManager.Stop()
	s.timers.Stop()
}

// Rooms exposes the registry, for the RPC service and tests.
func (s *GameServer) Rooms() *room.Manager {
	return s.roomManager
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncOnlinePlayers()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.handleDisconnect(sess)
		s.sessionManager.Remove(sess.GetID())
		if s.monitor != nil {
			s.monitor.DecOnlinePlayers()
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			evt, err := wsConn.ReadEvent()
			if err != nil {
				return
			}
			start := time.Now()
			s.handleEvent(sess, evt)
			if s.monitor != nil {
				s.monitor.IncEventsReceived()
				s.monitor.ObserveEventLatency(time.Since(start))
			}
		}
	}
}

// handleDisconnect keeps the seat: the player is marked disconnected, not
// removed, so they can rejoin by name. Empty rooms are reclaimed by the
// registry sweep.
func (s *GameServer) handleDisconnect(sess *session.Session) {
	code, _ := sess.Room()
	if code == "" {
		return
	}
	if rm, exists := s.roomManager.Get(code); exists {
		rm.Disconnect(sess.GetID())
	}
	sess.Unbind()
}

func (s *GameServer) handleEvent(sess *session.Session, evt *network.Event) {
	switch evt.Event {
	case network.EvtJoinRoom:
		s.handleJoinRoom(sess, evt)
	case network.EvtRejoinRoom:
		s.handleRejoinRoom(sess, evt)
	case network.EvtLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.EvtStartGame, network.EvtRestartGame:
		s.handleStartGame(sess)
	case network.EvtSubmitDescription:
		s.handleSubmitDescription(sess, evt)
	case network.EvtSendMessage:
		s.handleSendMessage(sess, evt)
	case network.EvtVote:
		s.handleVote(sess, evt)
	default:
		logger.Log.Infof("Unknown event type: %s", evt.Event)
	}
}
