package server

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/wfunc/impostor/logger"
	"github.com/wfunc/impostor/network"
	"github.com/wfunc/impostor/room"
	"github.com/wfunc/impostor/session"
)

type joinRequest struct {
	Name string `json:"name"`
	Room string `json:"room"`
}

type describeRequest struct {
	Room string `json:"room"`
	Word string `json:"word"`
}

type messageRequest struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

type voteRequest struct {
	Room   string `json:"room"`
	Target string `json:"target"`
}

// sendError surfaces a recoverable failure to the requester only.
func (s *GameServer) sendError(sess *session.Session, err error) {
	sess.Send(network.EvtError, err.Error())
}

// currentRoom resolves the session's bound room.
func (s *GameServer) currentRoom(sess *session.Session) (*room.Room, bool) {
	code, _ := sess.Room()
	if code == "" {
		return nil, false
	}
	return s.roomManager.Get(code)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, evt *network.Event) {
	var req joinRequest
	if err := json.Unmarshal(evt.Data, &req); err != nil {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.Room) == "" {
		return
	}

	// Joining an unknown code creates the room: create-if-absent keeps the
	// create/join race harmless.
	rm, err := s.roomManager.GetOrCreate(req.Room)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.roomManager.Count())
	}

	if err := rm.Join(sess.GetID(), req.Name); err != nil {
		s.sendError(sess, err)
		return
	}
	sess.Bind(rm.Code, req.Name)
	logger.Log.Infof("Session %s joined %s as %q", sess.GetID(), rm, req.Name)
}

func (s *GameServer) handleRejoinRoom(sess *session.Session, evt *network.Event) {
	var req joinRequest
	if err := json.Unmarshal(evt.Data, &req); err != nil {
		return
	}

	rm, exists := s.roomManager.Get(req.Room)
	if !exists {
		s.sendError(sess, room.ErrRoomNotFound)
		return
	}

	ack, err := rm.Reconnect(sess.GetID(), strings.TrimSpace(req.Name))
	if err != nil {
		s.sendError(sess, err)
		return
	}
	sess.Bind(rm.Code, req.Name)
	sess.Send(network.EvtReconnectSuccess, ack)
	logger.Log.Infof("Session %s rejoined %s as %q", sess.GetID(), rm, req.Name)
}

func (s *GameServer) handleLeaveRoom(sess *session.Session) {
	rm, exists := s.currentRoom(sess)
	if !exists {
		return
	}

	if empty := rm.Leave(sess.GetID()); empty {
		s.roomManager.Delete(rm.Code)
		if s.monitor != nil {
			s.monitor.SetActiveRooms(s.roomManager.Count())
		}
	}
	sess.Unbind()
}

func (s *GameServer) handleStartGame(sess *session.Session) {
	rm, exists := s.currentRoom(sess)
	if !exists {
		s.sendError(sess, room.ErrRoomNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rm.StartGame(ctx, sess.GetID()); err != nil {
		s.sendError(sess, err)
		return
	}
	if s.monitor != nil {
		s.monitor.IncGamesStarted()
	}
}

func (s *GameServer) handleSubmitDescription(sess *session.Session, evt *network.Event) {
	var req describeRequest
	if err := json.Unmarshal(evt.Data, &req); err != nil {
		return
	}
	if rm, exists := s.currentRoom(sess); exists {
		rm.SubmitDescription(sess.GetID(), req.Word)
	}
}

func (s *GameServer) handleSendMessage(sess *session.Session, evt *network.Event) {
	var req messageRequest
	if err := json.Unmarshal(evt.Data, &req); err != nil {
		return
	}
	if rm, exists := s.currentRoom(sess); exists {
		rm.SendChat(sess.GetID(), strings.TrimSpace(req.Message))
	}
}

func (s *GameServer) handleVote(sess *session.Session, evt *network.Event) {
	var req voteRequest
	if err := json.Unmarshal(evt.Data, &req); err != nil {
		return
	}
	if rm, exists := s.currentRoom(sess); exists {
		rm.CastVote(sess.GetID(), req.Target)
	}
}
