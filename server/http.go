package server

import (
	"encoding/json"
	"net/http"

	"github.com/wfunc/impostor/room"
)

type createRoomRequest struct {
	Name         string `json:"name"`
	IsPublic     bool   `json:"isPublic"`
	MaxPlayers   int    `json:"maxPlayers"`
	NumImpostors int    `json:"numImpostors"`
	CreatorName  string `json:"creatorName"`
}

type createRoomResponse struct {
	Code string `json:"code"`
}

// handleRooms serves the room registry: GET lists public rooms, POST
// creates a named room and returns its generated code.
func (s *GameServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRooms(w)
	case http.MethodPost:
		s.createRoom(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *GameServer) listRooms(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, s.roomManager.ListPublic())
}

func (s *GameServer) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rm, err := s.roomManager.Create("", room.Options{
		Name:         req.Name,
		Public:       req.IsPublic,
		MaxPlayers:   req.MaxPlayers,
		NumImpostors: req.NumImpostors,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.roomManager.Count())
	}

	writeJSON(w, http.StatusCreated, createRoomResponse{Code: rm.Code})
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"status": "ok"}
	if s.monitor != nil {
		status["uptimeSeconds"] = int(s.monitor.Uptime().Seconds())
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
