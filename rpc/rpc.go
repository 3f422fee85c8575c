package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/impostor/logger"
	"github.com/wfunc/impostor/models"
	"github.com/wfunc/impostor/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered by the
// caller before Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsRPC exposes the stats service over net/rpc for admin tooling.
type StatsRPC struct {
	stats *services.StatsService
}

func NewStatsRPC(stats *services.StatsService) *StatsRPC {
	return &StatsRPC{stats: stats}
}

type PlayerStatsArgs struct {
	Name string
}

type PlayerStatsReply struct {
	Stats *models.PlayerStats
}

func (r *StatsRPC) PlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	stats, err := r.stats.PlayerStats(args.Name)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}

type TopPlayersArgs struct {
	Limit int
}

type TopPlayersReply struct {
	Players []models.PlayerStats
}

func (r *StatsRPC) TopPlayers(args *TopPlayersArgs, reply *TopPlayersReply) error {
	players, err := r.stats.TopPlayers(args.Limit)
	if err != nil {
		return err
	}
	reply.Players = players
	return nil
}
