package main

import (
	"net/rpc"

	"github.com/wfunc/impostor/config"
	"github.com/wfunc/impostor/logger"
	"github.com/wfunc/impostor/monitor"
	"github.com/wfunc/impostor/persistence"
	adminrpc "github.com/wfunc/impostor/rpc"
	"github.com/wfunc/impostor/server"
	"github.com/wfunc/impostor/services"
	"github.com/wfunc/impostor/topic"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Topic catalog with static fallback
	topics := topic.NewCatalogProvider(cfg.Topic.CatalogURL, cfg.Topic.FetchTimeout, cfg.Topic.CacheTTL)

	// Optional game archive
	var stats *services.StatsService
	if cfg.Database.Enabled {
		db, err := openDatabase(cfg)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Database connection successful.")
		stats = services.NewStatsService(db)
	}

	// Metrics endpoint
	mon := monitor.NewMonitor("impostor")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Admin RPC, only useful with a database behind it
	if stats != nil {
		rpcServer, err := adminrpc.NewServer(cfg.Server.RPCAddress)
		if err != nil {
			logger.Log.Fatalf("Failed to create RPC server: %v", err)
		}
		rpc.Register(adminrpc.NewStatsRPC(stats))
		go rpcServer.Start()
	}

	// Start Game Server
	gameServer := server.NewGameServer(cfg, topics, stats, mon)
	logger.Log.Infof("Starting impostor server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func openDatabase(cfg *config.Config) (persistence.Database, error) {
	pg := cfg.Database.Postgres
	if cfg.Database.Driver == "postgres" {
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
}
