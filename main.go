package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wfunc/rpsserver/config"
	"github.com/wfunc/rpsserver/logger"
	"github.com/wfunc/rpsserver/monitor"
	"github.com/wfunc/rpsserver/persistence"
	"github.com/wfunc/rpsserver/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Init("info")
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	// Initialize Database
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Log.Infof("Database connection successful (driver %q).", cfg.Database.Driver)

	if err := seedUsers(db, cfg.Users); err != nil {
		logger.Log.Fatalf("Failed to seed users: %v", err)
	}

	mon := monitor.NewMonitor(cfg.Monitor.Namespace)

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg.Server, db, mon)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gameServer.Run(ctx, cfg.Monitor.Address); err != nil {
		logger.Log.Errorf("Server stopped: %v", err)
		return
	}
	logger.Log.Info("Server stopped")
}
