package main

import (
	"math/rand"
	"time"

	"github.com/wdmatthews/uno/config"
	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/logger"
	"github.com/wdmatthews/uno/persistence"
	"github.com/wdmatthews/uno/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize room store
	db, err := openDatabase(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to open room store: %v", err)
	}
	logger.Log.Infof("Room store ready (driver: %s)", cfg.Database.Driver)

	// Initialize Room Engine
	engine := game.NewEngine(rand.New(rand.NewSource(time.Now().UnixNano())))

	// Initialize Game Server
	gameServer := server.NewGameServer(
		cfg.Server.HTTPAddress,
		cfg.Server.RPCAddress,
		cfg.Server.MetricsAddress,
		db,
		engine,
		cfg.Game.IdleTimeout,
	)

	// Start Server
	logger.Log.Infof("Starting uno server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func openDatabase(cfg *config.Config) (persistence.Database, error) {
	pg := cfg.Database.Postgres
	switch cfg.Database.Driver {
	case "gorm":
		return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "pq":
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return persistence.NewMemory(), nil
	}
}
