package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bomb-arena/internal/api"
	"bomb-arena/internal/audio"
	"bomb-arena/internal/config"
	"bomb-arena/internal/game"
	"bomb-arena/internal/input"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  BOMB ARENA - HEADLESS SERVER")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	gameCfg := appConfig.Game

	levels, err := loadLevels(gameCfg.LevelsPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	eventLog := game.NewEventLog(appConfig.EventLog)
	if err := eventLog.Start(); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if appConfig.EventLog.Path != "" {
		log.Printf("📝 Event log: %s", appConfig.EventLog.Path)
	}

	if err := api.StartDebugServer(appConfig.Observability); err != nil {
		log.Printf("⚠️ Debug server disabled: %v", err)
	}

	remote := input.NewState(input.DefaultHoldWindow)
	metrics := api.NewFrameMetrics()

	session, err := game.NewSession(game.SessionConfig{
		Rules:      gameCfg,
		AI:         appConfig.AI,
		Levels:     levels,
		MaxEffects: appConfig.Limits.MaxEffects,
	}, game.SessionDeps{
		Input:    remote,
		Audio:    audio.Nop{},
		Events:   eventLog,
		Observer: metrics.Observe,
	})
	if err != nil {
		log.Fatalf("❌ Failed to start session: %v", err)
	}
	log.Printf("🎮 Config: %d FPS, fuse %.0fms, seed %d", gameCfg.FPS, gameCfg.BombFuseMs, gameCfg.Seed)

	server := api.NewServer(appConfig.Server, appConfig.Limits, api.ServerDeps{
		Session: session,
		Input:   remote,
		Events:  eventLog,
	})
	if appConfig.Server.AdminToken == "" {
		log.Println("⚠️ ADMIN_TOKEN not set - session control is open")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("⚠️ Simulation loop ended: %v", err)
		}
	}()
	log.Println("✅ Simulation started")

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	if err := server.Run(ctx); err != nil {
		log.Printf("❌ %v", err)
	}

	log.Println("🛑 Shutting down...")
	server.Stop()
	eventLog.Stop()
	log.Println("👋 Goodbye!")
}

// loadLevels reads a custom level pack, or returns nil for the built-in levels
func loadLevels(path string) ([]game.LevelData, error) {
	if path == "" {
		return nil, nil
	}
	levels, err := game.LoadLevels(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️ Level pack %s not found, using built-in levels", path)
			return nil, nil
		}
		return nil, err
	}
	log.Printf("🗺️ Loaded %d levels from %s", len(levels), path)
	return levels, nil
}
