// Command play runs bomb-arena in the terminal with keyboard input and
// synthesized sound.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"bomb-arena/internal/audio"
	"bomb-arena/internal/config"
	"bomb-arena/internal/game"
	"bomb-arena/internal/input"
	"bomb-arena/internal/render"
)

// drawInterval is the terminal refresh rate, independent of the simulation FPS
const drawInterval = time.Second / 30

func main() {
	logPath := flag.String("log", "", "write logs to this file (the terminal is busy drawing)")
	flag.Parse()

	godotenv.Load(".env")

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("❌ Open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	if err := run(config.Load()); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func run(appConfig config.AppConfig) error {
	var levels []game.LevelData
	if path := appConfig.Game.LevelsPath; path != "" {
		l, err := game.LoadLevels(path)
		if err != nil {
			return err
		}
		levels = l
	}

	keys := input.NewState(input.DefaultHoldWindow)
	synth := audio.NewSynth(appConfig.Audio)
	if err := synth.Start(); err != nil {
		log.Printf("⚠️ Audio unavailable, playing silent: %v", err)
	}
	defer synth.Stop()

	session, err := game.NewSession(game.SessionConfig{
		Rules:      appConfig.Game,
		AI:         appConfig.AI,
		Levels:     levels,
		MaxEffects: appConfig.Limits.MaxEffects,
	}, game.SessionDeps{
		Input: keys,
		Audio: synth,
	})
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("⚠️ Simulation loop ended: %v", err)
		}
	}()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	term := render.NewTerminal(screen)
	keymap := input.DefaultKeyMap()
	ticker := time.NewTicker(drawInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if quit := handleIntent(keymap.HandleKey(keys, ev), session, synth); quit {
					return nil
				}
			}
		case <-ticker.C:
			term.Draw(session.Snapshot())
		}
	}
}

// handleIntent applies non-gameplay keys and reports whether to quit
func handleIntent(intent input.Intent, session *game.Session, synth *audio.Synth) bool {
	switch intent {
	case input.IntentQuit:
		return true
	case input.IntentPause:
		if session.Snapshot().Status == game.StatusPaused {
			session.Resume()
		} else {
			session.Pause()
		}
	case input.IntentRestart:
		session.Restart()
	case input.IntentMute:
		synth.ToggleMute()
	}
	return false
}
