package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/bubbletea"

	"redlight_tui/internal"
	"redlight_tui/internal/config"
	"redlight_tui/internal/history"
	"redlight_tui/internal/httpapi"
	"redlight_tui/internal/sound"
)

func main() {
	configPath := flag.String("config", "redlight.yaml", "path to the YAML config file")
	mute := flag.Bool("mute", false, "disable sound cues")
	flag.Parse()

	if err := run(*configPath, *mute); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, mute bool) error {
	if os.Getenv("DEBUG") != "" {
		f, err := tea.LogToFile("redlight.log", "redlight")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	manager, err := config.NewManager(configPath)
	if err != nil {
		return err
	}
	cfg := manager.GetConfig()
	log.Printf("config: loaded %s", manager.Path())

	repo, err := history.NewRepository(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	var player sound.Player = sound.Nop{}
	if cfg.Sound.Enabled && !mute {
		spk, err := sound.NewSpeaker(cfg.Sound.SampleRate)
		if err != nil {
			log.Printf("sound disabled: %v", err)
		} else {
			defer spk.Close()
			player = spk
		}
	}

	if cfg.Stats.Addr != "" {
		server := httpapi.NewServer(cfg.Stats.Addr, repo)
		go func() {
			log.Printf("stats: listening on %s", cfg.Stats.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("stats: %v", err)
			}
		}()
		defer server.Close()
	}

	m, err := internal.NewModel(cfg, repo, player)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.Send(internal.MsgTick{})
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
