package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/JohannVasquez/chatdeck/internal/client"
	"github.com/JohannVasquez/chatdeck/internal/config"
	"github.com/JohannVasquez/chatdeck/internal/gateway"
	"github.com/JohannVasquez/chatdeck/internal/localstore"
	"github.com/JohannVasquez/chatdeck/internal/workspace"
)

func main() {
	cfg := config.LoadClientConfig()
	cfg.DeviceTag = cfg.DeviceTag + "-" + uuid.NewString()[:8]

	store, err := localstore.NewStore(cfg.SessionDBPath)
	if err != nil {
		log.Fatalf("open local store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(context.Background()); err != nil {
		log.Fatalf("migrate local store: %v", err)
	}

	// The terminal belongs to the TUI; diagnostics go to a file when asked
	// for and are discarded otherwise.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if path := os.Getenv("CHATDECK_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	gw := gateway.NewClient(cfg)
	ws := workspace.New(cfg, gw, store, logger)

	model := client.NewApp(cfg, ws)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("client exited: %v", err)
	}
}
