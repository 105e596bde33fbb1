package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/jask/contratos/internal/api"
	"github.com/jask/contratos/internal/config"
	"github.com/jask/contratos/internal/service"
	"github.com/jask/contratos/internal/session"
	"github.com/jask/contratos/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", "err", err)
	}

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		log.Fatal("log file", "err", err)
	}
	defer closeLog()

	store, err := session.NewStore(cfg.SessionPath())
	if err != nil {
		log.Fatal("session", "err", err)
	}

	client := api.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout}, store, logger.WithPrefix("api"))
	boot := service.NewBootstrap(client, store, logger.WithPrefix("session"))

	logger.Info("starting", "api", cfg.API.BaseURL, "persisted_session", store.Active())
	p := tea.NewProgram(tui.New(ctx, cfg, client, boot, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// openLogger writes to the configured log file; the terminal belongs to the TUI.
func openLogger(cfg config.LogConfig) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "contratos",
	})
	return logger, func() { _ = f.Close() }, nil
}
