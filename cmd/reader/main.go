package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/browser"

	"readr/internal/client"
	"readr/internal/config"
	"readr/internal/logger"
	"readr/internal/tui"
)

const loginTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "readr:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadClient()
	if cfg.Email == "" || cfg.Password == "" {
		return errors.New("READR_EMAIL and READR_PASSWORD must be set")
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger.InitWithWriter(logFile, logger.ParseLevel(os.Getenv("READR_LOG_LEVEL")))

	// The terminal belongs to the UI.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	api := client.New(cfg.APIURL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	auth, err := api.Login(ctx, cfg.Email, cfg.Password)
	cancel()
	if err != nil {
		logger.Error("login failed", "module", "reader", "action", "login", "resource", "user", "result", "failed", "error", err)
		return fmt.Errorf("login to %s: %w", cfg.APIURL, err)
	}
	if auth.User == nil {
		return errors.New("login response has no user")
	}
	logger.Info("logged in", "module", "reader", "action", "login", "resource", "user", "result", "ok", "user_id", auth.User.ID)

	feeds := client.NewFeeds(api, auth.User.ID)
	program := tea.NewProgram(tui.New(api, feeds, *auth.User), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
