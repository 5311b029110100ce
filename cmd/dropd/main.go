package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/example/dropd/internal/notify"
	"github.com/example/dropd/internal/scheduler"
	"github.com/example/dropd/internal/service"
	"github.com/example/dropd/internal/settings"
	"github.com/example/dropd/internal/storage"
	"github.com/example/dropd/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dropd failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs stay off unless routed to a file.
	log := zerolog.Nop()
	if path := os.Getenv("DROPD_LOG_FILE"); path != "" {
		f, openErr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if openErr != nil {
			return fmt.Errorf("open log file: %w", openErr)
		}
		defer f.Close()
		log = zerolog.New(f).With().Timestamp().Logger()
	}

	cfgStore, err := settings.NewStore(filepath.Join(dataDir, "settings.json"))
	if err != nil {
		return err
	}
	cfg, err := cfgStore.Load()
	if err != nil {
		return err
	}

	repo, err := storage.OpenSQLite(filepath.Join(dataDir, "dropd.db"))
	if err != nil {
		return err
	}
	defer repo.Close()

	engine := scheduler.NewEngine(32)
	engine.Start()
	defer engine.Stop()

	notifier := notify.NewScheduler(engine, log)
	svc := service.New(repo, notifier, cfgStore, cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var desktop update.DesktopNotifier = update.NoopDesktopNotifier{}
	if update.DesktopNotificationsEnabledFromEnv() {
		desktop = update.ExecDesktopNotifier{}
	}

	m := update.NewModel(svc, engine, svc.Subscribe(ctx), desktop)
	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

func resolveDataDir() (string, error) {
	if dir := os.Getenv("DROPD_DATA_DIR"); dir != "" {
		return dir, os.MkdirAll(dir, 0o755)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir := filepath.Join(home, ".dropd")
	return dir, os.MkdirAll(dir, 0o755)
}
