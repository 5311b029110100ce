package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/example/dropd/internal/notify"
	"github.com/example/dropd/internal/scheduler"
	"github.com/example/dropd/internal/server"
	"github.com/example/dropd/internal/service"
	"github.com/example/dropd/internal/settings"
	"github.com/example/dropd/internal/storage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("dropd-api failed")
	}
}

func run(log zerolog.Logger) error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return err
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

	engine := scheduler.NewEngine(64)
	engine.Start()

	notifier := notify.NewScheduler(engine, log)
	svc := service.New(repo, notifier, cfgStore, cfg, log)
	srv := server.New(svc, log)

	addr := os.Getenv("DROPD_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	go func() {
		if err := srv.Listen(addr); err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return srv.Shutdown()
			},
			"scheduler": func(ctx context.Context) error {
				engine.Stop()
				return nil
			},
		},
	)

	exitCode := <-wait
	log.Info().Int("exit_code", exitCode).Msg("dropd-api exited")
	if exitCode != 0 {
		return fmt.Errorf("shutdown finished with code %d", exitCode)
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
