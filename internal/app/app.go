package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/ArtJam/internal/config"
	"github.com/GoArmGo/ArtJam/internal/core/ports"
	"github.com/GoArmGo/ArtJam/internal/handler"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Config          *config.Config
	logger          *slog.Logger
	db              *sqlx.DB
	artworkHandler  *handler.ArtworkHandler
	cleanupConsumer ports.CleanupConsumer
	objectStore     ports.ObjectStore
}

func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	db *sqlx.DB,
	artworkHandler *handler.ArtworkHandler,
	cleanupConsumer ports.CleanupConsumer,
	objectStore ports.ObjectStore,
) *App {
	return &App{
		Config:          cfg,
		logger:          logger,
		db:              db,
		artworkHandler:  artworkHandler,
		cleanupConsumer: cleanupConsumer,
		objectStore:     objectStore,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

func (a *App) Run(ctx context.Context, mode *string) error {
	// контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", *mode)

	var err error

	switch *mode {
	case "server":
		err = runServer(ctx, a.Config, a.logger, a.artworkHandler)

	case "worker":
		err = runWorker(ctx, a.logger, a.cleanupConsumer, a.objectStore)

	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", *mode)
	}

	if err != nil {
		return err
	}

	a.logger.Info("shutting down")

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("error during shutdown", "error", closeErr)
	}

	a.logger.Info("stopped cleanly")
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия БД: %w", err)
		}
	}

	// если consumer имеет метод Close — вызываем его
	if closer, ok := a.cleanupConsumer.(interface{ Close() }); ok {
		closer.Close()
	}

	return nil
}
