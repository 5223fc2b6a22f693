package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/ArtJam/internal/config"
	"github.com/GoArmGo/ArtJam/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// runServer запускает HTTP сервер пайплайна публикации и читающей стороны
func runServer(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	artworkHandler *handler.ArtworkHandler,
) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(handler.RequestLogger(logger))

	// Читающая сторона — без аутентификации
	r.Get("/artwork/allArt", artworkHandler.GetAllArt)
	r.Get("/artwork/{id}", artworkHandler.GetArtworkDetails)
	r.Get("/artwork", artworkHandler.GetArtByParty)
	r.Get("/tags/artworkTags/{artworkID}", artworkHandler.GetArtworkTags)
	r.Get("/tags/{name}", artworkHandler.ResolveTag)
	r.Get("/artworkCharacters/{artworkID}", artworkHandler.GetArtworkCharacters)
	r.Get("/likes", artworkHandler.GetLikes)

	// Пишущая сторона и выдача слотов — только с идентичностью вызывающего
	r.Group(func(r chi.Router) {
		r.Use(handler.Authenticate(logger))
		r.Post("/artwork", artworkHandler.SubmitArtwork)
		r.Post("/tags/artworkTags", artworkHandler.LinkTag)
		r.Post("/artworkCharacters", artworkHandler.LinkCharacters)
		r.Get("/upload/generate-upload-url", artworkHandler.GenerateUploadURL)
	})

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ошибка при запуске сервера: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping server")

	ctxServer, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped successfully")
	return nil
}
