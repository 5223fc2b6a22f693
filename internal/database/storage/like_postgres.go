package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type LikeStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewLikeStorage(db *sqlx.DB, logger *slog.Logger) *LikeStorage {
	return &LikeStorage{db: db, logger: logger}
}

// CountLikesByArtwork возвращает текущее число лайков работы
func (s *LikeStorage) CountLikesByArtwork(ctx context.Context, artworkID uuid.UUID) (int, error) {
	start := time.Now()

	var count int
	q := `SELECT COUNT(*) FROM likes WHERE artwork_id = $1`

	if err := s.db.GetContext(ctx, &count, q, artworkID); err != nil {
		s.logger.Error("failed to count likes", "artwork_id", artworkID, "error", err)
		return 0, fmt.Errorf("ошибка при подсчете лайков: %w", err)
	}

	s.logger.Info("likes counted",
		"artwork_id", artworkID,
		"count", count,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return count, nil
}
