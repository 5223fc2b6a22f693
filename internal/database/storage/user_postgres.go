package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// GetUserByID получает пользователя по ID (для имени автора в представлении работы)
func (s *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1 LIMIT 1`, id)

	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("user not found by id", "id", id)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to select user", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	s.logger.Info("user retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}
