package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLikeStorage реализует интерфейс ports.LikeStorage с использованием GORM
type GormLikeStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormLikeStorage(db *gorm.DB, logger *slog.Logger) *GormLikeStorage {
	return &GormLikeStorage{db: db, logger: logger}
}

// CountLikesByArtwork возвращает текущее число лайков работы
func (s *GormLikeStorage) CountLikesByArtwork(ctx context.Context, artworkID uuid.UUID) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Like{}).Where("artwork_id = ?", artworkID).Count(&count).Error
	if err != nil {
		s.logger.Error("failed to count likes (gorm)", "artwork_id", artworkID, "error", err)
		return 0, fmt.Errorf("ошибка при подсчете лайков с помощью GORM: %w", err)
	}
	return int(count), nil
}

// GormUserStorage реализует интерфейс ports.UserStorage с использованием GORM
type GormUserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormUserStorage(db *gorm.DB, logger *slog.Logger) *GormUserStorage {
	return &GormUserStorage{db: db, logger: logger}
}

// GetUserByID получает пользователя по ID
func (s *GormUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	result := s.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении пользователя с помощью GORM: %w", result.Error)
	}
	return &user, nil
}
