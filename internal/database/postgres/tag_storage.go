package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTagStorage реализует интерфейс ports.TagStorage с использованием GORM
type GormTagStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormTagStorage создает новый экземпляр GormTagStorage
func NewGormTagStorage(db *gorm.DB, logger *slog.Logger) *GormTagStorage {
	return &GormTagStorage{db: db, logger: logger}
}

// GetOrCreateTag находит тег по имени или создает его.
// Как и в sqlx-бэкенде, гонка конкурентных создателей разрешается на
// уникальном индексе: ON CONFLICT DO NOTHING, затем чтение по имени
func (s *GormTagStorage) GetOrCreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: пустое имя тега", domain.ErrTagResolution)
	}

	candidate := domain.Tag{ID: uuid.New(), Name: name}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&candidate)
	if result.Error != nil {
		s.logger.Error("failed to upsert tag (gorm)", "name", name, "error", result.Error)
		return nil, fmt.Errorf("%w: %v", domain.ErrTagResolution, result.Error)
	}

	var tag domain.Tag
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		s.logger.Error("failed to select tag after upsert (gorm)", "name", name, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrTagResolution, err)
	}

	s.logger.Info("tag resolved (gorm)", "name", name, "tag_id", tag.ID)
	return &tag, nil
}

// LinkTag связывает тег с работой, повторная связка — no-op
func (s *GormTagStorage) LinkTag(ctx context.Context, artworkID, tagID uuid.UUID) error {
	// GORM не дает нам кода нарушения FK переносимо, поэтому существование
	// работы проверяется явно перед вставкой
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Artwork{}).Where("id = ?", artworkID).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLink, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: работа %s не существует", domain.ErrLink, artworkID)
	}

	link := domain.ArtworkTag{ArtworkID: artworkID, TagID: tagID}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link)
	if result.Error != nil {
		s.logger.Error("failed to link tag (gorm)", "artwork_id", artworkID, "tag_id", tagID, "error", result.Error)
		return fmt.Errorf("%w: %v", domain.ErrLink, result.Error)
	}

	s.logger.Info("tag linked (gorm)", "artwork_id", artworkID, "tag_id", tagID)
	return nil
}

// GetTagsByArtwork получает теги работы с помощью GORM
func (s *GormTagStorage) GetTagsByArtwork(ctx context.Context, artworkID uuid.UUID) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := s.db.WithContext(ctx).
		Joins("JOIN artwork_tags ON artwork_tags.tag_id = tags.id").
		Where("artwork_tags.artwork_id = ?", artworkID).
		Order("tags.name").
		Find(&tags).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при получении тегов работы с помощью GORM: %w", err)
	}
	return tags, nil
}
