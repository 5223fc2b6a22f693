package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCharacterStorage реализует интерфейс ports.CharacterStorage с использованием GORM
type GormCharacterStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormCharacterStorage создает новый экземпляр GormCharacterStorage
func NewGormCharacterStorage(db *gorm.DB, logger *slog.Logger) *GormCharacterStorage {
	return &GormCharacterStorage{db: db, logger: logger}
}

// LinkCharacters массово связывает персонажей с работой одной транзакцией,
// семантика та же, что и в sqlx-бэкенде: либо все, либо никто
func (s *GormCharacterStorage) LinkCharacters(ctx context.Context, artworkID uuid.UUID, characterIDs []uuid.UUID) error {
	if len(characterIDs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var artwork domain.Artwork
		if err := tx.First(&artwork, "id = ?", artworkID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: работа %s не существует", domain.ErrLink, artworkID)
			}
			return fmt.Errorf("%w: %v", domain.ErrLink, err)
		}

		query := tx.Model(&domain.Character{}).Where("id IN ?", characterIDs)
		if artwork.PartyID != nil {
			query = query.Where("party_id = ?", *artwork.PartyID)
		}
		var found int64
		if err := query.Count(&found).Error; err != nil {
			return fmt.Errorf("%w: %v", domain.ErrLink, err)
		}
		if found != int64(len(characterIDs)) {
			return fmt.Errorf("%w: %d из %d персонажей не принадлежат ростеру события", domain.ErrLink, int64(len(characterIDs))-found, len(characterIDs))
		}

		links := make([]domain.ArtworkCharacter, 0, len(characterIDs))
		for _, characterID := range characterIDs {
			links = append(links, domain.ArtworkCharacter{ArtworkID: artworkID, CharacterID: characterID})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			s.logger.Error("failed to bulk insert character links (gorm)", "artwork_id", artworkID, "error", err)
			return fmt.Errorf("%w: %v", domain.ErrLink, err)
		}

		s.logger.Info("characters linked (gorm)", "artwork_id", artworkID, "count", len(characterIDs))
		return nil
	})
}

// GetCharactersByArtwork получает персонажей работы с помощью GORM
func (s *GormCharacterStorage) GetCharactersByArtwork(ctx context.Context, artworkID uuid.UUID) ([]domain.Character, error) {
	var characters []domain.Character
	err := s.db.WithContext(ctx).
		Joins("JOIN artwork_characters ON artwork_characters.character_id = characters.id").
		Where("artwork_characters.artwork_id = ?", artworkID).
		Order("characters.name").
		Find(&characters).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении персонажей работы с помощью GORM: %w", err)
	}
	return characters, nil
}
