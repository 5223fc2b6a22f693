package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormArtworkStorage реализует интерфейс ports.ArtworkStorage с использованием GORM
type GormArtworkStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormArtworkStorage создает новый экземпляр GormArtworkStorage
func NewGormArtworkStorage(db *gorm.DB, logger *slog.Logger) *GormArtworkStorage {
	return &GormArtworkStorage{db: db, logger: logger}
}

// CreateArtwork сохраняет метаданные работы с помощью GORM
func (s *GormArtworkStorage) CreateArtwork(ctx context.Context, artwork *domain.Artwork) error {
	if artwork.ID == uuid.Nil {
		artwork.ID = uuid.New()
	}
	if artwork.CreatedAt.IsZero() {
		artwork.CreatedAt = time.Now()
	}

	result := s.db.WithContext(ctx).Create(artwork)
	if result.Error != nil {
		s.logger.Error("failed to create artwork (gorm)", "uploader_id", artwork.UploaderID, "error", result.Error)
		return fmt.Errorf("%w: %v", domain.ErrMetadataCreation, result.Error)
	}

	s.logger.Info("artwork created successfully (gorm)", "id", artwork.ID)
	return nil
}

// GetArtworkByID получает работу по ID с помощью GORM
func (s *GormArtworkStorage) GetArtworkByID(ctx context.Context, id uuid.UUID) (*domain.Artwork, error) {
	var artwork domain.Artwork
	result := s.db.WithContext(ctx).First(&artwork, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении работы по ID с помощью GORM: %w", result.Error)
	}
	return &artwork, nil
}

// ListAllArtworks получает все работы с пагинацией с помощью GORM
func (s *GormArtworkStorage) ListAllArtworks(ctx context.Context, page, perPage int) ([]domain.Artwork, error) {
	var artworks []domain.Artwork
	offset := (page - 1) * perPage

	result := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset).
		Find(&artworks)

	if result.Error != nil {
		return nil, fmt.Errorf("ошибка при получении списка работ с помощью GORM: %w", result.Error)
	}
	return artworks, nil
}

// ListArtworksByParty получает работы события с помощью GORM
func (s *GormArtworkStorage) ListArtworksByParty(ctx context.Context, partyID uuid.UUID, page, perPage int) ([]domain.Artwork, error) {
	var artworks []domain.Artwork
	offset := (page - 1) * perPage

	result := s.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset).
		Find(&artworks)

	if result.Error != nil {
		return nil, fmt.Errorf("ошибка при получении работ события с помощью GORM: %w", result.Error)
	}
	return artworks, nil
}
