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

type ArtworkStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewArtworkStorage(db *sqlx.DB, logger *slog.Logger) *ArtworkStorage {
	return &ArtworkStorage{db: db, logger: logger}
}

// CreateArtwork сохраняет метаданные работы в базе данных.
// Запись создается один раз в конце успешной загрузки и дальше не меняется
func (s *ArtworkStorage) CreateArtwork(ctx context.Context, artwork *domain.Artwork) error {
	start := time.Now()

	if artwork.ID == uuid.Nil {
		artwork.ID = uuid.New()
	}
	if artwork.CreatedAt.IsZero() {
		artwork.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO artworks (id, uploader_id, party_id, title, image_url, reference_url, notes, tools_used, created_at)
	VALUES (:id, :uploader_id, :party_id, :title, :image_url, :reference_url, :notes, :tools_used, :created_at)
	`

	_, err := s.db.NamedExecContext(ctx, query, artwork)
	if err != nil {
		s.logger.Error("failed to create artwork", "uploader_id", artwork.UploaderID, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrMetadataCreation, err)
	}

	s.logger.Info("artwork created successfully",
		"id", artwork.ID,
		"uploader_id", artwork.UploaderID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetArtworkByID получает работу по ID
func (s *ArtworkStorage) GetArtworkByID(ctx context.Context, id uuid.UUID) (*domain.Artwork, error) {
	start := time.Now()

	var artwork domain.Artwork
	query := `SELECT id, uploader_id, party_id, title, image_url, reference_url, notes, tools_used, created_at
	FROM artworks WHERE id = $1 LIMIT 1`

	err := s.db.GetContext(ctx, &artwork, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("artwork not found by id", "id", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to get artwork by id", "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении работы по ID: %w", err)
	}

	s.logger.Info("artwork retrieved by id",
		"id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &artwork, nil
}

// ListAllArtworks получает все работы с пагинацией (для галереи)
func (s *ArtworkStorage) ListAllArtworks(ctx context.Context, page, perPage int) ([]domain.Artwork, error) {
	start := time.Now()

	offset := (page - 1) * perPage
	q := `
	SELECT id, uploader_id, party_id, title, image_url, reference_url, notes, tools_used, created_at
	FROM artworks
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
	`

	var artworks []domain.Artwork
	if err := s.db.SelectContext(ctx, &artworks, q, perPage, offset); err != nil {
		s.logger.Error("failed to list all artworks", "page", page, "per_page", perPage, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка работ: %w", err)
	}

	s.logger.Info("listed all artworks successfully",
		"page", page,
		"per_page", perPage,
		"count", len(artworks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return artworks, nil
}

// ListArtworksByParty получает работы, привязанные к событию, с пагинацией
func (s *ArtworkStorage) ListArtworksByParty(ctx context.Context, partyID uuid.UUID, page, perPage int) ([]domain.Artwork, error) {
	start := time.Now()

	offset := (page - 1) * perPage
	q := `
	SELECT id, uploader_id, party_id, title, image_url, reference_url, notes, tools_used, created_at
	FROM artworks
	WHERE party_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`

	var artworks []domain.Artwork
	if err := s.db.SelectContext(ctx, &artworks, q, partyID, perPage, offset); err != nil {
		s.logger.Error("failed to list artworks by party", "party_id", partyID, "error", err)
		return nil, fmt.Errorf("ошибка при получении работ события: %w", err)
	}

	s.logger.Info("listed artworks by party successfully",
		"party_id", partyID,
		"count", len(artworks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return artworks, nil
}
