package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type CharacterStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewCharacterStorage(db *sqlx.DB, logger *slog.Logger) *CharacterStorage {
	return &CharacterStorage{db: db, logger: logger}
}

// LinkCharacters массово связывает персонажей с работой одной транзакцией.
// Сначала проверяется, что каждый id существует и принадлежит ростеру события
// работы, затем все пары вставляются разом. Любая ошибка откатывает транзакцию —
// с точки зрения вызывающего либо линкуются все, либо никто
func (s *CharacterStorage) LinkCharacters(ctx context.Context, artworkID uuid.UUID, characterIDs []uuid.UUID) error {
	start := time.Now()

	// Пустой набор — валидный no-op
	if len(characterIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error("failed to begin character link transaction", "artwork_id", artworkID, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrLink, err)
	}
	defer tx.Rollback()

	var artwork domain.Artwork
	if err := tx.GetContext(ctx, &artwork,
		`SELECT id, uploader_id, party_id, title, image_url, reference_url, notes, tools_used, created_at
		 FROM artworks WHERE id = $1`, artworkID); err != nil {
		s.logger.Warn("character link rejected, artwork does not exist", "artwork_id", artworkID)
		return fmt.Errorf("%w: работа %s не существует", domain.ErrLink, artworkID)
	}

	// Членство в ростере: все персонажи должны принадлежать событию работы.
	// Для работы вне события достаточно существования персонажей
	countQuery := `SELECT COUNT(*) FROM characters WHERE id = ANY($1)`
	args := []interface{}{pq.Array(characterIDs)}
	if artwork.PartyID != nil {
		countQuery += ` AND party_id = $2`
		args = append(args, *artwork.PartyID)
	}

	var found int
	if err := tx.GetContext(ctx, &found, countQuery, args...); err != nil {
		s.logger.Error("failed to validate character roster", "artwork_id", artworkID, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrLink, err)
	}
	if found != len(characterIDs) {
		s.logger.Warn("character link rejected, ids outside party roster",
			"artwork_id", artworkID,
			"requested", len(characterIDs),
			"found", found,
		)
		return fmt.Errorf("%w: %d из %d персонажей не принадлежат ростеру события", domain.ErrLink, len(characterIDs)-found, len(characterIDs))
	}

	insert := `
	INSERT INTO artwork_characters (artwork_id, character_id)
	SELECT $1, unnest($2::uuid[])
	ON CONFLICT (artwork_id, character_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, insert, artworkID, pq.Array(characterIDs)); err != nil {
		s.logger.Error("failed to bulk insert character links", "artwork_id", artworkID, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrLink, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit character link transaction", "artwork_id", artworkID, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrLink, err)
	}

	s.logger.Info("characters linked",
		"artwork_id", artworkID,
		"count", len(characterIDs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetCharactersByArtwork получает персонажей, изображенных на работе
func (s *CharacterStorage) GetCharactersByArtwork(ctx context.Context, artworkID uuid.UUID) ([]domain.Character, error) {
	start := time.Now()

	q := `
	SELECT c.id, c.party_id, c.user_id, c.name, c.avatar_url FROM characters c
	JOIN artwork_characters ac ON ac.character_id = c.id
	WHERE ac.artwork_id = $1
	ORDER BY c.name
	`

	var characters []domain.Character
	if err := s.db.SelectContext(ctx, &characters, q, artworkID); err != nil {
		s.logger.Error("failed to get characters by artwork", "artwork_id", artworkID, "error", err)
		return nil, fmt.Errorf("ошибка при получении персонажей работы: %w", err)
	}

	s.logger.Info("characters retrieved by artwork",
		"artwork_id", artworkID,
		"count", len(characters),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return characters, nil
}
