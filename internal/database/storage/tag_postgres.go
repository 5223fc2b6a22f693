package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Код ошибки PostgreSQL для нарушения внешнего ключа
const pgForeignKeyViolation = "23503"

type TagStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewTagStorage(db *sqlx.DB, logger *slog.Logger) *TagStorage {
	return &TagStorage{db: db, logger: logger}
}

// GetOrCreateTag находит тег по имени или лениво создает его.
// Гонка двух конкурентных создателей одного имени разрешается на уникальном
// индексе tags.name: INSERT ... ON CONFLICT DO NOTHING, затем SELECT —
// проигравший вставку получает id победителя, дубликат невозможен
func (s *TagStorage) GetOrCreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	start := time.Now()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: пустое имя тега", domain.ErrTagResolution)
	}

	insert := `INSERT INTO tags (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, insert, uuid.New(), name); err != nil {
		s.logger.Error("failed to insert tag", "name", name, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrTagResolution, err)
	}

	var tag domain.Tag
	if err := s.db.GetContext(ctx, &tag, `SELECT id, name FROM tags WHERE name = $1`, name); err != nil {
		s.logger.Error("failed to select tag after upsert", "name", name, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrTagResolution, err)
	}

	s.logger.Info("tag resolved",
		"name", name,
		"tag_id", tag.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &tag, nil
}

// LinkTag связывает тег с работой. Повторная связка той же пары — no-op,
// отсутствующая работа маппится в domain.ErrLink по нарушению внешнего ключа
func (s *TagStorage) LinkTag(ctx context.Context, artworkID, tagID uuid.UUID) error {
	start := time.Now()

	query := `
	INSERT INTO artwork_tags (artwork_id, tag_id)
	VALUES ($1, $2)
	ON CONFLICT (artwork_id, tag_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, artworkID, tagID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgForeignKeyViolation {
			s.logger.Warn("tag link rejected, artwork does not exist", "artwork_id", artworkID, "tag_id", tagID)
			return fmt.Errorf("%w: работа %s не существует", domain.ErrLink, artworkID)
		}
		s.logger.Error("failed to link tag", "artwork_id", artworkID, "tag_id", tagID, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrLink, err)
	}

	s.logger.Info("tag linked",
		"artwork_id", artworkID,
		"tag_id", tagID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetTagsByArtwork получает теги работы
func (s *TagStorage) GetTagsByArtwork(ctx context.Context, artworkID uuid.UUID) ([]domain.Tag, error) {
	start := time.Now()

	q := `
	SELECT t.id, t.name FROM tags t
	JOIN artwork_tags at ON at.tag_id = t.id
	WHERE at.artwork_id = $1
	ORDER BY t.name
	`

	var tags []domain.Tag
	if err := s.db.SelectContext(ctx, &tags, q, artworkID); err != nil {
		s.logger.Error("failed to get tags by artwork", "artwork_id", artworkID, "error", err)
		return nil, fmt.Errorf("ошибка при получении тегов работы: %w", err)
	}

	s.logger.Info("tags retrieved by artwork",
		"artwork_id", artworkID,
		"count", len(tags),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return tags, nil
}
