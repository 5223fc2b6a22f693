package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GoArmGo/ArtJam/internal/core/ports"
	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
)

// artworkQueryUseCase implements ArtworkQueryUseCase
type artworkQueryUseCase struct {
	artworkStorage   ports.ArtworkStorage
	tagStorage       ports.TagStorage
	characterStorage ports.CharacterStorage
	likeStorage      ports.LikeStorage
	userStorage      ports.UserStorage
	logger           *slog.Logger
}

// NewArtworkQueryUseCase создает новый экземпляр ArtworkQueryUseCase
func NewArtworkQueryUseCase(
	artworkStorage ports.ArtworkStorage,
	tagStorage ports.TagStorage,
	characterStorage ports.CharacterStorage,
	likeStorage ports.LikeStorage,
	userStorage ports.UserStorage,
	logger *slog.Logger,
) ArtworkQueryUseCase {
	return &artworkQueryUseCase{
		artworkStorage:   artworkStorage,
		tagStorage:       tagStorage,
		characterStorage: characterStorage,
		likeStorage:      likeStorage,
		userStorage:      userStorage,
		logger:           logger,
	}
}

// GetArtworkView собирает работу с обогащениями параллельными чтениями.
// Базовая запись обязательна; каждый фасет обогащения терпит отказ независимо —
// то же разделение "ядро против обогащений", что и в пайплайне публикации
func (uc *artworkQueryUseCase) GetArtworkView(ctx context.Context, id uuid.UUID) (*domain.ArtworkView, error) {
	start := time.Now()

	artwork, err := uc.artworkStorage.GetArtworkByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &domain.ArtworkView{
		Artwork:    *artwork,
		TagNames:   []string{},
		Characters: []domain.Character{},
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		tags, err := uc.tagStorage.GetTagsByArtwork(ctx, id)
		if err != nil {
			uc.logger.Warn("tag enrichment failed, returning empty set", "artwork_id", id, "error", err)
			return
		}
		names := make([]string, 0, len(tags))
		for _, tag := range tags {
			names = append(names, tag.Name)
		}
		view.TagNames = names
	}()

	go func() {
		defer wg.Done()
		characters, err := uc.characterStorage.GetCharactersByArtwork(ctx, id)
		if err != nil {
			uc.logger.Warn("character enrichment failed, returning empty set", "artwork_id", id, "error", err)
			return
		}
		if characters != nil {
			view.Characters = characters
		}
	}()

	go func() {
		defer wg.Done()
		count, err := uc.likeStorage.CountLikesByArtwork(ctx, id)
		if err != nil {
			uc.logger.Warn("like count enrichment failed, returning zero", "artwork_id", id, "error", err)
			return
		}
		view.LikeCount = count
	}()

	go func() {
		defer wg.Done()
		user, err := uc.userStorage.GetUserByID(ctx, artwork.UploaderID)
		if err != nil {
			uc.logger.Warn("uploader enrichment failed, returning blank name", "artwork_id", id, "error", err)
			return
		}
		view.UploaderName = user.Username
	}()

	wg.Wait()

	uc.logger.Info("artwork view assembled",
		"artwork_id", id,
		"tags", len(view.TagNames),
		"characters", len(view.Characters),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return view, nil
}

// ListAllArtworks получает все работы для галереи с пагинацией
func (uc *artworkQueryUseCase) ListAllArtworks(ctx context.Context, page, perPage int) ([]domain.Artwork, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return uc.artworkStorage.ListAllArtworks(ctx, page, perPage)
}

// ListArtworksByParty получает работы, привязанные к событию
func (uc *artworkQueryUseCase) ListArtworksByParty(ctx context.Context, partyID uuid.UUID, page, perPage int) ([]domain.Artwork, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	return uc.artworkStorage.ListArtworksByParty(ctx, partyID, page, perPage)
}

// GetArtworkTags получает теги работы
func (uc *artworkQueryUseCase) GetArtworkTags(ctx context.Context, artworkID uuid.UUID) ([]domain.Tag, error) {
	return uc.tagStorage.GetTagsByArtwork(ctx, artworkID)
}

// GetArtworkCharacters получает персонажей работы
func (uc *artworkQueryUseCase) GetArtworkCharacters(ctx context.Context, artworkID uuid.UUID) ([]domain.Character, error) {
	return uc.characterStorage.GetCharactersByArtwork(ctx, artworkID)
}

// GetLikeCount получает текущее число лайков работы
func (uc *artworkQueryUseCase) GetLikeCount(ctx context.Context, artworkID uuid.UUID) (int, error) {
	return uc.likeStorage.CountLikesByArtwork(ctx, artworkID)
}
