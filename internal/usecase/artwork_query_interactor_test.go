package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/GoArmGo/ArtJam/internal/core/ports"
	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.LikeStorage = (*fakeLikeStorage)(nil)
	_ ports.UserStorage = (*fakeUserStorage)(nil)
)

// queryTagStorage дополняет fakeTagStorage читающей стороной
type queryTagStorage struct {
	fakeTagStorage
	byArtwork map[uuid.UUID][]domain.Tag
	readErr   error
}

func (f *queryTagStorage) GetTagsByArtwork(ctx context.Context, artworkID uuid.UUID) ([]domain.Tag, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.byArtwork[artworkID], nil
}

type queryCharacterStorage struct {
	fakeCharacterStorage
	byArtwork map[uuid.UUID][]domain.Character
	readErr   error
}

func (f *queryCharacterStorage) GetCharactersByArtwork(ctx context.Context, artworkID uuid.UUID) ([]domain.Character, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.byArtwork[artworkID], nil
}

type fakeLikeStorage struct {
	counts  map[uuid.UUID]int
	readErr error
}

func (f *fakeLikeStorage) CountLikesByArtwork(ctx context.Context, artworkID uuid.UUID) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.counts[artworkID], nil
}

type fakeUserStorage struct {
	users   map[uuid.UUID]*domain.User
	readErr error
}

func (f *fakeUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

type queryFixture struct {
	artworks   *fakeArtworkStorage
	tags       *queryTagStorage
	characters *queryCharacterStorage
	likes      *fakeLikeStorage
	users      *fakeUserStorage
	uc         ArtworkQueryUseCase
}

func newQueryFixture() *queryFixture {
	f := &queryFixture{
		artworks: &fakeArtworkStorage{},
		tags: &queryTagStorage{
			fakeTagStorage: *newFakeTagStorage(),
			byArtwork:      make(map[uuid.UUID][]domain.Tag),
		},
		characters: &queryCharacterStorage{
			fakeCharacterStorage: *newFakeCharacterStorage(),
			byArtwork:            make(map[uuid.UUID][]domain.Character),
		},
		likes: &fakeLikeStorage{counts: make(map[uuid.UUID]int)},
		users: &fakeUserStorage{users: make(map[uuid.UUID]*domain.User)},
	}
	f.uc = NewArtworkQueryUseCase(
		f.artworks,
		f.tags,
		f.characters,
		f.likes,
		f.users,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func (f *queryFixture) seedArtwork(t *testing.T) *domain.Artwork {
	t.Helper()
	uploaderID := uuid.New()
	artwork := &domain.Artwork{
		ID:         uuid.New(),
		UploaderID: uploaderID,
		Title:      "Starlit Forest",
		ImageURL:   "http://cdn.local/art/artworks/starlit-forest.png",
	}
	require.NoError(t, f.artworks.CreateArtwork(context.Background(), artwork))
	f.users.users[uploaderID] = &domain.User{ID: uploaderID, Username: "mira"}
	return artwork
}

func TestGetArtworkView_FullEnrichment(t *testing.T) {
	f := newQueryFixture()
	artwork := f.seedArtwork(t)
	f.tags.byArtwork[artwork.ID] = []domain.Tag{
		{ID: uuid.New(), Name: "Fantasy"},
		{ID: uuid.New(), Name: "Digital"},
	}
	f.characters.byArtwork[artwork.ID] = []domain.Character{
		{ID: uuid.New(), Name: "Лис"},
	}
	f.likes.counts[artwork.ID] = 7

	view, err := f.uc.GetArtworkView(context.Background(), artwork.ID)

	require.NoError(t, err)
	assert.Equal(t, artwork.ID, view.Artwork.ID)
	assert.ElementsMatch(t, []string{"Fantasy", "Digital"}, view.TagNames)
	assert.Len(t, view.Characters, 1)
	assert.Equal(t, 7, view.LikeCount)
	assert.Equal(t, "mira", view.UploaderName)
}

func TestGetArtworkView_MissingBaseRecordFails(t *testing.T) {
	f := newQueryFixture()

	view, err := f.uc.GetArtworkView(context.Background(), uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, view)
}

// Отказ любого обогащения не роняет вью целиком: этот фасет приходит
// пустым, остальные заполняются как обычно
func TestGetArtworkView_ToleratesPartialEnrichmentFailure(t *testing.T) {
	f := newQueryFixture()
	artwork := f.seedArtwork(t)
	f.tags.readErr = errors.New("tag store down")
	f.characters.byArtwork[artwork.ID] = []domain.Character{
		{ID: uuid.New(), Name: "Ворон"},
	}
	f.likes.counts[artwork.ID] = 3

	view, err := f.uc.GetArtworkView(context.Background(), artwork.ID)

	require.NoError(t, err)
	assert.Empty(t, view.TagNames)
	assert.NotNil(t, view.TagNames)
	assert.Len(t, view.Characters, 1)
	assert.Equal(t, 3, view.LikeCount)
	assert.Equal(t, "mira", view.UploaderName)
}

func TestGetArtworkView_AllEnrichmentsDownStillReturnsBase(t *testing.T) {
	f := newQueryFixture()
	artwork := f.seedArtwork(t)
	f.tags.readErr = errors.New("down")
	f.characters.readErr = errors.New("down")
	f.likes.readErr = errors.New("down")
	f.users.readErr = errors.New("down")

	view, err := f.uc.GetArtworkView(context.Background(), artwork.ID)

	require.NoError(t, err)
	assert.Equal(t, "Starlit Forest", view.Artwork.Title)
	assert.Empty(t, view.TagNames)
	assert.Empty(t, view.Characters)
	assert.Zero(t, view.LikeCount)
	assert.Empty(t, view.UploaderName)
}

func TestListAllArtworks_PaginationDefaults(t *testing.T) {
	f := newQueryFixture()
	f.seedArtwork(t)

	artworks, err := f.uc.ListAllArtworks(context.Background(), 0, -5)

	require.NoError(t, err)
	assert.Len(t, artworks, 1)
}
