package ports

import (
	"context"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
)

// ArtworkStorage определяет методы для взаимодействия с хранилищем работ
type ArtworkStorage interface {
	// CreateArtwork создает запись метаданных работы. Запись неизменна после создания
	CreateArtwork(ctx context.Context, artwork *domain.Artwork) error

	// GetArtworkByID получает работу по ID, возвращает domain.ErrNotFound если записи нет
	GetArtworkByID(ctx context.Context, id uuid.UUID) (*domain.Artwork, error)

	// ListAllArtworks получает все работы с пагинацией (галерея)
	ListAllArtworks(ctx context.Context, page, perPage int) ([]domain.Artwork, error)

	// ListArtworksByParty получает работы, привязанные к событию
	ListArtworksByParty(ctx context.Context, partyID uuid.UUID, page, perPage int) ([]domain.Artwork, error)
}

// TagStorage определяет методы резолвера тегов
type TagStorage interface {
	// GetOrCreateTag находит тег по имени или создает его.
	// Должен быть безопасен при конкурентных вызовах с одинаковым именем:
	// гонка разрешается на уникальном индексе, проигравший получает id победителя
	GetOrCreateTag(ctx context.Context, name string) (*domain.Tag, error)

	// LinkTag связывает тег с работой, повторная связка той же пары — no-op.
	// Возвращает domain.ErrLink если работы не существует
	LinkTag(ctx context.Context, artworkID, tagID uuid.UUID) error

	// GetTagsByArtwork получает теги работы
	GetTagsByArtwork(ctx context.Context, artworkID uuid.UUID) ([]domain.Tag, error)
}

// CharacterStorage определяет методы линкера персонажей
type CharacterStorage interface {
	// LinkCharacters массово связывает персонажей с работой одной транзакцией:
	// либо линкуются все перечисленные, либо никто. Пустой набор — валидный no-op.
	// Возвращает domain.ErrLink если какой-то id не входит в ростер события работы
	LinkCharacters(ctx context.Context, artworkID uuid.UUID, characterIDs []uuid.UUID) error

	// GetCharactersByArtwork получает персонажей, изображенных на работе
	GetCharactersByArtwork(ctx context.Context, artworkID uuid.UUID) ([]domain.Character, error)
}

// LikeStorage определяет методы чтения лайков (в этом пайплайне только счетчик)
type LikeStorage interface {
	// CountLikesByArtwork возвращает текущее число лайков работы
	CountLikesByArtwork(ctx context.Context, artworkID uuid.UUID) (int, error)
}

// ObjectStore определяет методы работы с бинарными объектами в файловом хранилище,
// которые нужны за пределами пайплайна загрузки (воркер очистки сирот)
type ObjectStore interface {
	// DeleteFile удаляет объект из хранилища по его ключу
	DeleteFile(ctx context.Context, objectKey string) error
}

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	// GetUserByID получает пользователя по ID, domain.ErrNotFound если записи нет
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
