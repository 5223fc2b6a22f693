package usecase

import (
	"context"
	"io"
	"strings"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/google/uuid"
)

// UploadSlotIssuer определяет интерфейс выдачи слотов загрузки.
// Слот — одноразовая тройка (ключ объекта, подписанный URL для записи, срок жизни);
// повторная попытка загрузки обязана запросить новый слот
type UploadSlotIssuer interface {
	RequestUploadSlot(ctx context.Context, fileName, contentType string) (*domain.UploadSlot, error)
}

// ByteTransport определяет интерфейс передачи байтов по подписанному URL.
// Передача без внутренних повторов: неудача не оставляет объекта по публичному адресу
type ByteTransport interface {
	Transfer(ctx context.Context, writeURL string, body io.Reader, contentType string) error
}

// ImageUpload — файл, переданный отправителем: имя, MIME-тип и содержимое
type ImageUpload struct {
	FileName    string
	ContentType string
	Content     io.Reader
}

// SubmissionRequest — явная форма запроса публикации работы.
// Обязательные и опциональные поля валидируются локально до любого сетевого вызова
type SubmissionRequest struct {
	UploaderID     uuid.UUID
	PartyID        *uuid.UUID
	Title          string
	Notes          string
	ToolsUsed      string
	PrimaryImage   *ImageUpload
	ReferenceImage *ImageUpload
	TagNames       []string
	CharacterIDs   []uuid.UUID
}

// SubmissionResult — итог публикации: id созданной работы плюс накопленные
// нефатальные предупреждения шагов обогащения (теги, персонажи, референс)
type SubmissionResult struct {
	ArtworkID uuid.UUID        `json:"artwork_id"`
	Warnings  []domain.Warning `json:"warnings"`
}

// SubmissionUseCase определяет интерфейс координатора публикации работы
type SubmissionUseCase interface {
	// Submit прогоняет пайплайн публикации: загрузка файлов, создание метаданных,
	// резолв и линковка тегов, линковка персонажей. Ошибки загрузки основного файла
	// и создания записи фатальны, ошибки обогащений собираются в предупреждения
	Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error)

	// ResolveTag находит тег по имени или создает его (get-or-create)
	ResolveTag(ctx context.Context, name string) (*domain.Tag, error)

	// LinkTag идемпотентно связывает тег с работой
	LinkTag(ctx context.Context, artworkID, tagID uuid.UUID) error

	// LinkCharacters массово связывает персонажей с работой (все или никто)
	LinkCharacters(ctx context.Context, artworkID uuid.UUID, characterIDs []uuid.UUID) error
}

// ArtworkQueryUseCase определяет интерфейс читающей стороны (галерея и детальная страница)
type ArtworkQueryUseCase interface {
	// GetArtworkView собирает работу с обогащениями: теги, персонажи, автор, лайки.
	// Ошибка отдельного обогащения не валит чтение — фасет остается пустым
	GetArtworkView(ctx context.Context, id uuid.UUID) (*domain.ArtworkView, error)

	// ListAllArtworks получает все работы для галереи с пагинацией
	ListAllArtworks(ctx context.Context, page, perPage int) ([]domain.Artwork, error)

	// ListArtworksByParty получает работы, привязанные к событию
	ListArtworksByParty(ctx context.Context, partyID uuid.UUID, page, perPage int) ([]domain.Artwork, error)

	// GetArtworkTags получает теги работы
	GetArtworkTags(ctx context.Context, artworkID uuid.UUID) ([]domain.Tag, error)

	// GetArtworkCharacters получает персонажей работы
	GetArtworkCharacters(ctx context.Context, artworkID uuid.UUID) ([]domain.Character, error)

	// GetLikeCount получает текущее число лайков работы
	GetLikeCount(ctx context.Context, artworkID uuid.UUID) (int, error)
}

// SplitTagList разбирает введенный пользователем список тегов через запятую:
// режет, тримит и выкидывает пустые фрагменты, дубликаты схлопываются
// с сохранением порядка первого вхождения
func SplitTagList(raw string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, fragment := range strings.Split(raw, ",") {
		name := strings.TrimSpace(fragment)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
