package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/GoArmGo/ArtJam/internal/core/ports"
	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/GoArmGo/ArtJam/internal/messaging/payloads"
	"github.com/google/uuid"
)

// submissionUseCase implements SubmissionUseCase
type submissionUseCase struct {
	artworkStorage   ports.ArtworkStorage
	tagStorage       ports.TagStorage
	characterStorage ports.CharacterStorage
	slotIssuer       UploadSlotIssuer
	transport        ByteTransport
	cleanupPublisher ports.CleanupPublisher
	tagLimiter       chan struct{}
	logger           *slog.Logger
}

// NewSubmissionUseCase создает новый экземпляр SubmissionUseCase.
// tagLimiter ограничивает число параллельных резолвов тегов на одну публикацию
func NewSubmissionUseCase(
	artworkStorage ports.ArtworkStorage,
	tagStorage ports.TagStorage,
	characterStorage ports.CharacterStorage,
	slotIssuer UploadSlotIssuer,
	transport ByteTransport,
	cleanupPublisher ports.CleanupPublisher,
	tagLimiter chan struct{},
	logger *slog.Logger,
) SubmissionUseCase {
	return &submissionUseCase{
		artworkStorage:   artworkStorage,
		tagStorage:       tagStorage,
		characterStorage: characterStorage,
		slotIssuer:       slotIssuer,
		transport:        transport,
		cleanupPublisher: cleanupPublisher,
		tagLimiter:       tagLimiter,
		logger:           logger,
	}
}

// Submit прогоняет пайплайн публикации работы.
// Градация отказов: шаги 1-2 фатальны (ничего не создано), референс — мягкий,
// создание метаданных фатально (загруженные объекты уходят в очередь очистки),
// теги и персонажи — мягкие, собираются в предупреждения
func (uc *submissionUseCase) Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error) {
	start := time.Now()

	// 1. Локальная валидация до любого сетевого вызова
	if req.UploaderID == uuid.Nil {
		return nil, fmt.Errorf("%w: отсутствует идентичность вызывающего", domain.ErrUnauthorized)
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: пустой заголовок", domain.ErrValidation)
	}
	if req.PrimaryImage == nil {
		return nil, fmt.Errorf("%w: отсутствует основное изображение", domain.ErrValidation)
	}

	var warnings []domain.Warning
	var uploadedKeys []string

	// 2. Загрузка основного изображения — провал фатален, запись не создается,
	// система остается консистентной
	primarySlot, err := uc.uploadImage(ctx, req.PrimaryImage)
	if err != nil {
		uc.logger.Error("primary image upload failed, aborting submission", "uploader_id", req.UploaderID, "error", err)
		return nil, err
	}
	uploadedKeys = append(uploadedKeys, primarySlot.ObjectKey)

	// 3. Загрузка референса — мягкий отказ: публикуем без референса.
	// В отличие от шага 2 референс опционален и не должен блокировать публикацию
	var referenceURL *string
	if req.ReferenceImage != nil {
		referenceSlot, err := uc.uploadImage(ctx, req.ReferenceImage)
		if err != nil {
			uc.logger.Warn("reference image upload failed, proceeding without it", "uploader_id", req.UploaderID, "error", err)
			warnings = append(warnings, domain.NewWarning("reference_upload", err))
		} else {
			referenceURL = &referenceSlot.PublicURL
			uploadedKeys = append(uploadedKeys, referenceSlot.ObjectKey)
		}
	}

	// 4. Создание записи метаданных — провал фатален; загруженные объекты
	// отправляются в очередь очистки, чтобы не копить сирот в хранилище
	artwork := &domain.Artwork{
		ID:           uuid.New(),
		UploaderID:   req.UploaderID,
		PartyID:      req.PartyID,
		Title:        req.Title,
		ImageURL:     primarySlot.PublicURL,
		ReferenceURL: referenceURL,
		Notes:        req.Notes,
		ToolsUsed:    req.ToolsUsed,
		CreatedAt:    time.Now(),
	}
	if err := uc.artworkStorage.CreateArtwork(ctx, artwork); err != nil {
		uc.publishCleanup(ctx, uploadedKeys, "metadata creation failed")
		return nil, err
	}

	// 5. Резолв и линковка тегов — независимые идемпотентные вызовы,
	// выполняются параллельно под лимитером; отказ одного тега не откатывает
	// ни работу, ни уже слинкованные теги
	warnings = append(warnings, uc.attachTags(ctx, artwork.ID, req.TagNames)...)

	// 6. Линковка персонажей одним bulk-вызовом — тоже мягкий отказ
	if len(req.CharacterIDs) > 0 {
		if err := uc.characterStorage.LinkCharacters(ctx, artwork.ID, req.CharacterIDs); err != nil {
			uc.logger.Warn("character linking failed", "artwork_id", artwork.ID, "error", err)
			warnings = append(warnings, domain.NewWarning("character_link", err))
		}
	}

	uc.logger.Info("submission completed",
		"artwork_id", artwork.ID,
		"uploader_id", req.UploaderID,
		"warnings", len(warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// 7. Возвращаем id вместе с накопленными предупреждениями
	return &SubmissionResult{ArtworkID: artwork.ID, Warnings: warnings}, nil
}

// uploadImage запрашивает слот и передает байты. Слоты не переиспользуются
// между попытками, поэтому повтор начинается с нового запроса слота
func (uc *submissionUseCase) uploadImage(ctx context.Context, img *ImageUpload) (*domain.UploadSlot, error) {
	slot, err := uc.slotIssuer.RequestUploadSlot(ctx, img.FileName, img.ContentType)
	if err != nil {
		return nil, err
	}
	if err := uc.transport.Transfer(ctx, slot.WriteURL, img.Content, img.ContentType); err != nil {
		return nil, err
	}
	return slot, nil
}

// attachTags резолвит и линкует каждый тег независимо, параллельно под лимитером.
// Порядок тегов не гарантирован и не значим; предупреждения собираются под мьютексом
func (uc *submissionUseCase) attachTags(ctx context.Context, artworkID uuid.UUID, tagNames []string) []domain.Warning {
	names := normalizeTagNames(tagNames)
	if len(names) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		warnings []domain.Warning
		wg       sync.WaitGroup
	)

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			uc.tagLimiter <- struct{}{}
			defer func() { <-uc.tagLimiter }()

			if err := uc.resolveAndLink(ctx, artworkID, name); err != nil {
				uc.logger.Warn("tag attachment failed", "artwork_id", artworkID, "tag", name, "error", err)
				mu.Lock()
				warnings = append(warnings, domain.NewWarning("tag:"+name, err))
				mu.Unlock()
			}
		}(name)
	}

	wg.Wait()
	return warnings
}

func (uc *submissionUseCase) resolveAndLink(ctx context.Context, artworkID uuid.UUID, name string) error {
	tag, err := uc.tagStorage.GetOrCreateTag(ctx, name)
	if err != nil {
		return err
	}
	return uc.tagStorage.LinkTag(ctx, artworkID, tag.ID)
}

// publishCleanup отправляет ключи осиротевших объектов в очередь очистки.
// Провал публикации сам по себе нефатален: в худшем случае остаемся с сиротой,
// что и так принятое ограничение дизайна без распределенной транзакции
func (uc *submissionUseCase) publishCleanup(ctx context.Context, objectKeys []string, reason string) {
	if len(objectKeys) == 0 {
		return
	}
	payload := payloads.CleanupPayload{ObjectKeys: objectKeys, Reason: reason}
	if err := uc.cleanupPublisher.PublishCleanupRequest(ctx, payload); err != nil {
		uc.logger.Error("failed to publish cleanup request", "object_keys", objectKeys, "error", err)
	}
}

// ResolveTag находит тег по имени или создает его
func (uc *submissionUseCase) ResolveTag(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: пустое имя тега", domain.ErrTagResolution)
	}
	return uc.tagStorage.GetOrCreateTag(ctx, name)
}

// LinkTag идемпотентно связывает тег с работой
func (uc *submissionUseCase) LinkTag(ctx context.Context, artworkID, tagID uuid.UUID) error {
	return uc.tagStorage.LinkTag(ctx, artworkID, tagID)
}

// LinkCharacters массово связывает персонажей с работой
func (uc *submissionUseCase) LinkCharacters(ctx context.Context, artworkID uuid.UUID, characterIDs []uuid.UUID) error {
	return uc.characterStorage.LinkCharacters(ctx, artworkID, characterIDs)
}

// normalizeTagNames тримит, выкидывает пустые и схлопывает дубликаты,
// защищаясь от клиента, приславшего неочищенный список
func normalizeTagNames(tagNames []string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, raw := range tagNames {
		name := strings.TrimSpace(raw)
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
