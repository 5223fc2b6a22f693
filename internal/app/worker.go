package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ArtJam/internal/core/ports"
	"github.com/GoArmGo/ArtJam/internal/messaging/payloads"
)

// runWorker запускает потребителя очереди очистки: удаляет из объектного
// хранилища сирот, оставшихся после провала создания метаданных.
// Это best-effort сверка, а не транзакционная гарантия между сторами
func runWorker(
	ctx context.Context,
	logger *slog.Logger,
	cleanupConsumer ports.CleanupConsumer,
	objectStore ports.ObjectStore,
) error {
	logger.Info("worker started, waiting for cleanup messages")

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	messageHandler := func(ctx context.Context, payload payloads.CleanupPayload) error {
		logger.Info("processing cleanup task", "object_keys", payload.ObjectKeys, "reason", payload.Reason)

		var failed []string
		for _, objectKey := range payload.ObjectKeys {
			if err := objectStore.DeleteFile(ctx, objectKey); err != nil {
				logger.Error("failed to delete orphaned object", "object_key", objectKey, "error", err)
				failed = append(failed, objectKey)
				continue
			}
			logger.Info("orphaned object deleted", "object_key", objectKey)
		}

		// Ошибка вернет сообщение в очередь на повтор
		if len(failed) > 0 {
			return fmt.Errorf("не удалось удалить %d из %d объектов", len(failed), len(payload.ObjectKeys))
		}
		return nil
	}

	if err := cleanupConsumer.StartConsumingCleanupRequests(workerCtx, messageHandler); err != nil {
		return fmt.Errorf("не удалось запустить потребителя очереди очистки: %w", err)
	}

	<-ctx.Done()
	logger.Info("worker stopping")
	return nil
}
