package ports

import (
	"context"

	"github.com/GoArmGo/ArtJam/internal/messaging/payloads"
)

// CleanupPublisher определяет методы для публикации задач на удаление осиротевших объектов.
// Этот интерфейс используется координатором публикации, когда создание метаданных
// провалилось после успешной загрузки файлов в хранилище
type CleanupPublisher interface {
	PublishCleanupRequest(ctx context.Context, payload payloads.CleanupPayload) error
}

// CleanupConsumer определяет методы для потребления задач на удаление объектов,
// используется воркером для получения задач из очереди
type CleanupConsumer interface {
	// StartConsumingCleanupRequests начинает прослушивание очереди задач очистки,
	// принимает функцию-обработчик, которая будет вызываться для каждого сообщения
	StartConsumingCleanupRequests(ctx context.Context, handler func(context.Context, payloads.CleanupPayload) error) error
}
