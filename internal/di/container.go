package di

import (
	"github.com/GoArmGo/ArtJam/internal/adapter/storage/minio"
	"github.com/GoArmGo/ArtJam/internal/adapter/transport"
	"github.com/GoArmGo/ArtJam/internal/app"
	"github.com/GoArmGo/ArtJam/internal/config"
	"github.com/GoArmGo/ArtJam/internal/core/ports"
	"github.com/GoArmGo/ArtJam/internal/database/client"
	"github.com/GoArmGo/ArtJam/internal/database/postgres"
	"github.com/GoArmGo/ArtJam/internal/database/storage"
	"github.com/GoArmGo/ArtJam/internal/handler"
	"github.com/GoArmGo/ArtJam/internal/logger"
	"github.com/GoArmGo/ArtJam/internal/rabbitmq"
	"github.com/GoArmGo/ArtJam/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App
func BuildApp() (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogCfg := logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}
	slogger := logger.NewSlog(slogCfg)

	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. Инициализация PostgreSQL клиента (sqlx + миграции)
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 3. Инициализация хранилищ: sqlx по умолчанию, gorm как альтернативный бэкенд
	var (
		artworkStorage   ports.ArtworkStorage
		tagStorage       ports.TagStorage
		characterStorage ports.CharacterStorage
		likeStorage      ports.LikeStorage
		userStorage      ports.UserStorage
	)

	if cfg.StorageDriver == "gorm" {
		gormDB, err := postgres.NewGormDB(cfg)
		if err != nil {
			return nil, err
		}
		artworkStorage = postgres.NewGormArtworkStorage(gormDB, slogger)
		tagStorage = postgres.NewGormTagStorage(gormDB, slogger)
		characterStorage = postgres.NewGormCharacterStorage(gormDB, slogger)
		likeStorage = postgres.NewGormLikeStorage(gormDB, slogger)
		userStorage = postgres.NewGormUserStorage(gormDB, slogger)
		slogger.Info("storage backend selected", "driver", "gorm")
	} else {
		artworkStorage = storage.NewArtworkStorage(dbClient.DB, slogger)
		tagStorage = storage.NewTagStorage(dbClient.DB, slogger)
		characterStorage = storage.NewCharacterStorage(dbClient.DB, slogger)
		likeStorage = storage.NewLikeStorage(dbClient.DB, slogger)
		userStorage = storage.NewUserStorage(dbClient.DB, slogger)
		slogger.Info("storage backend selected", "driver", "sqlx")
	}

	// 4. Инициализация клиентов внешних систем
	fileStore, err := minio.NewMinioClient(cfg, slogger) // S3 / MinIO адаптер
	if err != nil {
		return nil, err
	}
	transportClient := transport.NewClient(cfg.RequestTimeout)

	// 5. Инициализация RabbitMQ клиента (очередь очистки сирот)
	rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 6. Лимитер параллельных резолвов тегов внутри одной публикации
	tagLimiter := make(chan struct{}, 5)

	// 7. Инициализация бизнес-логики (usecases)
	submissionUseCase := usecase.NewSubmissionUseCase(
		artworkStorage,
		tagStorage,
		characterStorage,
		fileStore,
		transportClient,
		rabbitMQClient,
		tagLimiter,
		slogger,
	)
	queryUseCase := usecase.NewArtworkQueryUseCase(
		artworkStorage,
		tagStorage,
		characterStorage,
		likeStorage,
		userStorage,
		slogger,
	)

	// 8. HTTP-обработчик
	artworkHandler := handler.NewArtworkHandler(submissionUseCase, queryUseCase, fileStore, slogger)

	// 9. Сборка итогового приложения
	application := app.NewApp(
		cfg,
		slogger,
		dbClient.DB,
		artworkHandler,
		rabbitMQClient,
		fileStore,
	)

	slogger.Info("all dependencies initialized successfully")
	return application, nil
}
