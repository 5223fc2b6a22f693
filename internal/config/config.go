package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
// Явная конфигурация вместо неявного глобального base URL: все адреса
// внешних систем передаются сюда и дальше через DI
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	ServerPort  string `env:"SERVER_PORT"`

	// sqlx (по умолчанию) или gorm — оба бэкенда реализуют одни и те же порты
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlx"`

	// Настройки для MinIO / S3-совместимого хранилища
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION,required"`

	// Публичный адрес объекта детерминирован: <PublicBaseURL>/<bucket>/<key>
	PublicBaseURL string `env:"PUBLIC_BASE_URL,required"`

	// Время жизни подписанного URL для записи; слот не переиспользуется между попытками
	UploadSlotTTL time.Duration `env:"UPLOAD_SLOT_TTL" envDefault:"15m"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL,required"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"artwork_cleanup_queue"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	if cfg.StorageDriver != "sqlx" && cfg.StorageDriver != "gorm" {
		return nil, fmt.Errorf("неизвестный STORAGE_DRIVER: %s (используйте 'sqlx' или 'gorm')", cfg.StorageDriver)
	}

	return &cfg, nil
}
