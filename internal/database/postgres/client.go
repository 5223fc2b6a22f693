package postgres

import (
	"fmt"

	"github.com/GoArmGo/ArtJam/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormDB открывает GORM-подключение поверх того же DATABASE_URL.
// Миграции остаются за golang-migrate (см. database/client), GORM
// используется только как альтернативный бэкенд хранилищ
func NewGormDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия GORM-соединения с БД: %w", err)
	}
	return db, nil
}
