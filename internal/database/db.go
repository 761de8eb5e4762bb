package database

import (
	"posledger/internal/logger"
	"posledger/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection initializes a new connection pool using GORM and makes sure
// the key-value table backing the stored collections exists.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to auto-migrate models")
	}

	return db, nil
}
