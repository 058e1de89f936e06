package database

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"wms/internal/model"
)

// NewConnection initializes a new connection pool using GORM and migrates the
// warehouse schema. Driver errors are translated so services can match
// gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func NewConnection(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Account{},
		&model.Item{},
		&model.Box{},
		&model.Inventory{},
		&model.Order{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Warn("failed to auto-migrate models", zap.Error(err))
	}

	return db, nil
}
