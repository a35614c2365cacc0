package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tracker/internal/config"
	"tracker/internal/model"
)

// Persister loads and saves the whole student database at once.
type Persister interface {
	// Load returns an empty database when nothing has been saved yet and an
	// error matching model.ErrCorruptData when stored data cannot be read.
	Load() (model.Database, error)
	// Save replaces everything previously stored.
	Save(db model.Database) error
	Close() error
}

// NewPersister opens the storage backend selected by cfg.
func NewPersister(cfg *config.Config) (Persister, error) {
	switch cfg.Storage {
	case config.StorageJSON:
		return NewFileStore(cfg.DataFile), nil
	case config.StorageSQLite, config.StoragePostgres:
		db, err := InitDB(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db)
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

// InitDB connects to the SQL database named by cfg.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Storage {
	case config.StorageSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	case config.StoragePostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("storage %q is not a SQL backend", cfg.Storage)
	}

	level := logger.Warn
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	return db, nil
}
