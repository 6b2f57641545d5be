package database

import (
	"fmt"
	"path/filepath"

	"mig-go/internal/config"
	"mig-go/internal/mig"
)

// NewDatabaseFromConfig creates a Database implementation based on the
// database config type. In-memory databases are migrated on creation;
// file-backed ones are checked by the caller and migrated explicitly
// via the db migrate command.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (mig.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		dbPath := filepath.Join(cfg.DataDir, "mig.db")
		return NewSQLiteDatabase(dbPath)
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
