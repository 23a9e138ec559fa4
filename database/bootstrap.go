// database/bootstrap.go
package database

import (
	"fmt"
	"os"
	"path/filepath"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"policygen/entities"
)

// FileName is the database file inside the store directory.
const FileName = "documents.db"

// OpenStore opens (creating if needed) the document store under dir.
func OpenStore(dir string) (*gorm.DB, error) {
	if dir == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return OpenSQLite(filepath.Join(dir, FileName))
}

func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(
		&entities.Document{},
		&entities.StoreInfo{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
