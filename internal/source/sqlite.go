package source

import (
	"context"
	"fmt"
	"os"

	"cyber-dashboard/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteSource reads the attacks table of a SQLite database, ordered by id.
type SQLiteSource struct {
	path string
}

func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{path: path}
}

func (s *SQLiteSource) Name() string {
	return "sqlite:" + s.path
}

func (s *SQLiteSource) Path() string {
	return s.path
}

func (s *SQLiteSource) Fetch(ctx context.Context) ([]model.AttackRecord, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", s.path, err)
	}

	db, err := openSQLite(s.path)
	if err != nil {
		return nil, err
	}
	defer closeSQLite(db)

	if !db.Migrator().HasTable(&model.AttackRecord{}) {
		return nil, fmt.Errorf("table %q not found in %s", model.AttackRecord{}.TableName(), s.path)
	}

	records := make([]model.AttackRecord, 0)
	if err := db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query attacks: %w", err)
	}
	return records, nil
}

// WriteSQLite replaces the attacks table content of the database at path.
func WriteSQLite(path string, records []model.AttackRecord) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer closeSQLite(db)

	if err := db.AutoMigrate(&model.AttackRecord{}); err != nil {
		return fmt.Errorf("failed to migrate attacks table: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.AttackRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear attacks table: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 200).Error; err != nil {
			return fmt.Errorf("failed to insert attacks: %w", err)
		}
		return nil
	})
}

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, nil
}

func closeSQLite(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
