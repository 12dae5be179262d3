package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/arbor/internal/domain"
	"github.com/yungbote/arbor/internal/tree"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Folder{},
	)
}

// EnsureTreeIndexes creates the path indexes AutoMigrate cannot express. On
// postgres the containment operators are only indexable through GiST.
func EnsureTreeIndexes(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case tree.DialectPostgres:
		if err := db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_folder_path_gist
			ON folder USING GIST (path);
		`).Error; err != nil {
			return fmt.Errorf("create idx_folder_path_gist: %w", err)
		}
		if err := db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_folder_path
			ON folder (path);
		`).Error; err != nil {
			return fmt.Errorf("create idx_folder_path: %w", err)
		}
	case tree.DialectSQLite:
		if err := db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_folder_path
			ON folder (path);
		`).Error; err != nil {
			return fmt.Errorf("create idx_folder_path: %w", err)
		}
	}
	return nil
}
