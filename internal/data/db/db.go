package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/arbor/internal/platform/logger"
	"github.com/yungbote/arbor/internal/tree"
)

// Service is the handle the app wires against regardless of backend.
type Service interface {
	DB() *gorm.DB
	AutoMigrateAll() error
}

// Open selects the backend by driver name: "postgres" for the native path
// type, "sqlite" for the emulated one.
func Open(driver, dsn string, logg *logger.Logger) (Service, error) {
	switch driver {
	case tree.DialectPostgres:
		return NewPostgresService(dsn, logg)
	case tree.DialectSQLite:
		return NewSQLiteService(dsn, logg)
	default:
		return nil, fmt.Errorf("%w: driver %q", tree.ErrUnsupportedBackend, driver)
	}
}
