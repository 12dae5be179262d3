package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/arbor/internal/data/cache"
	"github.com/yungbote/arbor/internal/platform/logger"
	"github.com/yungbote/arbor/internal/services"
)

type Services struct {
	Folder services.FolderService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos, treeCache cache.TreeCache) Services {
	log.Info("Wiring services...")
	return Services{
		Folder: services.NewFolderService(db, log, reposet.Folder, treeCache),
	}
}
