package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/arbor/internal/data/repos"
	"github.com/yungbote/arbor/internal/platform/logger"
	"github.com/yungbote/arbor/internal/tree"
)

type Repos struct {
	Tree   *tree.Engine
	Folder repos.FolderRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) (Repos, error) {
	log.Info("Wiring repos...")
	eng, err := tree.New(db)
	if err != nil {
		return Repos{}, fmt.Errorf("init tree engine: %w", err)
	}
	return Repos{
		Tree:   eng,
		Folder: repos.NewFolderRepo(db, eng, log),
	}, nil
}
