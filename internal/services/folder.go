package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/arbor/internal/data/cache"
	"github.com/yungbote/arbor/internal/data/repos"
	types "github.com/yungbote/arbor/internal/domain"
	"github.com/yungbote/arbor/internal/observability"
	"github.com/yungbote/arbor/internal/platform/dbctx"
	"github.com/yungbote/arbor/internal/platform/logger"
	"github.com/yungbote/arbor/internal/tree"
)

var (
	// ErrFolderNotFound indicates the referenced folder does not exist.
	ErrFolderNotFound = errors.New("folder not found")
	// ErrInvalidInput indicates caller input validation failure.
	ErrInvalidInput = errors.New("invalid folder input")
)

type CreateFolderInput struct {
	Name     string
	ParentID *uuid.UUID
	OwnerID  *uuid.UUID
	Metadata datatypes.JSON
}

// FolderNode is a subtree row with its children nested back in.
type FolderNode struct {
	Folder   *types.Folder `json:"folder"`
	Children []*FolderNode `json:"children"`
}

type FolderService interface {
	Create(ctx context.Context, in CreateFolderInput) (*types.Folder, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Folder, error)
	Roots(ctx context.Context, ownerID *uuid.UUID) ([]*types.Folder, error)
	Children(ctx context.Context, id uuid.UUID) ([]*types.Folder, error)
	// Ancestors returns the breadcrumb chain of id, root first, id excluded.
	Ancestors(ctx context.Context, id uuid.UUID) ([]*types.Folder, error)
	// Subtree returns the folder and its descendants nested, maxDepth > 0
	// bounding how many levels below the folder come back.
	Subtree(ctx context.Context, id uuid.UUID, maxDepth int) (*FolderNode, error)
	// Move reparents id under newParentID, nil promoting it to a root.
	Move(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*types.Folder, error)
	// Delete soft-deletes the folder and its whole subtree, returning the
	// number of folders removed.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type folderService struct {
	db    *gorm.DB
	log   *logger.Logger
	repo  repos.FolderRepo
	cache cache.TreeCache
}

func NewFolderService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo repos.FolderRepo,
	treeCache cache.TreeCache,
) FolderService {
	return &folderService{
		db:    db,
		log:   baseLog.With("service", "FolderService"),
		repo:  repo,
		cache: treeCache,
	}
}

func (s *folderService) Create(ctx context.Context, in CreateFolderInput) (*types.Folder, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
	}

	dbc := dbctx.New(ctx)
	parentPath := tree.Path{}
	if in.ParentID != nil {
		parent, err := s.repo.GetByID(dbc, *in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent: %w", err)
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent %s", ErrFolderNotFound, *in.ParentID)
		}
		parentPath = parent.Path
	}

	f := &types.Folder{
		ID:       uuid.New(),
		ParentID: in.ParentID,
		PathKey:  types.NewPathKey(),
		Name:     name,
		OwnerID:  in.OwnerID,
		Metadata: in.Metadata,
	}
	p, err := parentPath.Child(f.PathKey)
	if err != nil {
		return nil, fmt.Errorf("build path: %w", err)
	}
	f.Path = p

	if _, err := s.repo.Create(dbc, []*types.Folder{f}); err != nil {
		s.log.Error("folder create failed", "error", err)
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info("folder created", "folder_id", f.ID, "depth", f.Depth())
	return f, nil
}

func (s *folderService) Get(ctx context.Context, id uuid.UUID) (*types.Folder, error) {
	f, err := s.repo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	return f, nil
}

func (s *folderService) Roots(ctx context.Context, ownerID *uuid.UUID) ([]*types.Folder, error) {
	return s.repo.ListRoots(dbctx.New(ctx), ownerID)
}

func (s *folderService) Children(ctx context.Context, id uuid.UUID) ([]*types.Folder, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListChildren(dbctx.New(ctx), id)
}

func (s *folderService) Ancestors(ctx context.Context, id uuid.UUID) ([]*types.Folder, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAncestors(dbctx.New(ctx), f.Path)
}

func (s *folderService) Subtree(ctx context.Context, id uuid.UUID, maxDepth int) (*FolderNode, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("subtree:%s:d%d", id, maxDepth)
	var cached FolderNode
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.Warn("subtree cache read failed", "error", err)
	} else if hit {
		return &cached, nil
	}

	rows, err := s.repo.ListSubtree(dbctx.New(ctx), f.Path, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	node := assembleSubtree(f.ID, rows)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}

	if err := s.cache.Set(ctx, key, node); err != nil {
		s.log.Warn("subtree cache write failed", "error", err)
	}
	return node, nil
}

// assembleSubtree nests a depth-ordered row list; parents always precede
// their children, so one pass suffices.
func assembleSubtree(rootID uuid.UUID, rows []*types.Folder) *FolderNode {
	byID := make(map[uuid.UUID]*FolderNode, len(rows))
	var root *FolderNode
	for _, row := range rows {
		node := &FolderNode{Folder: row}
		byID[row.ID] = node
		if row.ID == rootID {
			root = node
			continue
		}
		if row.ParentID != nil {
			if parent, ok := byID[*row.ParentID]; ok {
				parent.Children = append(parent.Children, node)
			}
		}
	}
	return root
}

func (s *folderService) Move(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*types.Folder, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newParentPath := tree.Path{}
	if newParentID != nil {
		if *newParentID == id {
			return nil, fmt.Errorf("%w: %s cannot move under %s", tree.ErrCircularReference, id, id)
		}
		parent, err := s.repo.GetByID(dbctx.New(ctx), *newParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent: %w", err)
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent %s", ErrFolderNotFound, *newParentID)
		}
		newParentPath = parent.Path
	}

	// Parent pointer and bulk path rewrite commit or fail together.
	start := time.Now()
	var moved int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.New(ctx).WithTx(tx)
		if err := s.repo.UpdateParent(txc, id, newParentID); err != nil {
			return fmt.Errorf("update parent: %w", err)
		}
		moved, err = s.repo.MoveSubtree(txc, f.Path, newParentPath)
		return err
	})
	if err != nil {
		status := "error"
		if errors.Is(err, tree.ErrCircularReference) {
			status = "cycle_rejected"
		}
		observability.Current().ObserveTreeMove(s.db.Name(), status, -1, time.Since(start))
		return nil, err
	}
	observability.Current().ObserveTreeMove(s.db.Name(), "ok", moved, time.Since(start))

	s.invalidate(ctx)
	s.log.Info("folder moved", "folder_id", id, "rows", moved)
	return s.Get(ctx, id)
}

func (s *folderService) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.SoftDeleteSubtree(dbctx.New(ctx), f.Path)
	if err != nil {
		return 0, fmt.Errorf("delete subtree: %w", err)
	}
	s.invalidate(ctx)
	s.log.Info("folder subtree deleted", "folder_id", id, "rows", n)
	return n, nil
}

func (s *folderService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("tree cache invalidate failed", "error", err)
	}
}
