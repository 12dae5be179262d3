package repos

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/arbor/internal/domain"
	"github.com/yungbote/arbor/internal/platform/dbctx"
	"github.com/yungbote/arbor/internal/platform/logger"
	"github.com/yungbote/arbor/internal/tree"
)

type FolderRepo interface {
	Create(dbc dbctx.Context, rows []*types.Folder) ([]*types.Folder, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Folder, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Folder, error)
	GetByPath(dbc dbctx.Context, p tree.Path) (*types.Folder, error)

	ListRoots(dbc dbctx.Context, ownerID *uuid.UUID) ([]*types.Folder, error)
	ListChildren(dbc dbctx.Context, parentID uuid.UUID) ([]*types.Folder, error)
	// ListSubtree returns the subtree rooted at root, the root row included,
	// shallow rows first. maxDepth > 0 bounds how many levels below root
	// come back; 0 means the whole subtree.
	ListSubtree(dbc dbctx.Context, root tree.Path, maxDepth int) ([]*types.Folder, error)
	// ListAncestors returns the strict ancestor chain of p, root first.
	ListAncestors(dbc dbctx.Context, p tree.Path) ([]*types.Folder, error)

	CountSubtree(dbc dbctx.Context, root tree.Path) (int64, error)

	UpdateParent(dbc dbctx.Context, id uuid.UUID, parentID *uuid.UUID) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// MoveSubtree runs the guarded bulk path rewrite for the subtree at old.
	MoveSubtree(dbc dbctx.Context, old, newParent tree.Path) (int64, error)

	SoftDeleteSubtree(dbc dbctx.Context, root tree.Path) (int64, error)
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type folderRepo struct {
	db  *gorm.DB
	eng *tree.Engine
	log *logger.Logger
}

func NewFolderRepo(db *gorm.DB, eng *tree.Engine, baseLog *logger.Logger) FolderRepo {
	return &folderRepo{db: db, eng: eng, log: baseLog.With("repo", "FolderRepo")}
}

func (r *folderRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *folderRepo) Create(dbc dbctx.Context, rows []*types.Folder) ([]*types.Folder, error) {
	if len(rows) == 0 {
		return []*types.Folder{}, nil
	}
	if err := r.handle(dbc).Create(&rows).Error; err != nil {
		return nil, MapError("folder.create", err)
	}
	return rows, nil
}

func (r *folderRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Folder, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *folderRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Folder, error) {
	var out []*types.Folder
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.handle(dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, MapError("folder.get_by_ids", err)
	}
	return out, nil
}

func (r *folderRepo) GetByPath(dbc dbctx.Context, p tree.Path) (*types.Folder, error) {
	if p.IsZero() {
		return nil, nil
	}
	var out []*types.Folder
	if err := r.handle(dbc).Where("path = ?", p).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("folder.get_by_path", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *folderRepo) ListRoots(dbc dbctx.Context, ownerID *uuid.UUID) ([]*types.Folder, error) {
	var out []*types.Folder
	q := r.handle(dbc).Where(r.eng.Roots(types.PathColumn))
	if ownerID != nil && *ownerID != uuid.Nil {
		q = q.Where("owner_id = ?", *ownerID)
	}
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, MapError("folder.list_roots", err)
	}
	return out, nil
}

func (r *folderRepo) ListChildren(dbc dbctx.Context, parentID uuid.UUID) ([]*types.Folder, error) {
	var out []*types.Folder
	if parentID == uuid.Nil {
		return out, nil
	}
	if err := r.handle(dbc).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("folder.list_children", err)
	}
	return out, nil
}

func (r *folderRepo) ListSubtree(dbc dbctx.Context, root tree.Path, maxDepth int) ([]*types.Folder, error) {
	var out []*types.Folder
	if root.IsZero() {
		return out, nil
	}
	q := r.handle(dbc).Where(r.eng.DescendantOfOrSelf(types.PathColumn, root))
	if maxDepth > 0 {
		q = q.Where(r.eng.DepthLte(types.PathColumn, root.Depth()+maxDepth))
	}
	if err := q.
		Order(r.eng.OrderByDepth(types.PathColumn, false)).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("folder.list_subtree", err)
	}
	return out, nil
}

func (r *folderRepo) ListAncestors(dbc dbctx.Context, p tree.Path) ([]*types.Folder, error) {
	var out []*types.Folder
	if p.IsZero() {
		return out, nil
	}
	if err := r.handle(dbc).
		Where(r.eng.AncestorOf(types.PathColumn, p)).
		Order(r.eng.OrderByDepth(types.PathColumn, false)).
		Find(&out).Error; err != nil {
		return nil, MapError("folder.list_ancestors", err)
	}
	return out, nil
}

func (r *folderRepo) CountSubtree(dbc dbctx.Context, root tree.Path) (int64, error) {
	if root.IsZero() {
		return 0, nil
	}
	var n int64
	if err := r.handle(dbc).
		Model(&types.Folder{}).
		Where(r.eng.DescendantOfOrSelf(types.PathColumn, root)).
		Count(&n).Error; err != nil {
		return 0, MapError("folder.count_subtree", err)
	}
	return n, nil
}

func (r *folderRepo) UpdateParent(dbc dbctx.Context, id uuid.UUID, parentID *uuid.UUID) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{"parent_id": parentID})
}

func (r *folderRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	if err := r.handle(dbc).
		Model(&types.Folder{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return MapError("folder.update_fields", err)
	}
	return nil
}

func (r *folderRepo) MoveSubtree(dbc dbctx.Context, old, newParent tree.Path) (int64, error) {
	n, err := r.eng.Move(dbc.Ctx, dbc.Tx, types.Folder{}.TableName(), types.PathColumn, old, newParent)
	if err != nil {
		// Guard and path validation errors keep their identity for callers.
		if errors.Is(err, tree.ErrCircularReference) || errors.Is(err, tree.ErrInvalidPath) {
			return 0, err
		}
		return 0, MapError("folder.move_subtree", err)
	}
	return n, nil
}

func (r *folderRepo) SoftDeleteSubtree(dbc dbctx.Context, root tree.Path) (int64, error) {
	if root.IsZero() {
		return 0, nil
	}
	res := r.handle(dbc).
		Where(r.eng.DescendantOfOrSelf(types.PathColumn, root)).
		Delete(&types.Folder{})
	if res.Error != nil {
		return 0, MapError("folder.soft_delete_subtree", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *folderRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.handle(dbc).
		Unscoped().
		Where("id IN ?", ids).
		Delete(&types.Folder{}).Error; err != nil {
		return MapError("folder.full_delete_by_ids", err)
	}
	return nil
}
