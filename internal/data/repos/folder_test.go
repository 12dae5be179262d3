package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/arbor/internal/data/repos/testutil"
	types "github.com/yungbote/arbor/internal/domain"
	"github.com/yungbote/arbor/internal/platform/dbctx"
	"github.com/yungbote/arbor/internal/tree"
)

func TestFolderRepo(t *testing.T) {
	d := testutil.SQLiteDB(t)
	eng := testutil.Engine(t, d)
	repo := NewFolderRepo(d, eng, testutil.Logger(t))

	dbc := dbctx.Context{Ctx: context.Background(), Tx: d}

	root := testutil.SeedFolder(t, dbc, "root", nil)
	docs := testutil.SeedFolder(t, dbc, "docs", root)
	images := testutil.SeedFolder(t, dbc, "images", root)
	archive := testutil.SeedFolder(t, dbc, "archive", docs)
	other := testutil.SeedFolder(t, dbc, "other", nil)

	if got, err := repo.GetByID(dbc, docs.ID); err != nil || got == nil || got.ID != docs.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByPath(dbc, archive.Path); err != nil || got == nil || got.ID != archive.ID {
		t.Fatalf("GetByPath: got=%v err=%v", got, err)
	}
	if rows, err := repo.GetByIDs(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("GetByIDs(empty): err=%v len=%d", err, len(rows))
	}

	if rows, err := repo.ListRoots(dbc, nil); err != nil || len(rows) != 2 {
		t.Fatalf("ListRoots: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListChildren(dbc, root.ID); err != nil || len(rows) != 2 || rows[0].Name != "docs" {
		t.Fatalf("ListChildren: err=%v rows=%v", err, rows)
	}

	rows, err := repo.ListSubtree(dbc, root.Path, 0)
	if err != nil || len(rows) != 4 {
		t.Fatalf("ListSubtree: err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != root.ID {
		t.Fatalf("ListSubtree: root not first, got %q", rows[0].Name)
	}
	if rows, err := repo.ListSubtree(dbc, root.Path, 1); err != nil || len(rows) != 3 {
		t.Fatalf("ListSubtree depth 1: err=%v len=%d", err, len(rows))
	}

	anc, err := repo.ListAncestors(dbc, archive.Path)
	if err != nil || len(anc) != 2 || anc[0].ID != root.ID || anc[1].ID != docs.ID {
		t.Fatalf("ListAncestors: err=%v anc=%v", err, anc)
	}

	if n, err := repo.CountSubtree(dbc, root.Path); err != nil || n != 4 {
		t.Fatalf("CountSubtree: n=%d err=%v", n, err)
	}

	if err := repo.UpdateFields(dbc, docs.ID, map[string]interface{}{"name": "documents"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, docs.ID); got.Name != "documents" {
		t.Fatalf("UpdateFields: name=%q", got.Name)
	}

	// Reparent docs under images: parent pointer and bulk rewrite share one tx.
	err = d.Transaction(func(tx *gorm.DB) error {
		txc := dbc.WithTx(tx)
		if err := repo.UpdateParent(txc, docs.ID, testutil.PtrUUID(images.ID)); err != nil {
			return err
		}
		_, err := repo.MoveSubtree(txc, docs.Path, images.Path)
		return err
	})
	if err != nil {
		t.Fatalf("move docs under images: %v", err)
	}

	movedDocs, err := repo.GetByID(dbc, docs.ID)
	if err != nil {
		t.Fatalf("reload docs: %v", err)
	}
	wantDocs, _ := images.Path.Child(docs.PathKey)
	if movedDocs.Path != wantDocs {
		t.Fatalf("docs path after move: %q want %q", movedDocs.Path.String(), wantDocs.String())
	}
	movedArchive, err := repo.GetByID(dbc, archive.ID)
	if err != nil {
		t.Fatalf("reload archive: %v", err)
	}
	wantArchive, _ := wantDocs.Child(archive.PathKey)
	if movedArchive.Path != wantArchive || movedArchive.Depth() != 4 {
		t.Fatalf("archive path after move: %q depth=%d", movedArchive.Path.String(), movedArchive.Depth())
	}

	anc, err = repo.ListAncestors(dbc, movedArchive.Path)
	if err != nil || len(anc) != 3 || anc[0].ID != root.ID || anc[1].ID != images.ID || anc[2].ID != docs.ID {
		t.Fatalf("ListAncestors after move: err=%v anc=%v", err, anc)
	}

	if _, err := repo.MoveSubtree(dbc, images.Path, movedArchive.Path); !errors.Is(err, tree.ErrCircularReference) {
		t.Fatalf("cycle move: %v", err)
	}

	// Uniqueness violations come back classified.
	dupe := &types.Folder{ID: archive.ID, PathKey: archive.PathKey, Name: "dupe", Path: tree.MustPath(archive.PathKey)}
	if _, err := repo.Create(dbc, []*types.Folder{dupe}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate create: %v", err)
	}

	n, err := repo.SoftDeleteSubtree(dbc, images.Path)
	if err != nil || n != 3 {
		t.Fatalf("SoftDeleteSubtree: n=%d err=%v", n, err)
	}
	if got, err := repo.GetByID(dbc, archive.ID); err != nil || got != nil {
		t.Fatalf("archive visible after subtree delete: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListSubtree(dbc, root.Path, 0); err != nil || len(rows) != 1 {
		t.Fatalf("ListSubtree after delete: err=%v len=%d", err, len(rows))
	}

	if err := repo.FullDeleteByIDs(dbc, nil); err != nil {
		t.Fatalf("FullDeleteByIDs empty: %v", err)
	}
	if err := repo.FullDeleteByIDs(dbc, []uuid.UUID{other.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
}
