package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/arbor/internal/tree"
)

// Folder is a node in the folder hierarchy. Path materializes the ancestor
// chain of PathKey values; PathKey rather than ID seeds the segments because
// ltree labels reject the hyphens of a canonical uuid.
type Folder struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *Folder    `gorm:"foreignKey:ParentID;references:ID" json:"parent,omitempty"`

	PathKey string    `gorm:"column:path_key;size:32;not null;uniqueIndex" json:"path_key"`
	Path    tree.Path `gorm:"column:path" json:"path"`

	Name     string         `gorm:"column:name;not null" json:"name"`
	OwnerID  *uuid.UUID     `gorm:"type:uuid;index" json:"owner_id,omitempty"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Folder) TableName() string { return "folder" }

// PathColumn is the Folder column the tree engine maintains.
const PathColumn = "path"

// NewPathKey returns a fresh segment-safe key: a uuid compacted to 32 hex
// characters.
func NewPathKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Depth is the node's tree depth derived from its path; roots are 1.
func (f *Folder) Depth() int {
	return f.Path.Depth()
}

// IsRoot reports whether the folder has no parent.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
