package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Snapshot is the last text and cursor seen for an editor document. The next
// call for the same document diffs against it to recover the user's edit.
type Snapshot struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	Document string `gorm:"type:varchar(512);uniqueIndex;not null"`
	Language string `gorm:"type:varchar(50)"`
	Mode     string `gorm:"type:varchar(10)"`

	Text       string `gorm:"type:text"`
	CursorX    *int
	CursorLine *int

	Hits      int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Run records one batch formatting pass.
type Run struct {
	ID     string `gorm:"primaryKey;type:varchar(36)"`
	Source string `gorm:"type:varchar(20);index"` // cli, mcp
	Root   string `gorm:"type:varchar(1024)"`
	Mode   string `gorm:"type:varchar(10)"`
	DryRun bool   `gorm:"default:false"`

	// Options holds the resolved engine options the run was started with.
	Options datatypes.JSON

	FilesScanned  int `gorm:"default:0"`
	FilesModified int `gorm:"default:0"`
	FilesFailed   int `gorm:"default:0"`
	FilesSkipped  int `gorm:"default:0"`
	DurationMs    int64

	StartedAt  time.Time `gorm:"autoCreateTime;index"`
	FinishedAt *time.Time
}

func (s *Snapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (Snapshot) TableName() string { return "snapshots" }
func (Run) TableName() string      { return "runs" }
