package batch

import "github.com/oxhq/parinfer/core"

// FileScope defines which files a run visits.
type FileScope struct {
	Path           string   `json:"path"`                // File or root directory
	Include        []string `json:"include,omitempty"`   // Patterns to include; empty means every known Lisp extension
	Exclude        []string `json:"exclude,omitempty"`   // Patterns to exclude
	MaxDepth       int      `json:"max_depth,omitempty"` // Max directory depth (0 = unlimited)
	MaxFiles       int      `json:"max_files,omitempty"` // Max files to visit (0 = unlimited)
	MaxBytes       int64    `json:"max_bytes,omitempty"` // Skip larger files (0 = unlimited)
	FollowSymlinks bool     `json:"follow_symlinks"`
	Language       string   `json:"language,omitempty"` // Detected per file when empty
}

// OptionsFunc returns engine options for a file of the given dialect.
type OptionsFunc func(path, language string) core.Options

// FormatOp describes one formatting run.
type FormatOp struct {
	Scope       FileScope   `json:"scope"`
	Mode        core.Mode   `json:"mode"`
	Options     OptionsFunc `json:"-"`
	DryRun      bool        `json:"dry_run"`
	Backup      bool        `json:"backup"`
	DiffContext int         `json:"diff_context"` // 0 means diff.DefaultContext
}

// FileDetail is the outcome for a single file.
type FileDetail struct {
	FilePath     string      `json:"file_path"`
	Language     string      `json:"language"`
	Modified     bool        `json:"modified"`
	Skipped      string      `json:"skipped,omitempty"`
	Diff         string      `json:"diff,omitempty"`
	LinesAdded   int         `json:"lines_added"`
	LinesRemoved int         `json:"lines_removed"`
	Error        string      `json:"error,omitempty"`
	EngineError  *core.Error `json:"engine_error,omitempty"`
	BackupPath   string      `json:"backup_path,omitempty"`
	OriginalSize int64       `json:"original_size"`
	ModifiedSize int64       `json:"modified_size"`
}

// Failed reports whether the file could not be formatted.
func (d FileDetail) Failed() bool {
	return d.Error != ""
}

// FormatResult aggregates a run.
type FormatResult struct {
	FilesScanned   int          `json:"files_scanned"`
	FilesModified  int          `json:"files_modified"`
	FilesFailed    int          `json:"files_failed"`
	FilesSkipped   int          `json:"files_skipped"`
	ScanDuration   int64        `json:"scan_duration_ms"`
	FormatDuration int64        `json:"format_duration_ms"`
	DryRun         bool         `json:"dry_run"`
	Files          []FileDetail `json:"files"`
}
