package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/oxhq/parinfer/batch"
	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/internal/config"
	"github.com/oxhq/parinfer/mcp/types"
	"github.com/oxhq/parinfer/models"
)

// FormatFilesTool re-indents Lisp files on disk. It only reports diffs
// unless dryRun is explicitly turned off.
type FormatFilesTool struct {
	*BaseTool
	server types.ServerInterface
}

// NewFormatFilesTool creates the parinfer_format_files tool
func NewFormatFilesTool(server types.ServerInterface) *FormatFilesTool {
	tool := &FormatFilesTool{server: server}

	tool.BaseTool = &BaseTool{
		name: "parinfer_format_files",
		description: "Run parinfer over a file or directory tree. Each dialect is chosen by file " +
			"extension. Files the engine rejects are reported and left untouched. " +
			"Dry run by default; set dryRun=false to write the changes.",
		inputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":     CommonSchemas.Path,
				"mode":     CommonSchemas.Mode,
				"language": CommonSchemas.Language,
				"include":  CommonSchemas.Patterns,
				"exclude":  CommonSchemas.Patterns,
				"dryRun": map[string]any{
					"type":    "boolean",
					"default": true,
				},
				"backup":   map[string]any{"type": "boolean"},
				"maxFiles": map[string]any{"type": "integer", "minimum": 0},
				"maxDepth": map[string]any{"type": "integer", "minimum": 0},
			},
			"required": []string{"path"},
		},
		handler: tool.handle,
	}

	return tool
}

type formatFilesArgs struct {
	Path     string   `json:"path"`
	Mode     string   `json:"mode,omitempty"`
	Language string   `json:"language,omitempty"`
	Include  []string `json:"include,omitempty"`
	Exclude  []string `json:"exclude,omitempty"`
	DryRun   *bool    `json:"dryRun,omitempty"`
	Backup   *bool    `json:"backup,omitempty"`
	MaxFiles int      `json:"maxFiles,omitempty"`
	MaxDepth int      `json:"maxDepth,omitempty"`
}

func (t *FormatFilesTool) handle(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := ParseParams[formatFilesArgs](params)
	if err != nil {
		return nil, types.WrapError(types.InvalidParams, "Invalid format_files parameters", err)
	}
	if args.Path == "" {
		return nil, types.NewMCPError(types.InvalidParams, "path is required", nil)
	}

	settings := t.server.Settings()
	op, err := formatOp(settings, args)
	if err != nil {
		return nil, err
	}

	processor := t.server.FileProcessor()
	if processor == nil {
		return nil, types.NewMCPError(types.InternalError, "File processor not available", nil)
	}

	notifyProgress(ctx, t.server, 0, 1, "Scanning "+args.Path)
	result, err := processor.FormatFiles(ctx, op)
	if err != nil {
		if cancelled := isCancelled(ctx); cancelled != nil {
			return nil, cancelled
		}
		return nil, types.WrapError(types.FileSystemError, "Failed to format files", err)
	}
	notifyProgress(ctx, t.server, 1, 1, fmt.Sprintf("Processed %d files", result.FilesScanned))

	t.recordRun(ctx, op, result)

	return types.TextResult(summarize(result), result, result.FilesFailed > 0), nil
}

func formatOp(settings *config.Config, args *formatFilesArgs) (batch.FormatOp, error) {
	mode := settings.FmtModeValue()
	if args.Mode != "" {
		m, err := core.ParseMode(args.Mode)
		if err != nil {
			return batch.FormatOp{}, types.WrapError(types.InvalidParams, "Invalid mode", err)
		}
		mode = m
	}

	include := args.Include
	if include == nil {
		include = settings.Fmt.Include
	}
	exclude := args.Exclude
	if exclude == nil {
		exclude = settings.Fmt.Exclude
	}

	cfg := *settings
	if args.Language != "" {
		cfg.Language = args.Language
	}

	op := batch.FormatOp{
		Scope: batch.FileScope{
			Path:           args.Path,
			Include:        include,
			Exclude:        exclude,
			MaxDepth:       args.MaxDepth,
			MaxFiles:       args.MaxFiles,
			MaxBytes:       settings.Fmt.MaxBytes,
			FollowSymlinks: settings.Fmt.FollowSymlinks,
			Language:       args.Language,
		},
		Mode: mode,
		Options: func(path, language string) core.Options {
			return cfg.Options(path)
		},
		DryRun: true,
		Backup: settings.Fmt.Backup,
	}
	if args.DryRun != nil {
		op.DryRun = *args.DryRun
	}
	if args.Backup != nil {
		op.Backup = *args.Backup
	}
	return op, nil
}

func (t *FormatFilesTool) recordRun(ctx context.Context, op batch.FormatOp, result *batch.FormatResult) {
	store := t.server.Store()
	if store == nil {
		return
	}

	opts, _ := json.Marshal(op.Options(op.Scope.Path, op.Scope.Language))
	run := &models.Run{
		Source:        "mcp",
		Root:          op.Scope.Path,
		Mode:          string(op.Mode),
		DryRun:        op.DryRun,
		Options:       datatypes.JSON(opts),
		FilesScanned:  result.FilesScanned,
		FilesModified: result.FilesModified,
		FilesFailed:   result.FilesFailed,
		FilesSkipped:  result.FilesSkipped,
		DurationMs:    result.ScanDuration + result.FormatDuration,
	}
	if err := store.RecordRun(ctx, run); err != nil {
		t.server.Log("warning", "Failed to record run", map[string]any{"error": err.Error()})
	}
}

func summarize(result *batch.FormatResult) string {
	var b strings.Builder

	verb := "Modified"
	if result.DryRun {
		verb = "Would modify"
	}
	fmt.Fprintf(&b, "Scanned %d files. %s %d, failed %d, skipped %d.\n",
		result.FilesScanned, verb, result.FilesModified, result.FilesFailed, result.FilesSkipped)

	for _, f := range result.Files {
		switch {
		case f.Failed():
			fmt.Fprintf(&b, "\n✗ %s: %s\n", f.FilePath, f.Error)
		case f.Skipped != "":
			fmt.Fprintf(&b, "\n- %s: skipped (%s)\n", f.FilePath, f.Skipped)
		case f.Modified:
			fmt.Fprintf(&b, "\n✓ %s (+%d -%d)\n", f.FilePath, f.LinesAdded, f.LinesRemoved)
			if result.DryRun && f.Diff != "" {
				b.WriteString(f.Diff)
			}
		}
	}
	return b.String()
}
