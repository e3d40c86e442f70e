package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gorm.io/datatypes"

	"github.com/oxhq/parinfer/batch"
	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/db"
	"github.com/oxhq/parinfer/internal/config"
	"github.com/oxhq/parinfer/models"
)

func newFmtCmd(e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [paths...]",
		Short: "Re-indent Lisp files in place",
		Long: `fmt runs parinfer over files and directories, paren mode by default, and
rewrites every file whose text changes. Directories are walked recursively and
each file's dialect is chosen by its extension. Files the engine rejects are
reported and left untouched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, e, args)
		},
	}

	config.RegisterFmtFlags(cmd.Flags())
	cmd.Flags().BoolP("dry-run", "n", false, "Print diffs instead of writing files.")
	cmd.Flags().BoolP("list", "L", false, "Only list the files that would change.")
	return cmd
}

func runFmt(cmd *cobra.Command, e env, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	debugLog := debugLogger(e.stderr, cfg.Debug)

	targets, err := config.ResolveTargets(args)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	listOnly, _ := cmd.Flags().GetBool("list")
	if listOnly {
		dryRun = true
	}

	processor := batch.NewFileProcessor(cfg.Fmt.Workers, batch.DefaultAtomicConfig())
	processor.SetDebugLog(debugLog)
	defer processor.Cleanup()

	var store *db.Store
	if cfg.DB != "" {
		conn, err := db.ConnectWithToken(cfg.DB, cfg.LibsqlToken, cfg.Debug)
		if err != nil {
			return err
		}
		store = db.NewStore(conn)
		defer store.Close()
	}

	ctx := cmd.Context()
	failed := 0
	for _, target := range targets {
		op := fmtOp(cfg, target, dryRun)
		result, err := processor.FormatFiles(ctx, op)
		if err != nil {
			return err
		}
		failed += result.FilesFailed
		report(e.stdout, e.stderr, result, listOnly)

		if store != nil {
			opts, _ := json.Marshal(op.Options(target, ""))
			run := &models.Run{
				Source:        "cli",
				Root:          target,
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
				debugLog("failed to record run: %v", err)
			}
		}
	}

	if failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}

func fmtOp(cfg *config.Config, target string, dryRun bool) batch.FormatOp {
	return batch.FormatOp{
		Scope: batch.FileScope{
			Path:           target,
			Include:        cfg.Fmt.Include,
			Exclude:        cfg.Fmt.Exclude,
			MaxBytes:       cfg.Fmt.MaxBytes,
			FollowSymlinks: cfg.Fmt.FollowSymlinks,
			Language:       cfg.Language,
		},
		Mode: cfg.FmtModeValue(),
		Options: func(path, language string) core.Options {
			return cfg.Options(path)
		},
		DryRun: dryRun,
		Backup: cfg.Fmt.Backup,
	}
}

// report prints modified files (with diffs on a dry run) to stdout and
// failures to stderr.
func report(stdout, stderr io.Writer, result *batch.FormatResult, listOnly bool) {
	for _, f := range result.Files {
		switch {
		case f.Failed():
			fmt.Fprintf(stderr, "parinfer: %s: %s\n", f.FilePath, f.Error)
		case !f.Modified:
		case listOnly:
			fmt.Fprintln(stdout, f.FilePath)
		case result.DryRun:
			fmt.Fprint(stdout, f.Diff)
		default:
			fmt.Fprintf(stdout, "formatted %s\n", f.FilePath)
		}
	}
}
