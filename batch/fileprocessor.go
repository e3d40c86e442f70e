package batch

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/internal/bridge"
	"github.com/oxhq/parinfer/internal/diff"
	"github.com/oxhq/parinfer/internal/lang"
)

// FileProcessor runs the engine over files on disk.
type FileProcessor struct {
	walker       *FileWalker
	workers      int
	atomicWriter *AtomicWriter
	debugLog     func(format string, args ...any)
}

// NewFileProcessor creates a processor with the given parallelism; zero
// uses every CPU.
func NewFileProcessor(workers int, atomicConfig AtomicWriteConfig) *FileProcessor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &FileProcessor{
		walker:       NewFileWalker(),
		workers:      workers,
		atomicWriter: NewAtomicWriter(atomicConfig),
		debugLog:     func(format string, args ...any) {},
	}
}

// SetDebugLog installs a debug logger.
func (fp *FileProcessor) SetDebugLog(fn func(format string, args ...any)) {
	if fn == nil {
		fn = func(format string, args ...any) {}
	}
	fp.debugLog = fn
}

// FormatFiles corrects every file in op.Scope. Files the engine rejects are
// reported and left untouched; the others are rewritten atomically unless
// op.DryRun is set.
func (fp *FileProcessor) FormatFiles(ctx context.Context, op FormatOp) (*FormatResult, error) {
	if !op.Mode.Valid() {
		return nil, fmt.Errorf("invalid mode %q", op.Mode)
	}
	start := time.Now()

	walkResults, err := fp.walker.Walk(ctx, op.Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to walk files: %w", err)
	}

	var files []WalkResult
	for result := range walkResults {
		files = append(files, result)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scanDuration := time.Since(start)
	formatStart := time.Now()
	fp.debugLog("Discovered %d files under %s in %v", len(files), op.Scope.Path, scanDuration)

	writer := fp.atomicWriter
	if op.Backup && !writer.config.BackupOriginal {
		cfg := writer.config
		cfg.BackupOriginal = true
		writer = NewAtomicWriter(cfg)
		defer writer.Cleanup()
	}

	resultChan := make(chan FileDetail, len(files))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, fp.workers)

	for _, walkResult := range files {
		wg.Add(1)
		go func(wr WalkResult) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				resultChan <- FileDetail{FilePath: wr.Path, Language: wr.Language, Skipped: "cancelled"}
				return
			}
			resultChan <- fp.formatFile(wr, op, writer)
		}(walkResult)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	result := &FormatResult{DryRun: op.DryRun}
	for detail := range resultChan {
		result.Files = append(result.Files, detail)
		switch {
		case detail.Failed():
			result.FilesFailed++
		case detail.Skipped != "":
			result.FilesSkipped++
		case detail.Modified:
			result.FilesModified++
		}
	}
	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].FilePath < result.Files[j].FilePath
	})

	result.FilesScanned = len(files)
	result.ScanDuration = scanDuration.Milliseconds()
	result.FormatDuration = time.Since(formatStart).Milliseconds()
	fp.debugLog("Formatted %d files: %d modified, %d failed",
		result.FilesScanned, result.FilesModified, result.FilesFailed)

	return result, nil
}

func (fp *FileProcessor) formatFile(wr WalkResult, op FormatOp, writer *AtomicWriter) FileDetail {
	detail := FileDetail{
		FilePath: wr.Path,
		Language: wr.Language,
	}
	if wr.Error != nil {
		detail.Error = fmt.Sprintf("failed to stat file: %v", wr.Error)
		return detail
	}
	detail.OriginalSize = wr.Info.Size()

	if op.Scope.MaxBytes > 0 && wr.Info.Size() > op.Scope.MaxBytes {
		detail.Skipped = fmt.Sprintf("larger than %d bytes", op.Scope.MaxBytes)
		return detail
	}

	content, err := os.ReadFile(wr.Path)
	if err != nil {
		detail.Error = fmt.Sprintf("failed to read file: %v", err)
		return detail
	}
	if !utf8.Valid(content) {
		detail.EngineError = core.NewError(core.ErrUTF8)
		detail.Error = detail.EngineError.Message
		return detail
	}

	original := string(content)
	answer := bridge.Process(core.Request{
		Mode:    op.Mode,
		Text:    original,
		Options: fp.options(wr, op),
	})
	if !answer.Success {
		detail.EngineError = answer.Error
		detail.Error = fmt.Sprintf("%s (line %d, column %d)",
			answer.Error.Message, answer.Error.LineNo+1, answer.Error.X+1)
		fp.debugLog("%s: %s", wr.Path, detail.Error)
		return detail
	}

	if answer.Text == original {
		return detail
	}

	detail.Modified = true
	detail.ModifiedSize = int64(len(answer.Text))
	diffContext := op.DiffContext
	if diffContext <= 0 {
		diffContext = diff.DefaultContext
	}
	detail.Diff = diff.Unified(original, answer.Text, wr.Path, diffContext)
	detail.LinesAdded, detail.LinesRemoved = diff.Stat(original, answer.Text)

	if op.DryRun {
		return detail
	}

	backupPath, err := writer.WriteFile(wr.Path, answer.Text)
	if err != nil {
		detail.Error = fmt.Sprintf("failed to write file: %v", err)
		return detail
	}
	detail.BackupPath = backupPath
	return detail
}

func (fp *FileProcessor) options(wr WalkResult, op FormatOp) core.Options {
	if op.Options != nil {
		return op.Options(wr.Path, wr.Language)
	}
	return lang.Resolve(wr.Language, wr.Path).Options()
}

// Cleanup releases all resources and locks.
func (fp *FileProcessor) Cleanup() {
	if fp.atomicWriter != nil {
		fp.atomicWriter.Cleanup()
	}
}
