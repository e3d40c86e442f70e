package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/parinfer/internal/lang"
)

// FileWalker discovers Lisp sources with a parallel directory traversal.
type FileWalker struct {
	workers    int
	bufferSize int
}

// NewFileWalker creates a walker sized for I/O bound work.
func NewFileWalker() *FileWalker {
	return &FileWalker{
		workers:    runtime.NumCPU() * 2,
		bufferSize: 256,
	}
}

// WalkResult represents a discovered file.
type WalkResult struct {
	Path     string
	Info     fs.FileInfo
	Language string
	Error    error
}

// Walk streams the files selected by scope. A scope whose Path is a file
// yields just that file, regardless of the include patterns.
func (fw *FileWalker) Walk(ctx context.Context, scope FileScope) (<-chan WalkResult, error) {
	info, err := fw.validateScope(scope)
	if err != nil {
		return nil, err
	}

	results := make(chan WalkResult, fw.bufferSize)

	if !info.IsDir() {
		go func() {
			defer close(results)
			select {
			case <-ctx.Done():
			case results <- fw.processFile(scope.Path, scope):
			}
		}()
		return results, nil
	}

	paths := make(chan string, fw.bufferSize)

	var wg sync.WaitGroup
	for range fw.workers {
		wg.Add(1)
		go fw.worker(ctx, paths, results, scope, &wg)
	}

	go func() {
		defer close(paths)
		processed := 0
		var visited map[string]struct{}
		if scope.FollowSymlinks {
			visited = make(map[string]struct{})
			if resolved, err := filepath.EvalSymlinks(scope.Path); err == nil {
				visited[resolved] = struct{}{}
			} else {
				visited[scope.Path] = struct{}{}
			}
		}
		fw.scanDirectory(ctx, scope.Path, scope, paths, 0, &processed, visited)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

func (fw *FileWalker) worker(
	ctx context.Context,
	paths <-chan string,
	results chan<- WalkResult,
	scope FileScope,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}

			result := fw.processFile(path, scope)

			select {
			case <-ctx.Done():
				return
			case results <- result:
			}
		}
	}
}

// scanDirectory recursively sends the paths of matching files.
func (fw *FileWalker) scanDirectory(
	ctx context.Context,
	dirPath string,
	scope FileScope,
	paths chan<- string,
	depth int,
	processed *int,
	visited map[string]struct{},
) {
	if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
		return
	}
	select {
	case <-ctx.Done():
		return
	default:
	}

	if scope.MaxDepth > 0 && depth > scope.MaxDepth {
		return
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		rel := relativePath(scope.Path, fullPath)

		if fw.isExcluded(rel, entry.IsDir(), scope.Exclude) {
			continue
		}

		if entry.Type()&os.ModeSymlink != 0 {
			if !scope.FollowSymlinks {
				continue
			}
			resolvedPath, err := filepath.EvalSymlinks(fullPath)
			if err != nil || resolvedPath == "" {
				continue
			}
			info, err := os.Stat(resolvedPath)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if _, seen := visited[resolvedPath]; seen {
					continue
				}
				visited[resolvedPath] = struct{}{}
				fw.scanDirectory(ctx, fullPath, scope, paths, depth+1, processed, visited)
				continue
			}
		}

		if entry.IsDir() {
			if visited != nil {
				realPath := fullPath
				if resolved, err := filepath.EvalSymlinks(fullPath); err == nil && resolved != "" {
					realPath = resolved
				}
				if _, seen := visited[realPath]; seen {
					continue
				}
				visited[realPath] = struct{}{}
			}
			fw.scanDirectory(ctx, fullPath, scope, paths, depth+1, processed, visited)
			continue
		}

		if fw.isIncluded(rel, scope) {
			if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
				return
			}
			select {
			case <-ctx.Done():
				return
			case paths <- fullPath:
				*processed++
			}
		}
	}
}

func (fw *FileWalker) processFile(path string, scope FileScope) WalkResult {
	info, err := os.Stat(path)
	if err != nil {
		return WalkResult{Path: path, Error: err}
	}

	language := scope.Language
	if language == "" {
		language = lang.Resolve("", path).ID
	}

	return WalkResult{
		Path:     path,
		Info:     info,
		Language: language,
	}
}

// isIncluded matches the include patterns, or with none, any extension a
// dialect is registered for.
func (fw *FileWalker) isIncluded(rel string, scope FileScope) bool {
	if len(scope.Include) == 0 {
		_, ok := lang.Detect(rel)
		return ok
	}
	for _, pattern := range scope.Include {
		if matchPattern(rel, pattern) {
			return true
		}
	}
	return false
}

// isExcluded matches files and directories against the exclude patterns.
// A directory also matches "dir/**" so the walk never descends into it.
func (fw *FileWalker) isExcluded(rel string, isDir bool, patterns []string) bool {
	for _, pattern := range patterns {
		if matchPattern(rel, pattern) {
			return true
		}
		if isDir && matchPattern(rel+"/", pattern) {
			return true
		}
	}
	return false
}

// matchPattern matches a slash-separated relative path; patterns without a
// separator also match the base name.
func matchPattern(rel, pattern string) bool {
	if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
		return true
	}
	if !strings.Contains(pattern, "/") {
		base := path.Base(strings.TrimSuffix(rel, "/"))
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (fw *FileWalker) validateScope(scope FileScope) (fs.FileInfo, error) {
	if scope.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	info, err := os.Stat(scope.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot access path %s: %w", scope.Path, err)
	}
	return info, nil
}
