package lang

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/oxhq/parinfer/core"
)

// Dialect describes the reader syntax of one Lisp family language.
type Dialect struct {
	ID                 string
	Extensions         []string
	CommentChar        string
	StringDelimiters   []string
	LispVlineSymbols   bool
	LispBlockComments  bool
	GuileBlockComments bool
	SchemeSexpComments bool
	JanetLongStrings   bool
}

// Apply copies the dialect's lexical settings onto opts.
func (d Dialect) Apply(opts *core.Options) {
	if d.CommentChar != "" {
		opts.CommentChar = d.CommentChar
	}
	if len(d.StringDelimiters) > 0 {
		opts.StringDelimiters = append([]string(nil), d.StringDelimiters...)
	}
	opts.LispVlineSymbols = d.LispVlineSymbols
	opts.LispBlockComments = d.LispBlockComments
	opts.GuileBlockComments = d.GuileBlockComments
	opts.SchemeSexpComments = d.SchemeSexpComments
	opts.JanetLongStrings = d.JanetLongStrings
}

// Options returns default options configured for the dialect.
func (d Dialect) Options() core.Options {
	opts := core.DefaultOptions()
	d.Apply(&opts)
	return opts
}

var (
	mu    sync.RWMutex
	byID  = make(map[string]Dialect)
	byExt = make(map[string]Dialect)
)

// Register stores a dialect for name and extension lookups. A later
// registration for the same ID replaces the earlier one.
func Register(d Dialect) {
	if d.ID == "" {
		return
	}
	d.Extensions = uniqueExtensions(d.Extensions)

	mu.Lock()
	defer mu.Unlock()

	byID[strings.ToLower(d.ID)] = d
	for _, ext := range d.Extensions {
		byExt[ext] = d
	}
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := byID[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// LookupByExtension returns the dialect associated with a file extension.
func LookupByExtension(ext string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := byExt[normalizeExtension(ext)]
	return d, ok
}

// Detect picks a dialect for path from its extension.
func Detect(path string) (Dialect, bool) {
	return LookupByExtension(filepath.Ext(path))
}

// Resolve returns the dialect named by name, or the one detected from path
// when name is empty. Unknown names fall back to Clojure.
func Resolve(name, path string) Dialect {
	if name != "" {
		if d, ok := Lookup(name); ok {
			return d
		}
	} else if path != "" {
		if d, ok := Detect(path); ok {
			return d
		}
	}
	d, _ := Lookup(Clojure)
	return d
}

// Dialects returns all registered dialects sorted by ID.
func Dialects() []Dialect {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Dialect, 0, len(byID))
	for _, d := range byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Extensions returns every registered extension, sorted.
func Extensions() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(byExt))
	for ext := range byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func normalizeExtension(ext string) string {
	normalized := strings.ToLower(strings.TrimSpace(ext))
	if normalized != "" && !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	return normalized
}

func uniqueExtensions(exts []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(exts))
	for _, ext := range exts {
		normalized := normalizeExtension(ext)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
