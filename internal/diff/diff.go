// Package diff renders corrections as unified diffs.
package diff

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines shown around a hunk.
const DefaultContext = 3

// Unified returns a unified diff from original to modified, or "" when they
// are equal. An empty path labels the sides "original" and "modified".
func Unified(original, modified, path string, context int) string {
	if original == modified {
		return ""
	}
	if context < 0 {
		context = DefaultContext
	}

	fromFile, toFile := "original", "modified"
	if path != "" {
		fromFile, toFile = "a/"+path, "b/"+path
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  context,
	}

	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return fmt.Sprintf("--- %s\n+++ %s\n@@ changes @@\n%d bytes -> %d bytes\n",
			fromFile, toFile, len(original), len(modified))
	}
	return text
}

// Stat counts the lines added and removed between original and modified.
func Stat(original, modified string) (added, removed int) {
	if original == modified {
		return 0, 0
	}
	m := difflib.NewMatcher(difflib.SplitLines(original), difflib.SplitLines(modified))
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'r':
			removed += op.I2 - op.I1
			added += op.J2 - op.J1
		case 'd':
			removed += op.I2 - op.I1
		case 'i':
			added += op.J2 - op.J1
		}
	}
	return added, removed
}
