package mcp

import (
	"fmt"

	"github.com/google/uuid"
)

// generateSessionID creates a unique session identifier
func generateSessionID() string {
	return fmt.Sprintf("ses_%s", uuid.NewString())
}

// truncate shortens s for debug output.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
