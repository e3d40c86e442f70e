package mcp

import (
	"io"
	"os"

	"github.com/oxhq/parinfer/internal/config"
)

// Config holds the MCP server configuration
type Config struct {
	// Settings supplies engine defaults, the database DSN and fmt limits.
	Settings *config.Config

	// Version is reported in serverInfo.
	Version string

	Debug bool

	// LogWriter receives debug output. Stdout carries the protocol, so this
	// defaults to stderr.
	LogWriter io.Writer
}

// DefaultConfig returns a config with an in-memory snapshot store.
func DefaultConfig() Config {
	return Config{
		Settings:  config.Default(),
		Version:   "dev",
		LogWriter: os.Stderr,
	}
}

// databaseURL returns the DSN to open. Without a configured database the
// server keeps snapshots in memory for the life of the process.
func (c Config) databaseURL() string {
	if c.Settings != nil && c.Settings.DB != "" {
		return c.Settings.DB
	}
	return ":memory:"
}

func (c Config) libsqlToken() string {
	if c.Settings == nil {
		return ""
	}
	return c.Settings.LibsqlToken
}
