package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/parinfer/core"
)

// isolate points the config lookup at an empty directory so the tests
// never see a real user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_DefaultValues(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	if cfg.Mode != "smart" {
		t.Errorf("Expected Mode 'smart', got '%s'", cfg.Mode)
	}
	if cfg.CommentChar != ";" {
		t.Errorf("Expected CommentChar ';', got '%s'", cfg.CommentChar)
	}
	assert.Equal(t, []string{`"`}, cfg.StringDelimiters)
	assert.Nil(t, cfg.LispBlockComments)
	assert.Equal(t, int64(5*1024*1024), cfg.Fmt.MaxBytes)
	assert.Equal(t, []string{".git/**", "node_modules/**", "target/**"}, cfg.Fmt.Exclude)
	assert.Empty(t, cfg.DB)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "parinfer", "config.yaml"), `
mode: paren
language: racket
lisp_block_comments: false
fmt:
  workers: 3
  backup: true
  include: ["src/**"]
`)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "paren", cfg.Mode)
	assert.Equal(t, core.ModeParen, cfg.ModeValue())
	assert.Equal(t, "racket", cfg.Language)
	require.NotNil(t, cfg.LispBlockComments)
	assert.False(t, *cfg.LispBlockComments)
	assert.Equal(t, 3, cfg.Fmt.Workers)
	assert.True(t, cfg.Fmt.Backup)
	assert.Equal(t, []string{"src/**"}, cfg.Fmt.Include)

	opts := cfg.Options("")
	assert.True(t, opts.SchemeSexpComments, "racket preset")
	assert.False(t, opts.LispBlockComments, "explicit override beats the preset")
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, "mode = \"indent\"\ncomment_char = \"#\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, core.ModeIndent, cfg.ModeValue())
	assert.Equal(t, "#", cfg.CommentChar)
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("PARINFER_MODE", "i")
	t.Setenv("PARINFER_DEBUG", "true")
	t.Setenv("PARINFER_JANET_LONG_STRINGS", "true")
	t.Setenv("PARINFER_FMT_WORKERS", "7")
	t.Setenv("PARINFER_DB", "file.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, core.ModeIndent, cfg.ModeValue())
	assert.True(t, cfg.Debug)
	require.NotNil(t, cfg.JanetLongStrings)
	assert.True(t, *cfg.JanetLongStrings)
	assert.Equal(t, 7, cfg.Fmt.Workers)
	assert.Equal(t, "file.db", cfg.DB)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad mode", map[string]string{"PARINFER_MODE": "sideways"}},
		{"long comment char", map[string]string{"PARINFER_COMMENT_CHAR": ";;"}},
		{"negative workers", map[string]string{"PARINFER_FMT_WORKERS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Errorf("expected an error for %s", tt.name)
			}
		})
	}
}

func TestOptions_DetectsLanguageFromPath(t *testing.T) {
	cfg := Default()

	opts := cfg.Options("lib/thing.scm")
	assert.True(t, opts.SchemeSexpComments)
	assert.True(t, opts.LispVlineSymbols)

	opts = cfg.Options("src/core.clj")
	assert.False(t, opts.SchemeSexpComments)
	assert.Equal(t, ";", opts.CommentChar)

	cfg.Language = "janet"
	opts = cfg.Options("lib/thing.scm")
	assert.True(t, opts.JanetLongStrings, "an explicit language wins over the extension")
	assert.False(t, opts.SchemeSexpComments)
}

func TestOptions_CopiesEngineSwitches(t *testing.T) {
	cfg := Default()
	cfg.ForceBalance = true
	cfg.PartialResult = true
	cfg.ReturnParens = true
	cfg.StringDelimiters = []string{`"`, "'"}

	opts := cfg.Options("")
	assert.True(t, opts.ForceBalance)
	assert.True(t, opts.PartialResult)
	assert.True(t, opts.ReturnParens)
	assert.Equal(t, []string{`"`, "'"}, opts.StringDelimiters)

	opts.StringDelimiters[1] = "x"
	assert.Equal(t, "'", cfg.StringDelimiters[1], "options must not alias the config")
}
