package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/internal/lang"
)

// EnvPrefix prefixes every environment override, e.g. PARINFER_MODE.
const EnvPrefix = "PARINFER"

// Config holds the application's configuration.
type Config struct {
	Mode             string   `mapstructure:"mode"`
	Language         string   `mapstructure:"language"`
	CommentChar      string   `mapstructure:"comment_char"`
	StringDelimiters []string `mapstructure:"string_delimiters"`
	ForceBalance     bool     `mapstructure:"force_balance"`
	PartialResult    bool     `mapstructure:"partial_result"`
	ReturnParens     bool     `mapstructure:"return_parens"`

	// Dialect switches left nil keep the language preset's value.
	LispVlineSymbols   *bool `mapstructure:"lisp_vline_symbols"`
	LispBlockComments  *bool `mapstructure:"lisp_block_comments"`
	GuileBlockComments *bool `mapstructure:"guile_block_comments"`
	SchemeSexpComments *bool `mapstructure:"scheme_sexp_comments"`
	JanetLongStrings   *bool `mapstructure:"janet_long_strings"`

	DB          string `mapstructure:"db"`
	LibsqlToken string `mapstructure:"libsql_auth_token"`
	Debug       bool   `mapstructure:"debug"`

	Fmt FmtConfig `mapstructure:"fmt"`
}

// FmtConfig configures `parinfer fmt`.
type FmtConfig struct {
	Mode           string   `mapstructure:"mode"`
	Include        []string `mapstructure:"include"`
	Exclude        []string `mapstructure:"exclude"`
	Workers        int      `mapstructure:"workers"`
	Backup         bool     `mapstructure:"backup"`
	MaxBytes       int64    `mapstructure:"max_bytes"`
	FollowSymlinks bool     `mapstructure:"follow_symlinks"`
}

var dialectKeys = []string{
	"lisp_vline_symbols",
	"lisp_block_comments",
	"guile_block_comments",
	"scheme_sexp_comments",
	"janet_long_strings",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Mode:             string(core.ModeSmart),
		CommentChar:      ";",
		StringDelimiters: []string{`"`},
		Fmt: FmtConfig{
			Mode:     string(core.ModeParen),
			Exclude:  []string{".git/**", "node_modules/**", "target/**"},
			MaxBytes: 5 * 1024 * 1024,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("mode", d.Mode)
	v.SetDefault("language", d.Language)
	v.SetDefault("comment_char", d.CommentChar)
	v.SetDefault("string_delimiters", d.StringDelimiters)
	v.SetDefault("force_balance", false)
	v.SetDefault("partial_result", false)
	v.SetDefault("return_parens", false)
	v.SetDefault("db", "")
	v.SetDefault("libsql_auth_token", "")
	v.SetDefault("debug", false)
	v.SetDefault("fmt.mode", d.Fmt.Mode)
	v.SetDefault("fmt.include", []string{})
	v.SetDefault("fmt.exclude", d.Fmt.Exclude)
	v.SetDefault("fmt.workers", 0)
	v.SetDefault("fmt.backup", false)
	v.SetDefault("fmt.max_bytes", d.Fmt.MaxBytes)
	v.SetDefault("fmt.follow_symlinks", false)
}

// Load layers defaults, the config file, .env and PARINFER_* variables.
// An explicit path must exist; otherwise the first of the default
// locations that exists is used, and none is fine.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, key := range dialectKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading .env: %w", err)
}

// GetConfigDir returns the directory holding the user config file.
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "parinfer"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "parinfer"), nil
}

func findConfigFile() string {
	candidates := []string{".parinfer.yaml"}
	if dir, err := GetConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.yaml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// Validate rejects values the engine cannot use.
func (c *Config) Validate() error {
	if _, err := core.ParseMode(c.Mode); err != nil {
		return err
	}
	if utf8.RuneCountInString(c.CommentChar) != 1 {
		return fmt.Errorf("comment char must be a single character, got %q", c.CommentChar)
	}
	for _, d := range c.StringDelimiters {
		if utf8.RuneCountInString(d) != 1 {
			return fmt.Errorf("string delimiter must be a single character, got %q", d)
		}
	}
	if _, err := core.ParseMode(c.Fmt.Mode); err != nil {
		return fmt.Errorf("fmt.mode: %w", err)
	}
	if c.Fmt.Workers < 0 {
		return fmt.Errorf("fmt.workers must not be negative")
	}
	return nil
}

// ModeValue returns the configured mode.
func (c *Config) ModeValue() core.Mode {
	m, err := core.ParseMode(c.Mode)
	if err != nil {
		return core.ModeSmart
	}
	return m
}

// FmtModeValue returns the mode used to rewrite files. Files are formatted
// in paren mode unless configured otherwise.
func (c *Config) FmtModeValue() core.Mode {
	m, err := core.ParseMode(c.Fmt.Mode)
	if err != nil || c.Fmt.Mode == "" {
		return core.ModeParen
	}
	return m
}

// Options builds engine options for a document at path. The language
// preset comes from Language, or from path when Language is empty, and
// explicit settings are applied on top of it.
func (c *Config) Options(path string) core.Options {
	opts := lang.Resolve(c.Language, path).Options()

	if c.CommentChar != "" {
		opts.CommentChar = c.CommentChar
	}
	if len(c.StringDelimiters) > 0 {
		opts.StringDelimiters = append([]string(nil), c.StringDelimiters...)
	}
	override(&opts.LispVlineSymbols, c.LispVlineSymbols)
	override(&opts.LispBlockComments, c.LispBlockComments)
	override(&opts.GuileBlockComments, c.GuileBlockComments)
	override(&opts.SchemeSexpComments, c.SchemeSexpComments)
	override(&opts.JanetLongStrings, c.JanetLongStrings)

	opts.ForceBalance = c.ForceBalance
	opts.PartialResult = c.PartialResult
	opts.ReturnParens = c.ReturnParens
	return opts
}

func override(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
