package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

type dialectFlag struct {
	name  string
	usage string
	field func(*Config) **bool
}

var dialectFlags = []dialectFlag{
	{"lisp-vline-symbols", "Recognize |symbols with spaces|.", func(c *Config) **bool { return &c.LispVlineSymbols }},
	{"lisp-block-comments", "Recognize #| block comments |#.", func(c *Config) **bool { return &c.LispBlockComments }},
	{"guile-block-comments", "Recognize #! block comments !#.", func(c *Config) **bool { return &c.GuileBlockComments }},
	{"scheme-sexp-comments", "Recognize #; datum comments.", func(c *Config) **bool { return &c.SchemeSexpComments }},
	{"janet-long-strings", "Recognize ``long strings``.", func(c *Config) **bool { return &c.JanetLongStrings }},
}

// RegisterFlags defines the flags that override engine settings.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("mode", "m", "", "Mode: indent (i), paren (p) or smart (s). (Default: smart)")
	fs.StringP(
		"language",
		"l",
		"",
		"Lisp dialect: clojure, janet, lisp, racket, guile, scheme, hy, fennel. Inferred from file extensions if omitted.",
	)
	fs.String("comment-char", "", "Line comment character. (Default: ;)")
	fs.StringArray("string-delimiters", nil, "String delimiter character; repeat for several. (Default: \")")
	for _, df := range dialectFlags {
		fs.Bool(df.name, false, df.usage)
		fs.Bool("no-"+df.name, false, "Disable --"+df.name+".")
	}
	fs.Bool("force-balance", false, "Balance parens aggressively, dropping unmatched close-parens.")
	fs.Bool("partial-result", false, "Return the partially corrected text when an error occurs.")
	fs.Bool("return-parens", false, "Include the paren tree in JSON output.")
	fs.String("db", "", "Snapshot database: a SQLite file path or a libsql:// URL.")
	fs.Bool("debug", false, "Write debug logs to stderr.")
}

// RegisterFmtFlags defines the flags of the fmt command.
func RegisterFmtFlags(fs *pflag.FlagSet) {
	fs.StringSlice("include", nil, "Include file patterns (glob).")
	fs.StringSlice("exclude", nil, "Exclude file patterns (glob).")
	fs.IntP(
		"workers",
		"w",
		0,
		"Number of concurrent workers, 0 means use all available CPUs. (Default: 0).",
	)
	fs.Bool("backup", false, "Keep a .bak copy of every rewritten file.")
	fs.Int64("max-bytes", 0, "Skip files larger than this. (Default: 5MB)")
	fs.Bool("follow-symlinks", false, "Follow symbolic links during directory traversal.")
}

// ApplyFlags copies every flag the user set onto cfg. Unset flags leave the
// file and environment values in place.
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	if fs.Changed("mode") {
		cfg.Mode, _ = fs.GetString("mode")
	}
	if fs.Changed("language") {
		cfg.Language, _ = fs.GetString("language")
	}
	if fs.Changed("comment-char") {
		cfg.CommentChar, _ = fs.GetString("comment-char")
	}
	if fs.Changed("string-delimiters") {
		cfg.StringDelimiters, _ = fs.GetStringArray("string-delimiters")
	}

	for _, df := range dialectFlags {
		yes, no := fs.Changed(df.name), fs.Changed("no-"+df.name)
		if yes && no {
			return fmt.Errorf("--%s and --no-%s are mutually exclusive", df.name, df.name)
		}
		if yes || no {
			v := yes
			*df.field(cfg) = &v
		}
	}

	if fs.Changed("force-balance") {
		cfg.ForceBalance, _ = fs.GetBool("force-balance")
	}
	if fs.Changed("partial-result") {
		cfg.PartialResult, _ = fs.GetBool("partial-result")
	}
	if fs.Changed("return-parens") {
		cfg.ReturnParens, _ = fs.GetBool("return-parens")
	}
	if fs.Changed("db") {
		cfg.DB, _ = fs.GetString("db")
	}
	if fs.Changed("debug") {
		cfg.Debug, _ = fs.GetBool("debug")
	}

	if fs.Lookup("include") != nil {
		applyFmtFlags(fs, &cfg.Fmt)
	}
	return cfg.Validate()
}

// applyFmtFlags runs for the fmt command, where --mode picks the mode
// files are rewritten with.
func applyFmtFlags(fs *pflag.FlagSet, f *FmtConfig) {
	if fs.Changed("mode") {
		f.Mode, _ = fs.GetString("mode")
	}
	if fs.Changed("include") {
		f.Include, _ = fs.GetStringSlice("include")
	}
	if fs.Changed("exclude") {
		f.Exclude, _ = fs.GetStringSlice("exclude")
	}
	if fs.Changed("workers") {
		f.Workers, _ = fs.GetInt("workers")
	}
	if fs.Changed("backup") {
		f.Backup, _ = fs.GetBool("backup")
	}
	if fs.Changed("max-bytes") {
		f.MaxBytes, _ = fs.GetInt64("max-bytes")
	}
	if fs.Changed("follow-symlinks") {
		f.FollowSymlinks, _ = fs.GetBool("follow-symlinks")
	}
}

// Describe renders the effective engine settings for --debug output.
func Describe(cfg *Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode=%s language=%q comment_char=%q", cfg.ModeValue(), cfg.Language, cfg.CommentChar)
	fmt.Fprintf(&b, " string_delimiters=%q", cfg.StringDelimiters)
	for _, df := range dialectFlags {
		if v := *df.field(cfg); v != nil {
			fmt.Fprintf(&b, " %s=%t", df.name, *v)
		}
	}
	return b.String()
}
