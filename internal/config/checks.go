package config

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/internal/lang"
)

// ResolveTargets returns the paths named on the command line, or the
// current directory when there are none.
func ResolveTargets(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return []string{cwd}, nil
}

// ReadAll reads the whole input stream.
func ReadAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// TextRequest builds a request for plain text input.
func TextRequest(cfg *Config, text string) core.Request {
	return core.Request{
		Mode:    cfg.ModeValue(),
		Text:    text,
		Options: cfg.Options(""),
	}
}

// KakouneRequest builds a request from the variables Kakoune exports to
// shell expansions. Kakoune columns and lines are 1-based.
func KakouneRequest(cfg *Config, getenv func(string) (string, bool)) (core.Request, error) {
	text, ok := getenv("kak_selection")
	if !ok {
		return core.Request{}, fmt.Errorf("kak_selection is not set")
	}

	language, _ := getenv("kak_opt_filetype")
	opts := lang.Resolve(language, "").Options()
	opts.CommentChar = cfg.CommentChar
	if len(cfg.StringDelimiters) > 0 {
		opts.StringDelimiters = append([]string(nil), cfg.StringDelimiters...)
	}
	opts.ForceBalance = cfg.ForceBalance
	opts.PartialResult = cfg.PartialResult
	opts.ReturnParens = cfg.ReturnParens

	var err error
	if opts.CursorX, err = kakouneIndex(getenv, "kak_opt_parinfer_cursor_char_column"); err != nil {
		return core.Request{}, err
	}
	if opts.CursorLine, err = kakouneIndex(getenv, "kak_opt_parinfer_cursor_line"); err != nil {
		return core.Request{}, err
	}
	if opts.PrevCursorX, err = kakouneIndex(getenv, "kak_opt_parinfer_previous_cursor_char_column"); err != nil {
		return core.Request{}, err
	}
	if opts.PrevCursorLine, err = kakouneIndex(getenv, "kak_opt_parinfer_previous_cursor_line"); err != nil {
		return core.Request{}, err
	}
	if prev, ok := getenv("kak_opt_parinfer_previous_text"); ok {
		opts.PrevText = &prev
	}

	return core.Request{Mode: cfg.ModeValue(), Text: text, Options: opts}, nil
}

func kakouneIndex(getenv func(string) (string, bool), name string) (*int, error) {
	s, ok := getenv(name)
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return core.Int(n - 1), nil
}
