package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/db"
	"github.com/oxhq/parinfer/internal/bridge"
	"github.com/oxhq/parinfer/internal/config"
	"github.com/oxhq/parinfer/internal/diff"
)

func newRootCmd(e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parinfer",
		Short: "Keep Lisp parens and indentation in sync",
		Long: `parinfer reads Lisp source on stdin and writes it back with parens inferred
from indentation (indent mode), indentation inferred from parens (paren mode),
or both around the cursor (smart mode).`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, e)
		},
	}
	cmd.SetIn(e.stdin)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)

	pf := cmd.PersistentFlags()
	config.RegisterFlags(pf)
	pf.String("config", "", "Config file. (Default: $XDG_CONFIG_HOME/parinfer/config.yaml)")

	f := cmd.Flags()
	f.String("input-format", "text", "Input format: text, json or kakoune.")
	f.String("output-format", "text", "Output format: text, json or kakoune.")
	f.Int("cursor-x", 0, "Cursor column (0-based).")
	f.Int("cursor-line", 0, "Cursor line (0-based).")
	f.Int("prev-cursor-x", 0, "Cursor column before the edit.")
	f.Int("prev-cursor-line", 0, "Cursor line before the edit.")
	f.Int("selection-start-line", 0, "First line of the selection.")
	f.BoolP("diff", "D", false, "Print a unified diff instead of the corrected text.")
	f.StringP("session", "s", "", "Remember text and cursor under this key between calls (needs --db).")
	f.Bool("reset-session", false, "Forget the stored snapshot before processing.")

	cmd.AddCommand(newFmtCmd(e), newMCPCmd(e), newVersionCmd(e))
	return cmd
}

func runProcess(cmd *cobra.Command, e env) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	debugLog := debugLogger(e.stderr, cfg.Debug)
	debugLog("settings: %s", config.Describe(cfg))

	fs := cmd.Flags()
	inName, _ := fs.GetString("input-format")
	inFormat, err := config.ParseFormat(inName)
	if err != nil {
		return err
	}
	outName, _ := fs.GetString("output-format")
	outFormat, err := config.ParseFormat(outName)
	if err != nil {
		return err
	}

	req, failed, err := readRequest(cmd, e, cfg, inFormat)
	if err != nil {
		return err
	}
	if failed != nil {
		return &exitError{code: config.PrintAnswer(e.stdout, e.stderr, *failed, outFormat)}
	}

	ctx := cmd.Context()

	var store *db.Store
	session, _ := fs.GetString("session")
	if session != "" {
		if cfg.DB == "" {
			return fmt.Errorf("--session needs a database; set --db or PARINFER_DB")
		}
		conn, err := db.ConnectWithToken(cfg.DB, cfg.LibsqlToken, cfg.Debug)
		if err != nil {
			return err
		}
		store = db.NewStore(conn)
		defer store.Close()

		if reset, _ := fs.GetBool("reset-session"); reset {
			if err := store.DeleteSnapshot(ctx, session); err != nil {
				return err
			}
		}
		applied, err := store.PrepareRequest(ctx, session, &req)
		if err != nil {
			return err
		}
		debugLog("session %s: stored snapshot applied=%t", session, applied)
	}

	answer := bridge.Process(req)
	debugLog("mode=%s success=%t", req.Mode, answer.Success)

	if store != nil {
		if err := store.RememberAnswer(ctx, session, cfg.Language, req, answer); err != nil {
			return err
		}
	}

	if showDiff, _ := fs.GetBool("diff"); showDiff && answer.Success {
		fmt.Fprint(e.stdout, diff.Unified(req.Text, answer.Text, "", diff.DefaultContext))
		return nil
	}

	if code := config.PrintAnswer(e.stdout, e.stderr, answer, outFormat); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// readRequest builds the request for inFormat. A JSON document that cannot
// be decoded yields a failed answer rather than an error, so it is reported
// in the requested output format.
func readRequest(cmd *cobra.Command, e env, cfg *config.Config, inFormat config.Format) (core.Request, *core.Answer, error) {
	switch inFormat {
	case config.FormatKakoune:
		req, err := config.KakouneRequest(cfg, e.getenv)
		return req, nil, err

	case config.FormatJSON:
		text, err := config.ReadAll(e.stdin)
		if err != nil {
			return core.Request{}, nil, err
		}
		req, decodeErr := bridge.Decode([]byte(text))
		if decodeErr != nil {
			answer := core.AnswerFromError(decodeErr)
			return core.Request{}, &answer, nil
		}
		return req, nil, nil
	}

	text, err := config.ReadAll(e.stdin)
	if err != nil {
		return core.Request{}, nil, err
	}
	if !utf8.ValidString(text) {
		answer := core.AnswerFromError(core.NewError(core.ErrUTF8))
		return core.Request{}, &answer, nil
	}
	req := config.TextRequest(cfg, text)

	fs := cmd.Flags()
	cursorFlags := []struct {
		name string
		dst  **int
	}{
		{"cursor-x", &req.Options.CursorX},
		{"cursor-line", &req.Options.CursorLine},
		{"prev-cursor-x", &req.Options.PrevCursorX},
		{"prev-cursor-line", &req.Options.PrevCursorLine},
		{"selection-start-line", &req.Options.SelectionStartLine},
	}
	for _, cf := range cursorFlags {
		if !fs.Changed(cf.name) {
			continue
		}
		v, _ := fs.GetInt(cf.name)
		if v < 0 {
			return core.Request{}, nil, fmt.Errorf("--%s must not be negative", cf.name)
		}
		*cf.dst = core.Int(v)
	}
	return req, nil, nil
}
