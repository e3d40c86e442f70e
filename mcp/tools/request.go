package tools

import (
	"encoding/json"
	"fmt"

	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/internal/bridge"
	"github.com/oxhq/parinfer/internal/config"
	"github.com/oxhq/parinfer/internal/lang"
	"github.com/oxhq/parinfer/mcp/types"
)

// requestArgs are the arguments shared by the tools that run the engine.
// Options, when present, replaces the dialect preset entirely; the loose
// fields are applied on top of whichever options result.
type requestArgs struct {
	Mode     string          `json:"mode,omitempty"`
	Text     *string         `json:"text"`
	Language string          `json:"language,omitempty"`
	Path     string          `json:"path,omitempty"`
	Options  json.RawMessage `json:"options,omitempty"`

	CursorX            *int          `json:"cursorX,omitempty"`
	CursorLine         *int          `json:"cursorLine,omitempty"`
	PrevCursorX        *int          `json:"prevCursorX,omitempty"`
	PrevCursorLine     *int          `json:"prevCursorLine,omitempty"`
	SelectionStartLine *int          `json:"selectionStartLine,omitempty"`
	PrevText           *string       `json:"prevText,omitempty"`
	Changes            []core.Change `json:"changes,omitempty"`
	ForceBalance       *bool         `json:"forceBalance,omitempty"`
	PartialResult      *bool         `json:"partialResult,omitempty"`
	ReturnParens       *bool         `json:"returnParens,omitempty"`
}

// buildRequest turns args into an engine request, using settings for
// whatever the caller left out.
func buildRequest(settings *config.Config, args *requestArgs, defaultMode core.Mode) (core.Request, error) {
	if args.Text == nil {
		return core.Request{}, types.NewMCPError(types.InvalidParams, "text is required", nil)
	}

	mode := defaultMode
	if args.Mode != "" {
		m, err := core.ParseMode(args.Mode)
		if err != nil {
			return core.Request{}, types.WrapError(types.InvalidParams, "Invalid mode", err)
		}
		mode = m
	}

	if args.Language != "" {
		if _, ok := lang.Lookup(args.Language); !ok {
			return core.Request{}, types.NewMCPError(types.LanguageNotFound,
				fmt.Sprintf("Unknown language: %s", args.Language),
				map[string]any{"requested": args.Language, "supported": dialectNames()})
		}
	}

	var opts core.Options
	if len(args.Options) > 0 && string(args.Options) != "null" {
		if err := json.Unmarshal(args.Options, &opts); err != nil {
			return core.Request{}, types.WrapError(types.InvalidParams, "Invalid options", err)
		}
	} else {
		cfg := *settings
		if args.Language != "" {
			cfg.Language = args.Language
		}
		opts = cfg.Options(args.Path)
	}

	setInt(&opts.CursorX, args.CursorX)
	setInt(&opts.CursorLine, args.CursorLine)
	setInt(&opts.PrevCursorX, args.PrevCursorX)
	setInt(&opts.PrevCursorLine, args.PrevCursorLine)
	setInt(&opts.SelectionStartLine, args.SelectionStartLine)
	if args.PrevText != nil {
		opts.PrevText = args.PrevText
	}
	if args.Changes != nil {
		opts.Changes = args.Changes
	}
	setBool(&opts.ForceBalance, args.ForceBalance)
	setBool(&opts.PartialResult, args.PartialResult)
	setBool(&opts.ReturnParens, args.ReturnParens)

	if err := bridge.Validate(&opts); err != nil {
		return core.Request{}, types.WrapError(types.InvalidParams, "Invalid options", err)
	}

	return core.Request{Mode: mode, Text: *args.Text, Options: opts}, nil
}

// languageOf names the dialect a request resolves to.
func languageOf(settings *config.Config, args *requestArgs) string {
	name := args.Language
	if name == "" {
		name = settings.Language
	}
	return lang.Resolve(name, args.Path).ID
}

func setInt(dst **int, v *int) {
	if v != nil {
		x := *v
		*dst = &x
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func dialectNames() []string {
	var names []string
	for _, d := range lang.Dialects() {
		names = append(names, d.ID)
	}
	return names
}

// describeError renders an engine error the way editors show it.
func describeError(err *core.Error) string {
	if err == nil {
		return "unknown error"
	}
	return fmt.Sprintf("%s: %s (line %d, column %d)", err.Name, err.Message, err.LineNo+1, err.X+1)
}
