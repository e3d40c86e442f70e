package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/oxhq/parinfer/core"
)

// Format names an input or output encoding of the CLI.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatKakoune Format = "kakoune"
)

// ParseFormat accepts text, json or kakoune. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatKakoune:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// PrintAnswer writes answer to stdout, or its error to stderr, in format
// and returns the process exit code.
func PrintAnswer(stdout, stderr io.Writer, answer core.Answer, format Format) int {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(stdout)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(answer); err != nil {
			fmt.Fprintf(stderr, "parinfer: unable to produce JSON: %v\n", err)
			return 1
		}
		if !answer.Success {
			return 1
		}
		return 0

	case FormatKakoune:
		// Kakoune evaluates the output as commands, so failures are reported
		// through `fail` and the exit code stays 0.
		if answer.Success {
			fmt.Fprintf(stdout, "exec '%%' ; set-register '\"' '%s' ; exec -draft '\\R'", kakouneEscape(answer.Text))
		} else {
			fmt.Fprintf(stdout, "fail '%s'\n", kakouneEscape(errorMessage(answer)))
		}
		return 0
	}

	if !answer.Success {
		fmt.Fprintf(stderr, "parinfer: %s\n", errorMessage(answer))
		return 1
	}
	fmt.Fprint(stdout, answer.Text)
	return 0
}

// PrintFatal reports an error that prevented processing altogether.
func PrintFatal(w io.Writer, err error) {
	fmt.Fprintf(w, "parinfer: %v\n", err)
}

func errorMessage(answer core.Answer) string {
	if answer.Error == nil {
		return "unknown error."
	}
	return answer.Error.Message
}

func kakouneEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
