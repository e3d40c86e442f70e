// Package bridge adapts the engine to hosts that exchange JSON documents,
// such as editor plugins, the CLI's json format and the MCP server.
package bridge

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/oxhq/parinfer/core"
)

// Decode validates and parses a JSON request.
func Decode(input []byte) (core.Request, *core.Error) {
	if i := invalidUTF8(input); i >= 0 {
		return core.Request{}, core.Errorf(core.ErrUTF8,
			"Error decoding UTF8: invalid utf-8 sequence at byte %d", i)
	}

	var req core.Request
	if err := json.Unmarshal(input, &req); err != nil {
		return core.Request{}, jsonError(err)
	}
	if err := Validate(&req.Options); err != nil {
		return core.Request{}, jsonError(err)
	}
	return req, nil
}

// Process runs req, turning a panic into a failed answer.
func Process(req core.Request) (answer core.Answer) {
	defer func() {
		if r := recover(); r != nil {
			answer = core.AnswerFromError(core.NewError(core.ErrPanic))
			answer.Text = req.Text
		}
	}()
	return process(req)
}

var process = core.Process

// Encode serializes answer. Answers always marshal, so a failure here is
// reported as a panic answer.
func Encode(answer core.Answer) []byte {
	out, err := json.Marshal(answer)
	if err != nil {
		out, _ = json.Marshal(core.AnswerFromError(core.NewError(core.ErrPanic)))
	}
	return out
}

func jsonError(err error) *core.Error {
	return core.Errorf(core.ErrJSON, "Error parsing JSON: %v", err)
}

// Validate rejects options the engine cannot lex with.
func Validate(opts *core.Options) error {
	if utf8.RuneCountInString(opts.CommentChar) != 1 {
		return fmt.Errorf("commentChar must be a single character, got %q", opts.CommentChar)
	}
	for _, d := range opts.StringDelimiters {
		if d == "" {
			return fmt.Errorf("stringDelimiters must not contain empty strings")
		}
	}
	return nil
}

func invalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
