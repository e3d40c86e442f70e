package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode selects how the engine corrects a buffer.
type Mode string

const (
	// ModeIndent rewrites close-paren trails to follow indentation.
	ModeIndent Mode = "indent"
	// ModeParen rewrites indentation to follow the paren structure.
	ModeParen Mode = "paren"
	// ModeSmart is indent mode that defers decisions around the cursor.
	ModeSmart Mode = "smart"
)

// Valid reports whether m names one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeIndent, ModeParen, ModeSmart:
		return true
	}
	return false
}

// ParseMode accepts a mode name or its one-letter abbreviation.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i", "indent":
		return ModeIndent, nil
	case "p", "paren":
		return ModeParen, nil
	case "s", "smart", "":
		return ModeSmart, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Change is one edit the user made since the previous call, expressed
// against the previous text.
type Change struct {
	X       int    `json:"x"`
	LineNo  int    `json:"lineNo"`
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
}

// Options carries cursor, edit and dialect information for one request.
type Options struct {
	CursorX            *int     `json:"cursorX,omitempty"`
	CursorLine         *int     `json:"cursorLine,omitempty"`
	PrevCursorX        *int     `json:"prevCursorX,omitempty"`
	PrevCursorLine     *int     `json:"prevCursorLine,omitempty"`
	PrevText           *string  `json:"prevText,omitempty"`
	SelectionStartLine *int     `json:"selectionStartLine,omitempty"`
	Changes            []Change `json:"changes"`
	PartialResult      bool     `json:"partialResult"`
	ForceBalance       bool     `json:"forceBalance"`
	ReturnParens       bool     `json:"returnParens"`
	CommentChar        string   `json:"commentChar"`
	StringDelimiters   []string `json:"stringDelimiters"`
	LispVlineSymbols   bool     `json:"lispVlineSymbols"`
	LispBlockComments  bool     `json:"lispBlockComments"`
	GuileBlockComments bool     `json:"guileBlockComments"`
	SchemeSexpComments bool     `json:"schemeSexpComments"`
	JanetLongStrings   bool     `json:"janetLongStrings"`
}

// DefaultOptions returns options with no cursor, a ";" comment character
// and double-quoted strings.
func DefaultOptions() Options {
	return Options{
		Changes:          []Change{},
		CommentChar:      ";",
		StringDelimiters: []string{`"`},
	}
}

// UnmarshalJSON fills absent fields with DefaultOptions values.
func (o *Options) UnmarshalJSON(data []byte) error {
	type plain Options
	p := plain(DefaultOptions())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Options(p)
	return nil
}

// Request is the unit of work handed to Process.
type Request struct {
	Mode    Mode    `json:"mode"`
	Text    string  `json:"text"`
	Options Options `json:"options"`
}

// UnmarshalJSON defaults the options when the payload omits them.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	p := plain{Options: DefaultOptions()}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Request(p)
	return nil
}

// TabStop marks an enclosing open-paren on the cursor line.
type TabStop struct {
	Ch     string `json:"ch"`
	X      int    `json:"x"`
	LineNo int    `json:"lineNo"`
	ArgX   *int   `json:"argX"`
}

// ParenTrail is the span of close-parens ending a line.
type ParenTrail struct {
	LineNo int `json:"lineNo"`
	StartX int `json:"startX"`
	EndX   int `json:"endX"`
}

// Closer locates the close-paren matching a Paren.
type Closer struct {
	LineNo int         `json:"lineNo"`
	X      int         `json:"x"`
	Ch     string      `json:"ch"`
	Trail  *ParenTrail `json:"trail"`
}

// Paren is a node of the paren tree returned when Options.ReturnParens is set.
type Paren struct {
	LineNo         int      `json:"lineNo"`
	Ch             string   `json:"ch"`
	X              int      `json:"x"`
	IndentDelta    int      `json:"indentDelta"`
	MaxChildIndent *int     `json:"maxChildIndent"`
	ArgX           *int     `json:"argX"`
	InputLineNo    int      `json:"inputLineNo"`
	InputX         int      `json:"inputX"`
	Closer         *Closer  `json:"closer,omitempty"`
	Children       []*Paren `json:"children"`
}

// Answer is the result of processing one request.
type Answer struct {
	Text        string       `json:"text"`
	Success     bool         `json:"success"`
	Error       *Error       `json:"error"`
	CursorX     *int         `json:"cursorX"`
	CursorLine  *int         `json:"cursorLine"`
	TabStops    []TabStop    `json:"tabStops"`
	ParenTrails []ParenTrail `json:"parenTrails"`
	Parens      []*Paren     `json:"parens"`
}

// AnswerFromError builds a failed answer that carries only err.
func AnswerFromError(err *Error) Answer {
	return Answer{
		Success:     false,
		Error:       err,
		TabStops:    []TabStop{},
		ParenTrails: []ParenTrail{},
		Parens:      []*Paren{},
	}
}

// Int returns a pointer to v, for filling optional option fields.
func Int(v int) *int {
	return &v
}

const none = -1

func optional(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

func valueOf(p *int) int {
	if p == nil || *p < 0 {
		return none
	}
	return *p
}
