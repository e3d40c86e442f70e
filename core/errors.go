package core

import "fmt"

// ErrorName identifies the kind of failure reported in an Answer.
type ErrorName string

const (
	ErrQuoteDanger         ErrorName = "quote-danger"
	ErrEolBackslash        ErrorName = "eol-backslash"
	ErrUnclosedQuote       ErrorName = "unclosed-quote"
	ErrUnclosedParen       ErrorName = "unclosed-paren"
	ErrUnmatchedCloseParen ErrorName = "unmatched-close-paren"
	ErrUnmatchedOpenParen  ErrorName = "unmatched-open-paren"
	ErrLeadingCloseParen   ErrorName = "leading-close-paren"

	// Reported by host adapters, never by the scanner itself.
	ErrUTF8  ErrorName = "utf8-error"
	ErrJSON  ErrorName = "json-error"
	ErrPanic ErrorName = "panic"
)

var errorMessages = map[ErrorName]string{
	ErrQuoteDanger:         "Quotes must balanced inside comment blocks.",
	ErrEolBackslash:        "Line cannot end in a hanging backslash.",
	ErrUnclosedQuote:       "String is missing a closing quote.",
	ErrUnclosedParen:       "Unclosed open-paren.",
	ErrUnmatchedCloseParen: "Unmatched close-paren.",
	ErrUnmatchedOpenParen:  "Unmatched open-paren.",
	ErrLeadingCloseParen:   "Line cannot lead with a close-paren.",
	ErrUTF8:                "UTF8 encoded incorrectly.",
	ErrJSON:                "JSON encoded incorrectly.",
	ErrPanic:               "Internal error (please report!)",
}

// Message returns the canonical human readable text for name.
func (n ErrorName) Message() string {
	if msg, ok := errorMessages[n]; ok {
		return msg
	}
	return string(n)
}

// Error describes why a request failed. X and LineNo follow the caller's
// choice of coordinates: output coordinates with PartialResult, input
// coordinates otherwise. InputX and InputLineNo always point at the scan
// position in the input text when the failure was raised.
type Error struct {
	Name        ErrorName `json:"name"`
	Message     string    `json:"message"`
	X           int       `json:"x"`
	LineNo      int       `json:"lineNo"`
	InputX      int       `json:"inputX"`
	InputLineNo int       `json:"inputLineNo"`
	Extra       *Error    `json:"extra,omitempty"`
}

// NewError returns an error of kind name with its canonical message.
func NewError(name ErrorName) *Error {
	return &Error{Name: name, Message: name.Message()}
}

// Errorf returns an error of kind name with a custom message.
func Errorf(name ErrorName, format string, args ...any) *Error {
	return &Error{Name: name, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}

// restartSignal aborts an indent-mode scan so the driver can rerun it in
// paren mode.
type restartSignal struct{}

func (restartSignal) Error() string { return "restart requested" }

var errRestart error = restartSignal{}
