package core

import "slices"

type contextKind int

const (
	inCode contextKind = iota
	inComment
	inString
	inLispReaderSyntax
	inLispBlockCommentPre
	inLispBlockComment
	inLispBlockCommentPost
	inGuileBlockComment
	inGuileBlockCommentPost
	inJanetLongStringPre
	inJanetLongString
)

// lexContext is the lexical position of the scanner. Only the fields that
// belong to kind are meaningful.
type lexContext struct {
	kind          contextKind
	delim         string
	depth         int
	openDelimLen  int
	closeDelimLen int
}

var codeContext = lexContext{kind: inCode}

func (c lexContext) isCode() bool {
	return c.kind == inCode || c.kind == inLispReaderSyntax
}

func (c lexContext) isComment() bool {
	return c.kind == inComment
}

// isStringish reports contexts that can span lines and must be closed
// before the end of the buffer.
func (c lexContext) isStringish() bool {
	switch c.kind {
	case inString,
		inLispBlockCommentPre, inLispBlockComment, inLispBlockCommentPost,
		inGuileBlockComment, inGuileBlockCommentPost,
		inJanetLongStringPre, inJanetLongString:
		return true
	}
	return false
}

// lexEvent is the side effect a classified character has on the scanner.
type lexEvent int

const (
	evNone lexEvent = iota
	evCommentStart
	evStringStart
	evCommentQuote
	evOpenParen
	evCloseParen
	evTab
)

// dialect holds the lexical configuration of one request.
type dialect struct {
	commentChar        string
	stringDelimiters   []string
	vlineSymbols       bool
	readerSyntax       bool
	lispBlockComments  bool
	guileBlockComments bool
	schemeSexpComments bool
	janetLongStrings   bool
}

func newDialect(opts *Options) dialect {
	d := dialect{
		commentChar:        opts.CommentChar,
		stringDelimiters:   opts.StringDelimiters,
		vlineSymbols:       opts.LispVlineSymbols,
		lispBlockComments:  opts.LispBlockComments,
		guileBlockComments: opts.GuileBlockComments,
		schemeSexpComments: opts.SchemeSexpComments,
		janetLongStrings:   opts.JanetLongStrings,
	}
	if d.commentChar == "" {
		d.commentChar = ";"
	}
	if d.stringDelimiters == nil {
		d.stringDelimiters = []string{`"`}
	}
	d.readerSyntax = d.lispBlockComments || d.guileBlockComments || d.schemeSexpComments
	return d
}

func (d *dialect) isStringDelimiter(ch string) bool {
	return slices.Contains(d.stringDelimiters, ch)
}

// classify computes the context that follows ch in ctx. Escapes and
// newlines are handled by the scanner before classification.
func (d *dialect) classify(ctx lexContext, ch string) (lexContext, lexEvent) {
	switch ctx.kind {
	case inCode:
		switch {
		case ch == d.commentChar:
			return lexContext{kind: inComment}, evCommentStart
		case d.isStringDelimiter(ch):
			return lexContext{kind: inString, delim: ch}, evStringStart
		case isOpenParen(ch):
			return ctx, evOpenParen
		case isCloseParen(ch):
			return ctx, evCloseParen
		case ch == verticalBar && d.vlineSymbols:
			return lexContext{kind: inString, delim: ch}, evStringStart
		case ch == numberSign && d.readerSyntax:
			return lexContext{kind: inLispReaderSyntax}, evNone
		case ch == grave && d.janetLongStrings:
			return lexContext{kind: inJanetLongStringPre, openDelimLen: 1}, evStringStart
		case ch == tab:
			return ctx, evTab
		}

	case inComment:
		if d.isStringDelimiter(ch) ||
			(ch == verticalBar && d.vlineSymbols) ||
			(ch == grave && d.janetLongStrings) {
			return ctx, evCommentQuote
		}

	case inString:
		if ch == ctx.delim {
			return codeContext, evNone
		}

	case inLispReaderSyntax:
		switch {
		case ch == verticalBar && d.lispBlockComments:
			return lexContext{kind: inLispBlockComment, depth: 1}, evNone
		case ch == bang && d.guileBlockComments:
			return lexContext{kind: inGuileBlockComment}, evNone
		case ch == ";" && d.schemeSexpComments:
			return codeContext, evNone
		}
		// Not a reader form we know: treat the character as ordinary code.
		return d.classify(codeContext, ch)

	case inLispBlockCommentPre:
		if ch == verticalBar {
			return lexContext{kind: inLispBlockComment, depth: ctx.depth + 1}, evNone
		}
		return lexContext{kind: inLispBlockComment, depth: ctx.depth}, evNone

	case inLispBlockComment:
		switch ch {
		case numberSign:
			return lexContext{kind: inLispBlockCommentPre, depth: ctx.depth}, evNone
		case verticalBar:
			return lexContext{kind: inLispBlockCommentPost, depth: ctx.depth}, evNone
		}

	case inLispBlockCommentPost:
		if ch == numberSign {
			if ctx.depth > 1 {
				return lexContext{kind: inLispBlockComment, depth: ctx.depth - 1}, evNone
			}
			return codeContext, evNone
		}
		return lexContext{kind: inLispBlockComment, depth: ctx.depth}, evNone

	case inGuileBlockComment:
		if ch == bang {
			return lexContext{kind: inGuileBlockCommentPost}, evNone
		}

	case inGuileBlockCommentPost:
		if ch == numberSign {
			return codeContext, evNone
		}
		return lexContext{kind: inGuileBlockComment}, evNone

	case inJanetLongStringPre:
		if ch == grave {
			return lexContext{kind: inJanetLongStringPre, openDelimLen: ctx.openDelimLen + 1}, evNone
		}
		return lexContext{kind: inJanetLongString, openDelimLen: ctx.openDelimLen}, evNone

	case inJanetLongString:
		if ch == grave {
			closeLen := ctx.closeDelimLen + 1
			if closeLen == ctx.openDelimLen {
				return codeContext, evNone
			}
			return lexContext{kind: inJanetLongString, openDelimLen: ctx.openDelimLen, closeDelimLen: closeLen}, evNone
		}
		if ctx.closeDelimLen > 0 {
			return lexContext{kind: inJanetLongString, openDelimLen: ctx.openDelimLen}, evNone
		}
	}
	return ctx, evNone
}
