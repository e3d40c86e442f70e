package core

type scanMode int

const (
	indentMode scanMode = iota
	parenMode
)

type argTabStop int

const (
	argNotSearching argTabStop = iota
	argSpace
	argArg
)

type escapeState int

const (
	escapeNormal escapeState = iota
	escapeEscaping
	escapeEscaped
)

// opener is an open-paren on the scanner's stack. Columns that may be
// unset use the none sentinel.
type opener struct {
	inputLineNo int
	inputX      int

	lineNo         int
	x              int
	ch             string
	indentDelta    int
	maxChildIndent int
	argX           int

	closer   *closer
	children []*opener
}

type closer struct {
	lineNo int
	x      int
	ch     string
	trail  *ParenTrail
}

type clampedTrail struct {
	startX  int
	endX    int
	openers []*opener
}

type parenTrail struct {
	lineNo  int
	startX  int
	endX    int
	openers []*opener
	clamped clampedTrail
}

func emptyParenTrail() parenTrail {
	return parenTrail{
		lineNo: none,
		startX: none,
		endX:   none,
		clamped: clampedTrail{
			startX: none,
			endX:   none,
		},
	}
}

// state is everything one scan accumulates. It is discarded when the scan
// ends or restarts.
type state struct {
	mode  scanMode
	smart bool

	origText       string
	origCursorX    int
	origCursorLine int

	inputLines  []string
	inputLineNo int
	inputX      int

	lines   []outputLine
	lineNo  int
	ch      string
	x       int
	indentX int

	parenStack []*opener
	tabStops   []TabStop

	parenTrail  parenTrail
	parenTrails []ParenTrail

	returnParens bool
	parens       []*opener

	cursorX            int
	cursorLine         int
	prevCursorX        int
	prevCursorLine     int
	selectionStartLine int

	changes map[position]transformedChange

	context  lexContext
	commentX int
	escape   escapeState
	dialect  dialect

	quoteDanger    bool
	trackingIndent bool
	skipChar       bool
	success        bool
	partialResult  bool
	forceBalance   bool

	maxIndent   int
	indentDelta int

	trackingArgTabStop argTabStop

	err           *Error
	errorPosCache map[ErrorName]*Error
}

func newState(text string, opts *Options, mode scanMode, smart bool) *state {
	return &state{
		mode:  mode,
		smart: smart,

		origText:       text,
		origCursorX:    valueOf(opts.CursorX),
		origCursorLine: valueOf(opts.CursorLine),

		inputLines: splitLines(text),

		lineNo:  none,
		indentX: none,

		parenTrail: emptyParenTrail(),

		returnParens: opts.ReturnParens,

		cursorX:            valueOf(opts.CursorX),
		cursorLine:         valueOf(opts.CursorLine),
		prevCursorX:        valueOf(opts.PrevCursorX),
		prevCursorLine:     valueOf(opts.PrevCursorLine),
		selectionStartLine: valueOf(opts.SelectionStartLine),

		changes: transformChanges(opts.Changes),

		context:  codeContext,
		commentX: none,
		dialect:  newDialect(opts),

		partialResult: opts.PartialResult,
		forceBalance:  opts.ForceBalance,

		maxIndent: none,

		errorPosCache: make(map[ErrorName]*Error),
	}
}

func (s *state) peek(i int) *opener {
	return peekOpener(s.parenStack, i)
}

func peekOpener(stack []*opener, i int) *opener {
	if i < 0 || i >= len(stack) {
		return nil
	}
	return stack[len(stack)-1-i]
}

func (s *state) popOpener() *opener {
	n := len(s.parenStack)
	if n == 0 {
		return nil
	}
	op := s.parenStack[n-1]
	s.parenStack = s.parenStack[:n-1]
	return op
}

func (s *state) isEscaping() bool { return s.escape == escapeEscaping }
func (s *state) isEscaped() bool  { return s.escape == escapeEscaped }

func (s *state) isWhitespace() bool {
	return !s.isEscaped() && (s.ch == blankSpace || s.ch == doubleSpace)
}

// isClosable reports whether the current character ends a paren trail.
func (s *state) isClosable() bool {
	closer := isCloseParen(s.ch) && !s.isEscaped()
	return s.context.isCode() && !s.isWhitespace() && s.ch != "" && !closer
}

func (s *state) isValidCloseParen(ch string) bool {
	top := s.peek(0)
	return top != nil && top.ch == matchParen(ch)
}

// Errors

func (s *state) cacheErrorPos(name ErrorName) *Error {
	e := &Error{
		Name:        name,
		LineNo:      s.lineNo,
		X:           s.x,
		InputLineNo: s.inputLineNo,
		InputX:      s.inputX,
	}
	s.errorPosCache[name] = e
	return e
}

// fail builds the terminal error for name, preferring the cached position
// of its first occurrence.
func (s *state) fail(name ErrorName) error {
	e := NewError(name)
	e.InputLineNo = s.inputLineNo
	e.InputX = s.inputX
	e.LineNo, e.X = s.errorPos(s.errorPosCache[name])

	switch name {
	case ErrUnclosedParen:
		if op := s.peek(0); op != nil {
			e.LineNo, e.X = s.openerPos(op)
		}
	case ErrUnmatchedCloseParen:
		if cache := s.errorPosCache[ErrUnmatchedOpenParen]; cache != nil {
			extra := NewError(ErrUnmatchedOpenParen)
			extra.InputLineNo, extra.InputX = cache.InputLineNo, cache.InputX
			extra.LineNo, extra.X = s.errorPos(cache)
			e.Extra = extra
		} else if op := s.peek(0); op != nil {
			extra := NewError(ErrUnmatchedOpenParen)
			extra.InputLineNo, extra.InputX = op.inputLineNo, op.inputX
			extra.LineNo, extra.X = s.openerPos(op)
			e.Extra = extra
		}
	}
	return e
}

func (s *state) errorPos(cache *Error) (lineNo, x int) {
	switch {
	case cache != nil && s.partialResult:
		return cache.LineNo, cache.X
	case cache != nil:
		return cache.InputLineNo, cache.InputX
	case s.partialResult:
		return s.lineNo, s.x
	default:
		return s.inputLineNo, s.inputX
	}
}

func (s *state) openerPos(op *opener) (lineNo, x int) {
	if s.partialResult {
		return op.lineNo, op.x
	}
	return op.inputLineNo, op.inputX
}

// Line operations

func (s *state) isCursorAffected(start, end int) bool {
	if s.cursorX == none {
		return false
	}
	if s.cursorX == start && s.cursorX == end {
		return s.cursorX == 0
	}
	return s.cursorX >= end
}

func (s *state) shiftCursorOnEdit(lineNo, start, end int, replace string) {
	dx := displayWidth(replace) - (end - start)
	if dx != 0 && s.cursorX != none && s.cursorLine == lineNo && s.isCursorAffected(start, end) {
		s.cursorX += dx
	}
}

func (s *state) replaceWithinLine(lineNo, start, end int, replace string) {
	if lineNo < 0 || lineNo >= len(s.lines) {
		return
	}
	s.lines[lineNo].replace(start, end, replace)
	s.shiftCursorOnEdit(lineNo, start, end, replace)
}

func (s *state) insertWithinLine(lineNo, x int, insert string) {
	s.replaceWithinLine(lineNo, x, x, insert)
}

func (s *state) initLine() {
	s.x = 0
	s.lineNo++

	s.indentX = none
	s.commentX = none
	s.indentDelta = 0

	delete(s.errorPosCache, ErrUnmatchedCloseParen)
	delete(s.errorPosCache, ErrUnmatchedOpenParen)
	delete(s.errorPosCache, ErrLeadingCloseParen)

	s.trackingArgTabStop = argNotSearching
	s.trackingIndent = !s.context.isStringish()
}

// commitChar writes the possibly rewritten current character to the output
// line and advances the output column.
func (s *state) commitChar(origCh string) {
	ch := s.ch
	chWidth := displayWidth(ch)
	if origCh != ch {
		origWidth := displayWidth(origCh)
		s.replaceWithinLine(s.lineNo, s.x, s.x+origWidth, ch)
		s.indentDelta -= origWidth - chWidth
	}
	s.x += chWidth
}

func clampInt(val, minN, maxN int) int {
	if minN != none && minN >= val {
		return minN
	}
	if maxN != none && maxN <= val {
		return maxN
	}
	return val
}
