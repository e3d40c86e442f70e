package core

import "strings"

func (s *state) addIndent(delta int) {
	origIndent := s.x
	newIndent := max(origIndent+delta, 0)
	s.replaceWithinLine(s.lineNo, 0, origIndent, strings.Repeat(blankSpace, newIndent))
	s.x = newIndent
	s.indentX = newIndent
	s.indentDelta += delta
}

// shouldAddOpenerIndent is false when the user already shifted this line
// by the opener's delta, as happens when several lines are indented at once.
func (s *state) shouldAddOpenerIndent(op *opener) bool {
	return op.indentDelta != s.indentDelta
}

// correctIndent clamps the line's indentation between its parent opener
// and the furthest a previous sibling reached.
func (s *state) correctIndent() {
	origIndent := s.x
	newIndent := origIndent
	minIndent := 0
	maxIndent := s.maxIndent

	if op := s.peek(0); op != nil {
		minIndent = op.x + 1
		maxIndent = op.maxChildIndent
		if s.shouldAddOpenerIndent(op) {
			newIndent += op.indentDelta
		}
	}

	newIndent = clampInt(newIndent, minIndent, maxIndent)
	if newIndent != origIndent {
		s.addIndent(newIndent - origIndent)
	}
}

func (s *state) onIndent() error {
	s.indentX = s.x
	s.trackingIndent = false

	if s.quoteDanger {
		return s.fail(ErrQuoteDanger)
	}

	switch s.mode {
	case indentMode:
		s.correctParenTrail(s.x)
		if op := s.peek(0); op != nil && s.shouldAddOpenerIndent(op) {
			s.addIndent(op.indentDelta)
		}
	case parenMode:
		s.correctIndent()
	}
	return nil
}

func (s *state) checkLeadingCloseParen() error {
	if _, seen := s.errorPosCache[ErrLeadingCloseParen]; seen && s.parenTrail.lineNo == s.lineNo {
		return s.fail(ErrLeadingCloseParen)
	}
	return nil
}

func (s *state) onLeadingCloseParen() error {
	switch s.mode {
	case indentMode:
		if !s.forceBalance {
			if s.smart {
				return errRestart
			}
			if _, seen := s.errorPosCache[ErrLeadingCloseParen]; !seen {
				s.cacheErrorPos(ErrLeadingCloseParen)
			}
		}
		s.skipChar = true

	case parenMode:
		switch {
		case !s.isValidCloseParen(s.ch):
			if !s.smart {
				return s.fail(ErrUnmatchedCloseParen)
			}
			s.skipChar = true
		case isCursorLeftOf(s.cursorX, s.cursorLine, s.x, s.lineNo):
			s.resetParenTrail(s.lineNo, s.x)
			return s.onIndent()
		default:
			s.appendParenTrail()
			s.skipChar = true
		}
	}
	return nil
}

// onCommentLine shifts a comment-only line with its parent opener. Comment
// lines never close or open anything.
func (s *state) onCommentLine() {
	trailLen := len(s.parenTrail.openers)

	// In paren mode the previous trail's openers are still candidates for
	// the parent, so put copies of them back for the lookup.
	if s.mode == parenMode {
		for j := range trailLen {
			cp := *peekOpener(s.parenTrail.openers, j)
			s.parenStack = append(s.parenStack, &cp)
		}
	}

	i := s.parentOpenerIndex(s.x)
	indentToAdd := 0
	if op := s.peek(i); op != nil && s.shouldAddOpenerIndent(op) {
		indentToAdd = op.indentDelta
	}
	if indentToAdd != 0 {
		s.addIndent(indentToAdd)
	}

	if s.mode == parenMode {
		s.parenStack = s.parenStack[:len(s.parenStack)-trailLen]
	}
}

func (s *state) checkIndent() error {
	switch {
	case isCloseParen(s.ch):
		return s.onLeadingCloseParen()
	case s.ch == s.dialect.commentChar:
		s.onCommentLine()
		s.trackingIndent = false
	case s.ch != newline && s.ch != blankSpace && s.ch != tab:
		return s.onIndent()
	}
	return nil
}

func makeTabStop(op *opener) TabStop {
	return TabStop{
		Ch:     op.ch,
		X:      op.x,
		LineNo: op.lineNo,
		ArgX:   optional(op.argX),
	}
}

func (s *state) tabStopLine() int {
	if s.selectionStartLine != none {
		return s.selectionStartLine
	}
	return s.cursorLine
}

// setTabStops records the openers enclosing the start of the cursor line.
func (s *state) setTabStops() {
	if s.tabStopLine() != s.lineNo {
		return
	}

	stops := make([]TabStop, 0, len(s.parenStack)+len(s.parenTrail.openers))
	for _, op := range s.parenStack {
		stops = append(stops, makeTabStop(op))
	}
	if s.mode == parenMode {
		for i := len(s.parenTrail.openers) - 1; i >= 0; i-- {
			stops = append(stops, makeTabStop(s.parenTrail.openers[i]))
		}
	}

	// An argument column past the next stop is not useful.
	for i := 1; i < len(stops); i++ {
		if prev := stops[i-1].ArgX; prev != nil && *prev >= stops[i].X {
			stops[i-1].ArgX = nil
		}
	}
	s.tabStops = stops
}
