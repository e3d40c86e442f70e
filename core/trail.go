package core

import "strings"

func (s *state) resetParenTrail(lineNo, x int) {
	s.parenTrail.lineNo = lineNo
	s.parenTrail.startX = x
	s.parenTrail.endX = x
	s.parenTrail.openers = nil
	s.parenTrail.clamped = clampedTrail{startX: none, endX: none}
}

func (s *state) isCursorClampingParenTrail(cursorX, cursorLine int) bool {
	return isCursorRightOf(cursorX, cursorLine, s.parenTrail.startX, s.lineNo) &&
		!s.isCursorInComment(cursorX, cursorLine)
}

// clampParenTrailToCursor keeps the close-parens left of the cursor out of
// the trail so that indent mode does not move them away from the user.
func (s *state) clampParenTrailToCursor() {
	if !s.isCursorClampingParenTrail(s.cursorX, s.cursorLine) {
		return
	}
	startX := s.parenTrail.startX
	endX := s.parenTrail.endX

	newStartX := max(startX, s.cursorX)
	newEndX := max(endX, s.cursorX)

	removeCount := 0
	for _, c := range clusters(s.lines[s.lineNo].text) {
		if c.x < startX || c.x >= newStartX {
			continue
		}
		if isCloseParen(c.text) {
			removeCount++
		}
	}

	openers := s.parenTrail.openers
	removeCount = min(removeCount, len(openers))

	s.parenTrail.openers = append([]*opener(nil), openers[removeCount:]...)
	s.parenTrail.startX = newStartX
	s.parenTrail.endX = newEndX

	s.parenTrail.clamped = clampedTrail{
		startX:  startX,
		endX:    endX,
		openers: append([]*opener(nil), openers[:removeCount]...),
	}
}

// popParenTrail reopens the openers closed by the current trail; indent
// mode decides where they close once the next line's indentation is known.
func (s *state) popParenTrail() {
	if s.parenTrail.startX == s.parenTrail.endX {
		return
	}
	openers := s.parenTrail.openers
	for i := len(openers) - 1; i >= 0; i-- {
		s.parenStack = append(s.parenStack, openers[i])
	}
	s.parenTrail.openers = nil
}

// parentOpenerIndex returns how many openers on top of the stack must be
// closed before a line indented at indentX. The adoption and fragmentation
// cases compare the opener against the indentation the line had before
// this call's edits.
func (s *state) parentOpenerIndex(indentX int) int {
	for i := range len(s.parenStack) {
		op := s.peek(i)

		currOutside := op.x < indentX

		prevIndentX := indentX - s.indentDelta
		prevOutside := op.x-op.indentDelta < prevIndentX

		isParent := false

		switch {
		case prevOutside && currOutside:
			isParent = true

		case !prevOutside && !currOutside:
			isParent = false

		case prevOutside && !currOutside:
			// Fragmentation: `(foo\nbar)` dedented to `(foo)\nbar`.
			// A line that did not move keeps its parent. Otherwise the
			// split is allowed, including when both deltas are nonzero.
			isParent = s.indentDelta == 0

		case !prevOutside && currOutside:
			// Adoption: `(foo)\n  bar` becoming `(foo\n  bar)`.
			next := s.peek(i + 1)
			switch {
			case next != nil && next.indentDelta <= op.indentDelta:
				// Only refuse adoption when the next opener's delta keeps
				// the line out of this opener's range.
				isParent = indentX+next.indentDelta > op.x
			case next != nil && next.indentDelta > op.indentDelta:
				isParent = true
			case s.indentDelta > op.indentDelta:
				isParent = true
			}
			if isParent {
				// The delta only applied to the previous children.
				op.indentDelta = 0
			}
		}

		if isParent {
			return i
		}
	}
	return len(s.parenStack)
}

// correctParenTrail closes every opener the line at indentX falls outside
// of, writing the close-parens at the last trail.
func (s *state) correctParenTrail(indentX int) {
	var parens strings.Builder

	index := s.parentOpenerIndex(indentX)
	for i := range index {
		op := s.popOpener()
		closeCh := matchParen(op.ch)
		if s.parenTrail.lineNo != none {
			s.setCloser(op, s.parenTrail.lineNo, s.parenTrail.startX+i, closeCh)
		}
		s.parenTrail.openers = append(s.parenTrail.openers, op)
		parens.WriteString(closeCh)
	}

	if s.parenTrail.lineNo != none {
		s.replaceWithinLine(s.parenTrail.lineNo, s.parenTrail.startX, s.parenTrail.endX, parens.String())
		s.parenTrail.endX = s.parenTrail.startX + parens.Len()
		s.rememberParenTrail()
	}
}

// cleanParenTrail drops whitespace between the close-parens of a trail.
func (s *state) cleanParenTrail() {
	startX, endX := s.parenTrail.startX, s.parenTrail.endX
	if startX == endX || s.lineNo != s.parenTrail.lineNo {
		return
	}

	var trail strings.Builder
	spaceCount := 0
	for _, c := range clusters(s.lines[s.lineNo].text) {
		if c.x < startX || c.x >= endX {
			continue
		}
		if isCloseParen(c.text) {
			trail.WriteString(c.text)
		} else {
			spaceCount++
		}
	}

	if spaceCount > 0 {
		s.replaceWithinLine(s.lineNo, startX, endX, trail.String())
		s.parenTrail.endX -= spaceCount
	}
}

func (s *state) appendParenTrail() {
	op := s.popOpener()
	closeCh := matchParen(op.ch)
	s.setCloser(op, s.parenTrail.lineNo, s.parenTrail.endX, closeCh)

	s.setMaxIndent(op)
	s.insertWithinLine(s.parenTrail.lineNo, s.parenTrail.endX, closeCh)

	s.parenTrail.endX++
	s.parenTrail.openers = append(s.parenTrail.openers, op)
	s.updateRememberedParenTrail()
}

func (s *state) invalidateParenTrail() {
	s.parenTrail = emptyParenTrail()
}

func (s *state) checkUnmatchedOutsideParenTrail() error {
	cache := s.errorPosCache[ErrUnmatchedCloseParen]
	if cache != nil && s.parenTrail.startX != none && cache.X < s.parenTrail.startX {
		return s.fail(ErrUnmatchedCloseParen)
	}
	return nil
}

func (s *state) setMaxIndent(op *opener) {
	if parent := s.peek(0); parent != nil {
		parent.maxChildIndent = op.x
	} else {
		s.maxIndent = op.x
	}
}

func (s *state) rememberParenTrail() {
	if len(s.parenTrail.clamped.openers) == 0 && len(s.parenTrail.openers) == 0 {
		return
	}
	trail := ParenTrail{
		LineNo: s.parenTrail.lineNo,
		StartX: s.parenTrail.startX,
		EndX:   s.parenTrail.endX,
	}
	if s.parenTrail.clamped.startX != none {
		trail.StartX = s.parenTrail.clamped.startX
		trail.EndX = s.parenTrail.clamped.endX
	}
	s.parenTrails = append(s.parenTrails, trail)

	if s.returnParens {
		for _, op := range s.parenTrail.openers {
			if op.closer != nil {
				t := trail
				op.closer.trail = &t
			}
		}
	}
}

func (s *state) updateRememberedParenTrail() {
	n := len(s.parenTrails)
	if n == 0 || s.parenTrails[n-1].LineNo != s.parenTrail.lineNo {
		s.rememberParenTrail()
		return
	}
	last := &s.parenTrails[n-1]
	last.EndX = s.parenTrail.endX
	if s.returnParens {
		if op := peekOpener(s.parenTrail.openers, 0); op != nil && op.closer != nil {
			t := *last
			op.closer.trail = &t
		}
	}
}

func (s *state) finishNewParenTrail() {
	switch {
	case s.context.isStringish():
		s.invalidateParenTrail()
	case s.mode == indentMode:
		s.clampParenTrailToCursor()
		s.popParenTrail()
	case s.mode == parenMode:
		if op := peekOpener(s.parenTrail.openers, 0); op != nil {
			s.setMaxIndent(op)
		}
		if s.lineNo != s.cursorLine {
			s.cleanParenTrail()
		}
		s.rememberParenTrail()
	}
}
