package core

// checkCursorHolding reports whether the cursor sits inside the columns
// owned by the innermost opener on its own line. A cursor that held the
// opener on the previous call but no longer does invalidates the scan.
func (s *state) checkCursorHolding() (bool, error) {
	op := s.peek(0)
	holdMinX := 0
	if parent := s.peek(1); parent != nil {
		holdMinX = parent.x + 1
	}
	holdMaxX := op.x

	holding := s.cursorLine == op.lineNo &&
		s.cursorX != none && holdMinX <= s.cursorX && s.cursorX <= holdMaxX

	if len(s.changes) == 0 && s.prevCursorLine != none {
		prevHolding := s.prevCursorLine == op.lineNo &&
			s.prevCursorX != none && holdMinX <= s.prevCursorX && s.prevCursorX <= holdMaxX
		if prevHolding && !holding {
			return false, errRestart
		}
	}
	return holding, nil
}

func (s *state) trackArgTabStop(st argTabStop) {
	switch st {
	case argSpace:
		if s.context.isCode() && s.isWhitespace() {
			s.trackingArgTabStop = argArg
		}
	case argArg:
		if !s.isWhitespace() {
			if top := s.peek(0); top != nil {
				top.argX = s.x
			}
			s.trackingArgTabStop = argNotSearching
		}
	}
}

func (s *state) onOpenParen() {
	op := &opener{
		inputLineNo:    s.inputLineNo,
		inputX:         s.inputX,
		lineNo:         s.lineNo,
		x:              s.x,
		ch:             s.ch,
		indentDelta:    s.indentDelta,
		maxChildIndent: none,
		argX:           none,
	}
	if s.returnParens {
		if parent := s.peek(0); parent != nil {
			parent.children = append(parent.children, op)
		} else {
			s.parens = append(s.parens, op)
		}
	}
	s.parenStack = append(s.parenStack, op)
	s.trackingArgTabStop = argSpace
}

func (s *state) setCloser(op *opener, lineNo, x int, ch string) {
	if s.returnParens {
		op.closer = &closer{lineNo: lineNo, x: x, ch: ch}
	}
}

func (s *state) onMatchedCloseParen() error {
	op := s.peek(0)
	s.setCloser(op, s.lineNo, s.x, s.ch)

	s.parenTrail.endX = s.x + 1
	s.parenTrail.openers = append(s.parenTrail.openers, op)

	if s.mode == indentMode && s.smart {
		holding, err := s.checkCursorHolding()
		if err != nil {
			return err
		}
		if holding {
			clamped := clampedTrail{
				startX:  s.parenTrail.startX,
				endX:    s.parenTrail.endX,
				openers: append([]*opener(nil), s.parenTrail.openers...),
			}
			s.resetParenTrail(s.lineNo, s.x+1)
			s.parenTrail.clamped = clamped
		}
	}
	s.popOpener()
	s.trackingArgTabStop = argNotSearching
	return nil
}

func (s *state) onUnmatchedCloseParen() error {
	switch s.mode {
	case parenMode:
		inLeadingTrail := s.parenTrail.lineNo == s.lineNo && s.parenTrail.startX == s.indentX
		if !(s.smart && inLeadingTrail) {
			return s.fail(ErrUnmatchedCloseParen)
		}
	case indentMode:
		if _, seen := s.errorPosCache[ErrUnmatchedCloseParen]; !seen {
			s.cacheErrorPos(ErrUnmatchedCloseParen)
			if top := s.peek(0); top != nil {
				e := s.cacheErrorPos(ErrUnmatchedOpenParen)
				e.LineNo, e.X = top.lineNo, top.x
				e.InputLineNo, e.InputX = top.inputLineNo, top.inputX
			}
		}
	}
	s.ch = ""
	return nil
}

func (s *state) onCloseParen() error {
	if s.isValidCloseParen(s.ch) {
		return s.onMatchedCloseParen()
	}
	return s.onUnmatchedCloseParen()
}

func (s *state) afterBackslash() error {
	s.escape = escapeEscaped
	if s.ch == newline && s.context.isCode() {
		return s.fail(ErrEolBackslash)
	}
	return nil
}

func (s *state) onNewline() {
	if s.context.isComment() {
		s.context = codeContext
	}
	s.ch = ""
}

// onContext classifies the current character and applies its effect.
func (s *state) onContext() error {
	next, ev := s.dialect.classify(s.context, s.ch)
	s.context = next
	switch ev {
	case evCommentStart:
		s.commentX = s.x
		s.trackingArgTabStop = argNotSearching
	case evStringStart:
		s.cacheErrorPos(ErrUnclosedQuote)
	case evCommentQuote:
		s.quoteDanger = !s.quoteDanger
		if s.quoteDanger {
			s.cacheErrorPos(ErrQuoteDanger)
		}
	case evOpenParen:
		s.onOpenParen()
	case evCloseParen:
		return s.onCloseParen()
	case evTab:
		s.ch = doubleSpace
	}
	return nil
}

func (s *state) onChar() error {
	if s.isEscaped() {
		s.escape = escapeNormal
	}

	switch {
	case s.isEscaping():
		if err := s.afterBackslash(); err != nil {
			return err
		}
	case s.ch == backslash:
		s.escape = escapeEscaping
	case s.ch == newline:
		s.onNewline()
	default:
		if err := s.onContext(); err != nil {
			return err
		}
	}

	if s.isClosable() {
		s.resetParenTrail(s.lineNo, s.x+displayWidth(s.ch))
	}

	if st := s.trackingArgTabStop; st != argNotSearching {
		s.trackArgTabStop(st)
	}
	return nil
}

func (s *state) handleChangeDelta() {
	if len(s.changes) == 0 || !(s.smart || s.mode == parenMode) {
		return
	}
	if c, ok := s.changes[position{lineNo: s.inputLineNo, x: s.inputX}]; ok {
		s.indentDelta += c.newEndX - c.oldEndX
	}
}

// Cursor predicates. A cursor at x counts as left of x since it sits
// between x-1 and x.

func isCursorLeftOf(cursorX, cursorLine, x, lineNo int) bool {
	return x != none && cursorX != none && cursorLine == lineNo && cursorX <= x
}

func isCursorRightOf(cursorX, cursorLine, x, lineNo int) bool {
	return x != none && cursorX != none && cursorLine == lineNo && cursorX > x
}

func (s *state) isCursorInComment(cursorX, cursorLine int) bool {
	return isCursorRightOf(cursorX, cursorLine, s.commentX, s.lineNo)
}
