package core

import "errors"

func (s *state) processChar(ch string) error {
	origCh := ch
	s.ch = ch
	s.skipChar = false

	s.handleChangeDelta()

	if s.trackingIndent {
		if err := s.checkIndent(); err != nil {
			return err
		}
	}

	if s.skipChar {
		s.ch = ""
	} else if err := s.onChar(); err != nil {
		return err
	}

	s.commitChar(origCh)
	return nil
}

func (s *state) processLine(lineNo int) error {
	s.initLine()
	s.lines = append(s.lines, outputLine{text: s.inputLines[lineNo]})

	s.setTabStops()

	for _, c := range clusters(s.inputLines[lineNo]) {
		s.inputX = c.x
		if err := s.processChar(c.text); err != nil {
			return err
		}
	}
	if err := s.processChar(newline); err != nil {
		return err
	}

	if !s.forceBalance {
		if err := s.checkUnmatchedOutsideParenTrail(); err != nil {
			return err
		}
		if err := s.checkLeadingCloseParen(); err != nil {
			return err
		}
	}

	if s.lineNo == s.parenTrail.lineNo {
		s.finishNewParenTrail()
	}
	return nil
}

// finalize checks the state left after the last line. Indent mode runs one
// more indentation pass as if an empty line followed, which closes every
// opener still on the stack.
func (s *state) finalize() error {
	if s.quoteDanger {
		return s.fail(ErrQuoteDanger)
	}
	if s.context.isStringish() {
		return s.fail(ErrUnclosedQuote)
	}
	if len(s.parenStack) != 0 && s.mode == parenMode {
		return s.fail(ErrUnclosedParen)
	}
	if s.mode == indentMode {
		s.initLine()
		if err := s.onIndent(); err != nil {
			return err
		}
	}
	s.success = true
	return nil
}

func (s *state) run() error {
	for i := range s.inputLines {
		s.inputLineNo = i
		if err := s.processLine(i); err != nil {
			return err
		}
	}
	return s.finalize()
}

// processText scans text in mode. A restart requested by an indent-mode
// scan reruns the whole text once in paren mode.
func processText(text string, opts *Options, mode scanMode, smart bool) *state {
	s := newState(text, opts, mode, smart)
	err := s.run()
	if errors.Is(err, errRestart) {
		if mode == parenMode {
			s.success = false
			s.err = Errorf(ErrPanic, "%s: restart requested in paren mode", ErrPanic.Message())
			return s
		}
		s = newState(text, opts, parenMode, smart)
		err = s.run()
	}
	if err != nil {
		s.success = false
		var e *Error
		if errors.As(err, &e) {
			s.err = e
		} else {
			s.err = Errorf(ErrPanic, "%s: %v", ErrPanic.Message(), err)
		}
	}
	return s
}

func (o *opener) public() *Paren {
	p := &Paren{
		LineNo:         o.lineNo,
		Ch:             o.ch,
		X:              o.x,
		IndentDelta:    o.indentDelta,
		MaxChildIndent: optional(o.maxChildIndent),
		ArgX:           optional(o.argX),
		InputLineNo:    o.inputLineNo,
		InputX:         o.inputX,
		Children:       make([]*Paren, 0, len(o.children)),
	}
	if o.closer != nil {
		p.Closer = &Closer{LineNo: o.closer.lineNo, X: o.closer.x, Ch: o.closer.ch, Trail: o.closer.trail}
	}
	for _, c := range o.children {
		p.Children = append(p.Children, c.public())
	}
	return p
}

func (s *state) answer() Answer {
	a := Answer{
		Success:     s.success,
		TabStops:    s.tabStops,
		ParenTrails: s.parenTrails,
		Parens:      make([]*Paren, 0, len(s.parens)),
	}
	if a.TabStops == nil {
		a.TabStops = []TabStop{}
	}
	if a.ParenTrails == nil {
		a.ParenTrails = []ParenTrail{}
	}
	for _, p := range s.parens {
		a.Parens = append(a.Parens, p.public())
	}

	if s.success || s.partialResult {
		a.Text = joinLines(s.lines, lineEnding(s.origText))
		a.CursorX = optional(s.cursorX)
		a.CursorLine = optional(s.cursorLine)
	} else {
		a.Text = s.origText
		a.CursorX = optional(s.origCursorX)
		a.CursorLine = optional(s.origCursorLine)
	}
	if !s.success {
		a.Error = s.err
	}
	return a
}

// IndentMode infers close-parens from indentation.
func IndentMode(text string, opts Options) Answer {
	return processText(text, &opts, indentMode, false).answer()
}

// ParenMode infers indentation from close-parens.
func ParenMode(text string, opts Options) Answer {
	return processText(text, &opts, parenMode, false).answer()
}

// SmartMode is indent mode that leaves close-parens near the cursor alone
// while the user is still typing. With a selection it behaves like
// IndentMode.
func SmartMode(text string, opts Options) Answer {
	smart := opts.SelectionStartLine == nil
	return processText(text, &opts, indentMode, smart).answer()
}

// Process runs the request's mode. PrevText, when present, replaces
// Options.Changes with the single edit that turns it into Text.
func Process(req Request) Answer {
	opts := req.Options
	if opts.PrevText != nil {
		opts.Changes = nil
		if c, ok := ComputeTextChange(*opts.PrevText, req.Text); ok {
			opts.Changes = []Change{c}
		}
	}

	switch req.Mode {
	case ModeIndent:
		return IndentMode(req.Text, opts)
	case ModeParen:
		return ParenMode(req.Text, opts)
	case ModeSmart:
		return SmartMode(req.Text, opts)
	}
	return AnswerFromError(Errorf(ErrJSON, "Bad value specified for `mode`"))
}
