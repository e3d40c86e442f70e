package core

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const (
	backslash   = "\\"
	blankSpace  = " "
	doubleSpace = "  "
	verticalBar = "|"
	bang        = "!"
	numberSign  = "#"
	newline     = "\n"
	tab         = "\t"
	grave       = "`"
)

// widthCondition measures columns with narrow East Asian ambiguous widths.
// runewidth.DefaultCondition follows the host locale, which would make the
// same request produce different columns on different machines.
var widthCondition = &runewidth.Condition{EastAsianWidth: false}

// cluster is one user-perceived character of a line together with the
// display column it starts at.
type cluster struct {
	text  string
	x     int
	width int
}

// displayWidth returns the number of columns s occupies. A tab counts as a
// single input column; the scanner expands it to two spaces in code.
func displayWidth(s string) int {
	switch s {
	case "", newline:
		return 0
	case tab:
		return 1
	}
	if !strings.Contains(s, tab) {
		return widthCondition.StringWidth(s)
	}
	w := 0
	for _, c := range clusters(s) {
		w += c.width
	}
	return w
}

func clusterWidth(g string) int {
	switch g {
	case newline:
		return 0
	case tab:
		return 1
	}
	return widthCondition.StringWidth(g)
}

// clusters splits s into grapheme clusters annotated with their columns.
func clusters(s string) []cluster {
	out := make([]cluster, 0, len(s))
	x := 0
	state := -1
	for len(s) > 0 {
		var g string
		g, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w := clusterWidth(g)
		out = append(out, cluster{text: g, x: x, width: w})
		x += w
	}
	return out
}

// columnByteIndex maps display column x to a byte offset in s. Columns past
// the end of s map to len(s).
func columnByteIndex(s string, x int) int {
	idx := 0
	col := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		if col == x {
			return idx
		}
		var g string
		g, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		idx += len(g)
		col += clusterWidth(g)
	}
	return len(s)
}

func replaceWithinString(orig string, start, end int, replace string) string {
	startIdx := columnByteIndex(orig, start)
	endIdx := columnByteIndex(orig, end)
	if endIdx < startIdx {
		endIdx = startIdx
	}
	return orig[:startIdx] + replace + orig[endIdx:]
}

func chompCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}

func splitLines(text string) []string {
	lines := strings.Split(text, newline)
	for i, l := range lines {
		lines[i] = chompCR(l)
	}
	return lines
}

func lineEnding(text string) string {
	if strings.ContainsRune(text, '\r') {
		return "\r\n"
	}
	return newline
}

// outputLine is a line of the corrected buffer. It shares the input line
// until the first edit and owns its text afterwards.
type outputLine struct {
	text  string
	owned bool
}

func (l *outputLine) replace(start, end int, repl string) bool {
	next := replaceWithinString(l.text, start, end, repl)
	if next == l.text {
		return false
	}
	l.text = next
	l.owned = true
	return true
}

func joinLines(lines []outputLine, sep string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(l.text)
	}
	return b.String()
}

func matchParen(ch string) string {
	switch ch {
	case "{":
		return "}"
	case "}":
		return "{"
	case "[":
		return "]"
	case "]":
		return "["
	case "(":
		return ")"
	case ")":
		return "("
	}
	return ""
}

func isOpenParen(ch string) bool {
	return ch == "(" || ch == "[" || ch == "{"
}

func isCloseParen(ch string) bool {
	return ch == ")" || ch == "]" || ch == "}"
}
