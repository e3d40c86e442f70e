package core

import (
	"strings"
	"unicode/utf8"
)

// ComputeTextChange returns the single contiguous edit that turns prev into
// text. The span is found by trimming the longest common prefix and then the
// longest common suffix that does not overlap it. Characters are compared
// byte for byte, so distinct invalid bytes never match. ok is false when the
// texts are equal.
func ComputeTextChange(prev, text string) (change Change, ok bool) {
	if prev == text {
		return Change{}, false
	}

	start := 0
	for start < len(prev) && start < len(text) {
		_, pn := utf8.DecodeRuneInString(prev[start:])
		_, tn := utf8.DecodeRuneInString(text[start:])
		if pn != tn || prev[start:start+pn] != text[start:start+tn] {
			break
		}
		start += pn
	}

	endPrev, endText := len(prev), len(text)
	for endPrev > start && endText > start {
		_, pn := utf8.DecodeLastRuneInString(prev[start:endPrev])
		_, tn := utf8.DecodeLastRuneInString(text[start:endText])
		if pn != tn || prev[endPrev-pn:endPrev] != text[endText-tn:endText] {
			break
		}
		endPrev -= pn
		endText -= tn
	}

	head := prev[:start]
	lineNo := strings.Count(head, newline)
	lastLine := head[strings.LastIndex(head, newline)+1:]

	return Change{
		X:       displayWidth(chompCR(lastLine)),
		LineNo:  lineNo,
		OldText: prev[start:endPrev],
		NewText: text[start:endText],
	}, true
}

// transformedChange records where an edit ends in both the old and the new
// text so the scanner can apply the width difference when it gets there.
type transformedChange struct {
	oldEndX int
	newEndX int
}

type position struct {
	lineNo int
	x      int
}

func transformChange(c Change) (position, transformedChange) {
	newLines := splitLines(c.NewText)
	oldLines := splitLines(c.OldText)

	lastOld := displayWidth(oldLines[len(oldLines)-1])
	lastNew := displayWidth(newLines[len(newLines)-1])

	oldEndX, newEndX := lastOld, lastNew
	if len(oldLines) == 1 {
		oldEndX += c.X
	}
	if len(newLines) == 1 {
		newEndX += c.X
	}

	key := position{lineNo: c.LineNo + len(newLines) - 1, x: newEndX}
	return key, transformedChange{oldEndX: oldEndX, newEndX: newEndX}
}

func transformChanges(changes []Change) map[position]transformedChange {
	out := make(map[position]transformedChange, len(changes))
	for _, c := range changes {
		key, tc := transformChange(c)
		out[key] = tc
	}
	return out
}
