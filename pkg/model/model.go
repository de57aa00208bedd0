// Package model defines the source-level data types shared by the parser, the
// scope graph and the definition service: file ids, byte spans, LSP-style
// positions and the line tables that convert between them.
package model

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// FileID identifies a source unit inside one Program.
type FileID int

// NoFile is the zero-value sentinel for "not part of any program".
const NoFile FileID = -1

// Span is a byte range [Start, End) inside one source file.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether off lies inside the span. The end is inclusive so
// that a cursor sitting right after the last character still hits the node.
func (s Span) Contains(off int) bool {
	return s.Start <= off && off <= s.End
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsZero reports whether the span is empty and starts at the file origin.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Position is a zero-based line and UTF-16 code unit column.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open position range.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// SourceRange ties a Range to the file it belongs to.
type SourceRange struct {
	File  FileID `json:"file"`
	Range Range  `json:"range"`
}

// LineTable converts between byte offsets and UTF-16 positions for one file.
type LineTable struct {
	src    []byte
	starts []int
}

// NewLineTable indexes the line starts of src.
func NewLineTable(src []byte) *LineTable {
	starts := make([]int, 1, 64)
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineTable{src: src, starts: starts}
}

// LineCount returns the number of lines, counting a trailing empty line.
func (t *LineTable) LineCount() int {
	return len(t.starts)
}

// lineEnd returns the byte offset of the end of line (before "\r\n" or "\n").
func (t *LineTable) lineEnd(line int) int {
	end := len(t.src)
	if line+1 < len(t.starts) {
		end = t.starts[line+1] - 1
	}
	if end > t.starts[line] && t.src[end-1] == '\r' {
		end--
	}
	return end
}

// Offset converts a position into a byte offset. Positions past the last
// line or past the end of their line fail with ErrOutOfRange.
func (t *LineTable) Offset(p Position) (int, error) {
	if p.Line < 0 || p.Line >= len(t.starts) || p.Character < 0 {
		return 0, errors.Wrapf(ErrOutOfRange, "line %d character %d", p.Line, p.Character)
	}
	off := t.starts[p.Line]
	end := t.lineEnd(p.Line)
	units := 0
	for off < end && units < p.Character {
		r, size := utf8.DecodeRune(t.src[off:end])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > p.Character {
			// Inside a surrogate pair: snap to the rune start.
			break
		}
		units += n
		off += size
	}
	if units < p.Character && off >= end {
		return 0, errors.Wrapf(ErrOutOfRange, "line %d has no character %d", p.Line, p.Character)
	}
	return off, nil
}

// Position converts a byte offset into a position. Offsets are clamped to
// the file bounds.
func (t *LineTable) Position(off int) Position {
	if off < 0 {
		off = 0
	}
	if off > len(t.src) {
		off = len(t.src)
	}
	line := sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > off }) - 1
	col := 0
	for i := t.starts[line]; i < off; {
		r, size := utf8.DecodeRune(t.src[i:off])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		col += n
		i += size
	}
	return Position{Line: line, Character: col}
}

// Range converts a byte span into a position range.
func (t *LineTable) Range(s Span) Range {
	return Range{Start: t.Position(s.Start), End: t.Position(s.End)}
}
