package document

import (
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Line is a single line of a Snapshot. End excludes the line terminator
// ("\n" or "\r\n"); Next is the offset at which the following line starts,
// or the document length for the last line.
type Line struct {
	Start int
	End   int
	Next  int
	Text  string
}

// Position is an editor coordinate: a 0-based line and a column counted in
// UTF-16 code units, the way the Language Server Protocol counts them.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range spans two positions.
type Range struct {
	Start Position
	End   Position
}

// Snapshot is an immutable view of a document's text with its line index.
// Offsets are byte offsets into the content.
type Snapshot struct {
	content string
	lines   []Line

	// Set by the owning Session before the snapshot is published.
	version    int32
	generation uint64
}

// New builds a snapshot from content. Like an editor buffer, a trailing
// newline produces a final empty line.
func New(content string) *Snapshot {
	return &Snapshot{
		content: content,
		lines:   splitLines(content),
	}
}

func splitLines(content string) []Line {
	lines := make([]Line, 0, strings.Count(content, "\n")+1)
	start := 0
	for {
		i := strings.IndexByte(content[start:], '\n')
		if i < 0 {
			lines = append(lines, Line{
				Start: start,
				End:   len(content),
				Next:  len(content),
				Text:  content[start:],
			})
			return lines
		}
		end := start + i
		next := end + 1
		if end > start && content[end-1] == '\r' {
			end--
		}
		lines = append(lines, Line{Start: start, End: end, Next: next, Text: content[start:end]})
		start = next
	}
}

// Version is the editor version the snapshot was created at.
func (s *Snapshot) Version() int32 { return s.version }

// Generation orders the snapshots of one session. A later content change
// always has a greater generation; snapshots built with New have zero.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Lines returns the line index. Callers must not modify it.
func (s *Snapshot) Lines() []Line { return s.lines }

// Len is the offset one past the last byte of the document.
func (s *Snapshot) Len() int { return len(s.content) }

// Content returns the full text.
func (s *Snapshot) Content() string { return s.content }

// Slice returns the text in [from, to), clamped to the document bounds.
func (s *Snapshot) Slice(from, to int) string {
	from = clamp(from, 0, len(s.content))
	to = clamp(to, 0, len(s.content))
	if from >= to {
		return ""
	}
	return s.content[from:to]
}

// LineAt returns the index of the line containing offset.
func (s *Snapshot) LineAt(offset int) int {
	offset = clamp(offset, 0, len(s.content))
	i := sort.Search(len(s.lines), func(i int) bool { return s.lines[i].Start > offset })
	if i == 0 {
		return 0
	}
	return i - 1
}

// Position converts a byte offset into an editor position.
func (s *Snapshot) Position(offset int) Position {
	idx := s.LineAt(offset)
	line := s.lines[idx]
	offset = clamp(offset, line.Start, line.End)
	return Position{Line: idx, Character: utf16Len(s.content[line.Start:offset])}
}

// Offset converts an editor position into a byte offset. Lines past the end
// map to the document length and columns past the end of a line map to the
// line end.
func (s *Snapshot) Offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(s.lines) {
		return len(s.content)
	}
	line := s.lines[pos.Line]
	units := 0
	for i, r := range line.Text {
		if units >= pos.Character {
			return line.Start + i
		}
		units += runeUnits(r)
	}
	return line.End
}

func utf16Len(text string) int {
	n := 0
	for _, r := range text {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
