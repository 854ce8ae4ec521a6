// Package section partitions a markdown document into nested H1–H3 header
// sections and computes word and character totals for each of them.
package section

import (
	"sort"
	"strings"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
)

// Rank is a header level in 1..3. Zero means the line is not a header.
type Rank int

// MaxRank is the deepest header level that opens a section.
const MaxRank Rank = 3

// Ranks selects which header ranks are tracked, indexed by rank.
type Ranks [MaxRank + 1]bool

// AllRanks tracks H1, H2 and H3.
var AllRanks = Ranks{false, true, true, true}

// Enabled reports whether rank is a header level and is tracked.
func (r Ranks) Enabled(rank Rank) bool {
	return rank >= 1 && rank <= MaxRank && r[rank]
}

// Document is the buffer abstraction a scan reads from.
type Document interface {
	Lines() []document.Line
	Len() int
	Slice(from, to int) string
}

// Annotation carries the totals of one closed section. Anchor is the end
// offset of the header line that opened it; Line is that header's index.
type Annotation struct {
	Anchor int  `json:"anchor"`
	Rank   Rank `json:"rank"`
	Line   int  `json:"line"`
	Words  int  `json:"words"`
	Chars  int  `json:"chars"`
}

// Classify returns the rank of a header line. Only "# ", "## " and "### "
// open a header; any other number of leading '#' does not.
func Classify(text string) Rank {
	switch {
	case strings.HasPrefix(text, "# "):
		return 1
	case strings.HasPrefix(text, "## "):
		return 2
	case strings.HasPrefix(text, "### "):
		return 3
	default:
		return 0
	}
}

type slot struct {
	open         bool
	line         int
	anchor       int
	contentStart int
}

// Scan walks doc once and returns one annotation per closed section of an
// enabled rank, ordered by anchor. Opening a header closes every open
// section of equal or deeper rank; sections still open at the end are
// closed against the document length.
func Scan(doc Document, ranks Ranks) []Annotation {
	var (
		slots [MaxRank + 1]slot
		out   []Annotation
	)
	size := doc.Len()

	closeSlot := func(r Rank, end int) {
		s := slots[r]
		if !s.open {
			return
		}
		slots[r] = slot{}

		a := Annotation{Anchor: s.anchor, Rank: r, Line: s.line}
		from, to := min(size, s.contentStart), min(size, end)
		if from < to {
			a.Words, a.Chars = Count(doc.Slice(from, to))
		}
		if ranks.Enabled(r) {
			out = append(out, a)
		}
	}

	for i, line := range doc.Lines() {
		rank := Classify(line.Text)
		if rank == 0 {
			continue
		}
		for r := MaxRank; r >= rank; r-- {
			closeSlot(r, line.Start)
		}
		if ranks.Enabled(rank) {
			slots[rank] = slot{
				open:         true,
				line:         i,
				anchor:       line.End,
				contentStart: line.Next,
			}
		}
	}

	for r := Rank(1); r <= MaxRank; r++ {
		closeSlot(r, size)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Anchor != out[j].Anchor {
			return out[i].Anchor < out[j].Anchor
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}
