// Package render turns section annotations into the inline labels shown
// next to header lines.
package render

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/section"
)

const (
	// WordsPerPage is the page size used by Pages.
	WordsPerPage = 300
	// WordsPerMinute is the reading speed used by ReadingMinutes.
	WordsPerMinute = 275
)

// Metrics selects which metrics a label shows.
type Metrics struct {
	Words       bool
	Chars       bool
	Pages       bool
	ReadingTime bool
}

// Any reports whether a label would show anything.
func (m Metrics) Any() bool {
	return m.Words || m.Chars || m.Pages || m.ReadingTime
}

// Pages is the page count at WordsPerPage, rounded up.
func Pages(words int) int { return ceilDiv(words, WordsPerPage) }

// ReadingMinutes is the reading time at WordsPerMinute, rounded up.
func ReadingMinutes(words int) int { return ceilDiv(words, WordsPerMinute) }

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

// Hint is an annotation paired with its rendered label.
type Hint struct {
	section.Annotation
	Pages   int    `json:"pages"`
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
	Hidden  bool   `json:"hidden"`
}

// Renderer formats labels with locale digit grouping.
type Renderer struct {
	p *message.Printer
}

// New returns a renderer for tag. The zero language.Tag formats like
// English ("1,234").
func New(tag language.Tag) *Renderer {
	if tag == language.Und {
		tag = language.English
	}
	return &Renderer{p: message.NewPrinter(tag)}
}

var defaultRenderer = New(language.English)

// Default returns the shared English renderer.
func Default() *Renderer { return defaultRenderer }

// Label formats a with the default English renderer.
func Label(a section.Annotation, m Metrics) string {
	return defaultRenderer.Label(a, m)
}

// Label returns "(N words / N characters / N pages / N min read)" with the
// enabled parts in that fixed order, or "" when no metric is enabled.
func (r *Renderer) Label(a section.Annotation, m Metrics) string {
	parts := make([]string, 0, 4)
	if m.Words {
		parts = append(parts, r.p.Sprintf("%d words", a.Words))
	}
	if m.Chars {
		parts = append(parts, r.p.Sprintf("%d characters", a.Chars))
	}
	if m.Pages {
		parts = append(parts, r.p.Sprintf("%d pages", Pages(a.Words)))
	}
	if m.ReadingTime {
		parts = append(parts, strconv.Itoa(ReadingMinutes(a.Words))+" min read")
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " / ") + ")"
}

// Render pairs every annotation with its label.
func (r *Renderer) Render(annotations []section.Annotation, m Metrics) []Hint {
	hints := make([]Hint, len(annotations))
	for i, a := range annotations {
		label := r.Label(a, m)
		hints[i] = Hint{
			Annotation: a,
			Pages:      Pages(a.Words),
			Minutes:    ReadingMinutes(a.Words),
			Label:      label,
			Hidden:     label == "",
		}
	}
	return hints
}

// Render uses the default English renderer.
func Render(annotations []section.Annotation, m Metrics) []Hint {
	return defaultRenderer.Render(annotations, m)
}
