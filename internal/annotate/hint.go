package annotate

import (
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/markdown"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/render"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/section"
)

// Hint is a rendered annotation placed in editor coordinates.
type Hint struct {
	render.Hint
	Title    string            `json:"title"`
	Position document.Position `json:"position"`
}

// Decorate renders annotations scanned from snap and resolves each anchor
// to a position and its header title.
func Decorate(snap *document.Snapshot, annotations []section.Annotation, r *render.Renderer, m render.Metrics) []Hint {
	rendered := r.Render(annotations, m)
	lines := snap.Lines()

	hints := make([]Hint, len(rendered))
	for i, h := range rendered {
		var title string
		if h.Line >= 0 && h.Line < len(lines) {
			title = markdown.HeadingTitle(lines[h.Line].Text)
		}
		hints[i] = Hint{
			Hint:     h,
			Title:    title,
			Position: snap.Position(h.Anchor),
		}
	}
	return hints
}
