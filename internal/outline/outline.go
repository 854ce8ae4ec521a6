// Package outline nests a document's H1–H3 sections into a tree.
package outline

import (
	"fmt"
	"io"
	"strings"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/markdown"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/render"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/section"
)

// Tree is the root of an outline. Words and Chars cover the whole document.
type Tree struct {
	Words    int     `json:"words"`
	Chars    int     `json:"chars"`
	Children []*Node `json:"children"`
}

// Node is one header section. Its counts include every nested section.
type Node struct {
	Title    string       `json:"title"`
	Rank     section.Rank `json:"rank"`
	Line     int          `json:"line"`
	Words    int          `json:"words"`
	Chars    int          `json:"chars"`
	Children []*Node      `json:"children,omitempty"`
}

// Build scans doc at every rank and nests the sections: an H2 sits under
// the nearest preceding H1, an H3 under the nearest preceding H1 or H2.
func Build(doc *document.Snapshot) *Tree {
	words, chars := section.Count(doc.Content())
	tree := &Tree{Words: words, Chars: chars, Children: []*Node{}}

	lines := doc.Lines()
	stack := make([]*Node, 0, section.MaxRank)

	for _, a := range section.Scan(doc, section.AllRanks) {
		n := &Node{
			Title: markdown.HeadingTitle(lines[a.Line].Text),
			Rank:  a.Rank,
			Line:  a.Line,
			Words: a.Words,
			Chars: a.Chars,
		}

		// Pop until the top is a coarser rank.
		for len(stack) > 0 && stack[len(stack)-1].Rank >= n.Rank {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			tree.Children = append(tree.Children, n)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
		}
		stack = append(stack, n)
	}
	return tree
}

// Walk visits every node depth-first in document order.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(t.Children, 0)
}

// Len is the number of sections in the tree.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(*Node, int) { n++ })
	return n
}

// Write prints the tree as an indented list with labels from r.
func Write(w io.Writer, t *Tree, r *render.Renderer, m render.Metrics) error {
	var err error
	t.Walk(func(n *Node, depth int) {
		if err != nil {
			return
		}
		label := r.Label(section.Annotation{Rank: n.Rank, Line: n.Line, Words: n.Words, Chars: n.Chars}, m)
		line := strings.Repeat("  ", depth) + strings.Repeat("#", int(n.Rank)) + " " + n.Title
		if label != "" {
			line += " " + label
		}
		_, err = fmt.Fprintln(w, line)
	})
	return err
}
