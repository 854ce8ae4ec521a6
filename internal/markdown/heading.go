// Package markdown extracts display text from markdown header lines.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// HeadingTitle returns the plain text of a header line with inline markup
// (emphasis, code spans, links) reduced to its text. Lines goldmark does not
// read as a heading fall back to the text after the leading '#' marker.
func HeadingTitle(line string) string {
	src := []byte(line)
	doc := md.Parser().Parse(text.NewReader(src))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			return strings.TrimSpace(inlineText(h, src))
		}
	}
	return strings.TrimSpace(strings.TrimLeft(line, "#"))
}

// inlineText concatenates the text segments under n.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
