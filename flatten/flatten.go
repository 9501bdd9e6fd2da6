// Package flatten turns a page's layout tree into a flat list of labels.
//
// Flattening is a pure function over the tree: it performs a depth-first
// pre-order traversal, emits one [model.Label] for each text line that is
// non-empty after trimming, and recurses through text boxes and figures.
// Any other node kind is skipped. Output order is exactly traversal order.
package flatten

import (
	"strings"

	"github.com/tsawler/pdflabels/model"
)

// DefaultFontName is reported for lines that contain no glyphs at all.
const DefaultFontName = "unknown"

// Page flattens one page's layout tree, returning the page bounding box and
// the labels for every non-empty text line in traversal order. The returned
// slice is never nil.
func Page(page *model.Page) (model.BBox, []model.Label) {
	labels := make([]model.Label, 0)
	walk(page.Nodes, &labels)
	return page.BBox, labels
}

func walk(nodes []model.Node, labels *[]model.Label) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *model.TextLine:
			text := strings.TrimSpace(n.Text())
			if text == "" {
				continue
			}
			name, size, orientation := InferFont(n)
			b := n.Bounds()
			*labels = append(*labels, model.Label{
				X0:          b.X0,
				Y0:          b.Y0,
				X1:          b.X1,
				Y1:          b.Y1,
				FontName:    name,
				FontSize:    size,
				Orientation: orientation,
				Text:        text,
			})
		case *model.TextBox:
			walk(n.Nodes, labels)
		case *model.Figure:
			walk(n.Nodes, labels)
		}
	}
}

// InferFont reports the font name, size, and orientation of a text line by
// locating the first glyph beneath it in pre-order. Nested text lines are
// searched through transparently, so a font can be found via line-in-line
// wrapping. If the line contains no glyph at all it reports
// (DefaultFontName, 0, Horizontal).
func InferFont(line *model.TextLine) (string, float64, model.Orientation) {
	if c := firstChar(line.Nodes); c != nil {
		orientation := model.Vertical
		if c.Upright {
			orientation = model.Horizontal
		}
		return c.FontName, c.FontSize, orientation
	}
	return DefaultFontName, 0, model.Horizontal
}

// firstChar finds the first Char in pre-order, descending only into nested
// text lines.
func firstChar(nodes []model.Node) *model.Char {
	for _, n := range nodes {
		switch n := n.(type) {
		case *model.Char:
			return n
		case *model.TextLine:
			if c := firstChar(n.Nodes); c != nil {
				return c
			}
		}
	}
	return nil
}
