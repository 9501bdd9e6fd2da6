package model

import "strings"

// NodeKind identifies the concrete type of a layout tree node.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindChar
	KindTextLine
	KindTextBox
	KindFigure
)

func (k NodeKind) String() string {
	switch k {
	case KindChar:
		return "Char"
	case KindTextLine:
		return "TextLine"
	case KindTextBox:
		return "TextBox"
	case KindFigure:
		return "Figure"
	default:
		return "Other"
	}
}

// Node is the interface implemented by all layout tree nodes.
type Node interface {
	Kind() NodeKind
	Bounds() BBox
	Children() []Node
}

// Page is the root of a single page's layout tree. Its bounding box is the
// page geometry reported by the document engine.
type Page struct {
	Index int
	BBox  BBox
	Nodes []Node
}

// Char is a single positioned glyph run with font information. Upright is
// false for vertically laid out text.
type Char struct {
	BBox     BBox
	FontName string
	FontSize float64
	Upright  bool
	Text     string
}

func (c *Char) Kind() NodeKind   { return KindChar }
func (c *Char) Bounds() BBox     { return c.BBox }
func (c *Char) Children() []Node { return nil }

// TextLine is a horizontal or vertical run of glyphs forming one line.
type TextLine struct {
	BBox  BBox
	Nodes []Node
}

func (l *TextLine) Kind() NodeKind   { return KindTextLine }
func (l *TextLine) Bounds() BBox     { return l.BBox }
func (l *TextLine) Children() []Node { return l.Nodes }

// Text returns the concatenated glyph content of the line, including any
// nested lines, without trimming.
func (l *TextLine) Text() string {
	var sb strings.Builder
	appendText(&sb, l.Nodes)
	return sb.String()
}

func appendText(sb *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Char:
			sb.WriteString(n.Text)
		case *TextLine:
			appendText(sb, n.Nodes)
		}
	}
}

// TextBox groups lines into a block of text.
type TextBox struct {
	BBox  BBox
	Nodes []Node
}

func (b *TextBox) Kind() NodeKind   { return KindTextBox }
func (b *TextBox) Bounds() BBox     { return b.BBox }
func (b *TextBox) Children() []Node { return b.Nodes }

// Figure is a container for graphical content, which may itself contain text.
type Figure struct {
	BBox  BBox
	Nodes []Node
}

func (f *Figure) Kind() NodeKind   { return KindFigure }
func (f *Figure) Bounds() BBox     { return f.BBox }
func (f *Figure) Children() []Node { return f.Nodes }

// Other is any node kind the extraction does not act on (rules, images,
// curves). It is never recursed into.
type Other struct {
	BBox BBox
	Name string
}

func (o *Other) Kind() NodeKind   { return KindOther }
func (o *Other) Bounds() BBox     { return o.BBox }
func (o *Other) Children() []Node { return nil }
