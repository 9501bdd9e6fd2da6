package model

// Orientation is the writing direction of a text run: "H" for horizontal
// (upright glyphs), "V" for vertical.
type Orientation string

const (
	Horizontal Orientation = "H"
	Vertical   Orientation = "V"
)

// Label is one extracted text run with position, font, and orientation
// metadata. Text is always non-empty after trimming; empty lines never
// produce labels.
type Label struct {
	X0          float64     `json:"x0"`
	Y0          float64     `json:"y0"`
	X1          float64     `json:"x1"`
	Y1          float64     `json:"y1"`
	FontName    string      `json:"fontname"`
	FontSize    float64     `json:"fontsize"`
	Orientation Orientation `json:"orientation"`
	Text        string      `json:"text"`
}

// PageResult is the extraction output for one page. Index is the zero-based
// position of the page in the document's traversal order, not its printed
// page number.
type PageResult struct {
	Index       int     `json:"index"`
	BoundingBox BBox    `json:"bounding_box"`
	Labels      []Label `json:"labels"`
}

// FileResult is the complete extraction output for one input document and
// the unit of output serialization.
type FileResult struct {
	Filename string       `json:"filename"`
	Pages    []PageResult `json:"pages"`
}
