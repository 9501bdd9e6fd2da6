package engine

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pdflabels/model"
)

// letterBox is the fallback page geometry (US Letter) for pages whose
// MediaBox is missing or unparseable.
var letterBox = model.BBox{X0: 0, Y0: 0, X1: 612, Y1: 792}

// PDF is the production engine, reading the text layer of PDF documents.
//
// Each page's positioned glyph runs are grouped into lines: runs whose
// baselines fall within RowTolerance of each other form one horizontal line,
// and runs that advance downward at near-constant X form one vertical line.
// The resulting tree is a single text box of text lines, each line holding
// its glyph runs.
type PDF struct {
	// RowTolerance is the baseline Y tolerance, in points, for grouping
	// glyph runs into the same line.
	RowTolerance float64
}

// NewPDF creates an engine with the default row tolerance.
func NewPDF() *PDF {
	return &PDF{RowTolerance: 2.0}
}

// Open parses the PDF at path. Encrypted documents that cannot be read with
// an empty password fail with ErrNotExtractable.
func (e *PDF) Open(path string) (doc Document, err error) {
	// The underlying reader panics on some malformed cross-reference
	// tables; contain that as an open error.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("engine: opening %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		if isEncryptionError(err) {
			return nil, fmt.Errorf("engine: %s: %w", path, ErrNotExtractable)
		}
		return nil, fmt.Errorf("engine: opening %s: %w", path, err)
	}
	return &pdfDocument{file: f, reader: r, rowTol: e.RowTolerance}, nil
}

func isEncryptionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "encrypt") || strings.Contains(msg, "password")
}

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
	rowTol float64
}

func (d *pdfDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) Page(index int) (page *model.Page, err error) {
	// Content() panics on malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			page, err = nil, fmt.Errorf("engine: page %d: malformed content: %v", index+1, r)
		}
	}()

	p := d.reader.Page(index + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("engine: page %d: missing page object", index+1)
	}

	bbox := mediaBox(p)
	runs := cleanRuns(p.Content().Text)
	lines := buildLines(runs, d.rowTol)
	if len(lines) == 0 {
		return &model.Page{Index: index, BBox: bbox}, nil
	}

	boxBounds := lines[0].Bounds()
	for _, l := range lines[1:] {
		boxBounds = boxBounds.Union(l.Bounds())
	}

	return &model.Page{
		Index: index,
		BBox:  bbox,
		Nodes: []model.Node{&model.TextBox{BBox: boxBounds, Nodes: lines}},
	}, nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}

// mediaBox reads the page MediaBox, following Parent inheritance, with a US
// Letter fallback.
func mediaBox(p pdf.Page) model.BBox {
	v := p.V
	for i := 0; i < 16 && !v.IsNull(); i++ {
		if mb := v.Key("MediaBox"); !mb.IsNull() {
			if b, ok := parseBoxValue(mb); ok {
				return b
			}
		}
		v = v.Key("Parent")
	}
	return letterBox
}

func parseBoxValue(v pdf.Value) (model.BBox, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return model.BBox{}, false
	}
	var c [4]float64
	for i := range c {
		el := v.Index(i)
		switch el.Kind() {
		case pdf.Integer:
			c[i] = float64(el.Int64())
		case pdf.Real:
			c[i] = el.Float64()
		default:
			return model.BBox{}, false
		}
	}
	b := model.NewBBox(c[0], c[1], c[2], c[3])
	if b.IsEmpty() {
		return model.BBox{}, false
	}
	return b, true
}

// cleanRuns drops whitespace-only glyph runs and NFC-normalizes the rest.
func cleanRuns(texts []pdf.Text) []pdf.Text {
	cleaned := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		t.S = norm.NFC.String(t.S)
		cleaned = append(cleaned, t)
	}
	return cleaned
}

// buildLines turns cleaned glyph runs into text line nodes. Vertical runs
// are carved out of the stream first; the remaining runs are bucketed into
// rows by baseline Y and ordered top to bottom, left to right.
func buildLines(texts []pdf.Text, tol float64) []model.Node {
	horizontal, vertical := splitVertical(texts, tol)

	var lines []model.Node
	for _, run := range vertical {
		lines = append(lines, makeLine(run, false))
	}
	for _, row := range groupRows(horizontal, tol) {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		lines = append(lines, makeLine(row, true))
	}
	return lines
}

// splitVertical scans the stream for runs of glyphs stacked at near-constant
// X with strictly descending Y. Two or more stacked glyphs form a vertical
// line; everything else stays horizontal.
func splitVertical(texts []pdf.Text, tol float64) (horizontal []pdf.Text, vertical [][]pdf.Text) {
	i := 0
	for i < len(texts) {
		j := i + 1
		for j < len(texts) {
			prev, cur := texts[j-1], texts[j]
			drop := prev.Y - cur.Y
			if math.Abs(cur.X-prev.X) <= tol && drop > 0.5*math.Max(prev.FontSize, 1) {
				j++
				continue
			}
			break
		}
		if j-i >= 2 {
			run := make([]pdf.Text, j-i)
			copy(run, texts[i:j])
			vertical = append(vertical, run)
		} else {
			horizontal = append(horizontal, texts[i:j]...)
		}
		i = j
	}
	return horizontal, vertical
}

// groupRows buckets glyph runs by baseline Y within tol, returning rows
// ordered top to bottom (descending Y).
func groupRows(texts []pdf.Text, tol float64) [][]pdf.Text {
	if len(texts) == 0 {
		return nil
	}

	type bucket struct {
		yMin, yMax float64
		texts      []pdf.Text
	}

	var buckets []bucket
	for _, t := range texts {
		placed := false
		for i := range buckets {
			if t.Y >= buckets[i].yMin-tol && t.Y <= buckets[i].yMax+tol {
				buckets[i].texts = append(buckets[i].texts, t)
				buckets[i].yMin = math.Min(buckets[i].yMin, t.Y)
				buckets[i].yMax = math.Max(buckets[i].yMax, t.Y)
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, bucket{yMin: t.Y, yMax: t.Y, texts: []pdf.Text{t}})
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].yMax > buckets[j].yMax })

	rows := make([][]pdf.Text, len(buckets))
	for i, b := range buckets {
		rows[i] = b.texts
	}
	return rows
}

// makeLine wraps glyph runs in a text line node with a union bounding box.
func makeLine(run []pdf.Text, upright bool) *model.TextLine {
	nodes := make([]model.Node, len(run))
	bounds := charBox(run[0])
	for i, t := range run {
		c := &model.Char{
			BBox:     charBox(t),
			FontName: t.Font,
			FontSize: t.FontSize,
			Upright:  upright,
			Text:     t.S,
		}
		nodes[i] = c
		bounds = bounds.Union(c.BBox)
	}
	return &model.TextLine{BBox: bounds, Nodes: nodes}
}

func charBox(t pdf.Text) model.BBox {
	return model.NewBBox(t.X, t.Y, t.X+t.W, t.Y+t.FontSize)
}
