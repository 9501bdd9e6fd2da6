// Package model provides the shared data structures for layout extraction.
//
// This package defines two groups of types. The first is the layout tree that
// the document engine produces for each page: [Node] is the common interface,
// with [TextBox], [TextLine], [Char], [Figure], and [Other] as the concrete
// node kinds, and [Page] as the per-page root. The second is the extraction
// output: [Label] for a single positioned text run, [PageResult] for one page,
// and [FileResult] for one input document.
//
// # Geometry
//
// Positions use the PDF coordinate convention: [BBox] stores the lower-left
// corner (X0, Y0) and the upper-right corner (X1, Y1), with Y growing upward.
//
// # Layout Trees
//
// A layout tree is owned by the call that receives it and is never shared
// between goroutines. Traversal dispatches on the concrete node type:
//
//	switch n := node.(type) {
//	case *model.TextLine:
//	    // emit
//	case *model.TextBox, *model.Figure:
//	    // recurse
//	}
package model
