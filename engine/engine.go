// Package engine provides the document layout engine boundary.
//
// The pipeline never parses raw document bytes itself; it talks to an
// [Engine], which opens a document, verifies that text extraction is
// permitted, and produces one layout tree per page. The production
// implementation is [PDF], backed by the pure-Go text-layer reader from
// github.com/ledongthuc/pdf. Tests substitute in-memory implementations.
package engine

import (
	"errors"

	"github.com/tsawler/pdflabels/model"
)

// ErrNotExtractable reports that a document forbids text extraction, for
// example because it is encrypted.
var ErrNotExtractable = errors.New("engine: text extraction not allowed")

// Engine opens documents and exposes their page layout trees.
type Engine interface {
	// Open parses the document at path. It fails with ErrNotExtractable
	// when the document does not permit extraction, or with a descriptive
	// error for structurally broken documents.
	Open(path string) (Document, error)
}

// Document is one opened document. A Document belongs to the single worker
// that opened it and must be closed when done.
type Document interface {
	// PageCount reports the number of pages.
	PageCount() int
	// Page builds the layout tree for the page at the given zero-based
	// traversal index. The returned tree is owned by the caller.
	Page(index int) (*model.Page, error)
	// Close releases the underlying file.
	Close() error
}
