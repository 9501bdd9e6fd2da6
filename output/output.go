// Package output serializes extraction results into one shared JSON array
// file.
//
// Multiple workers append concurrently; a single mutex guards the entire
// check-then-write sequence of each append so records never interleave and
// the array-open delimiter is written exactly once. Until [Aggregator.Finalize]
// runs, the file is a truncated array missing its closing bracket; this is a
// documented consequence of the incremental-write design, not a state the
// package guards against.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/tsawler/pdflabels/model"
)

// ErrFinalized is returned by Append and Finalize once the array has been
// closed.
var ErrFinalized = errors.New("output: already finalized")

// Aggregator appends file results to a growing JSON array under mutual
// exclusion. One Aggregator guards one output file for the lifetime of a run.
type Aggregator struct {
	mu        sync.Mutex
	path      string
	appended  int
	finalized bool
}

// New creates an aggregator for the given path, removing any pre-existing
// file from an earlier run.
func New(path string) (*Aggregator, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("output: removing stale %s: %w", path, err)
	}
	return &Aggregator{path: path}, nil
}

// Path returns the output file path.
func (a *Aggregator) Path() string {
	return a.path
}

// Append serializes one record onto the array. The first append of the run
// opens the array with '['; every later one separates with ','. The
// existence check and the write happen under one lock acquisition, so two
// workers can never both open the array.
func (a *Aggregator) Append(record model.FileResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return ErrFinalized
	}

	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return fmt.Errorf("output: encoding %s: %w", record.Filename, err)
	}

	delim := ","
	if _, err := os.Stat(a.path); errors.Is(err, fs.ErrNotExist) {
		delim = "["
	} else if err != nil {
		return fmt.Errorf("output: stat %s: %w", a.path, err)
	}

	if err := a.write(append([]byte(delim), data...)); err != nil {
		return err
	}
	a.appended++
	return nil
}

// Finalize closes the array. For a run with no appended records the file
// becomes exactly "[]". Finalize must be called once, after all appends have
// completed.
func (a *Aggregator) Finalize() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return ErrFinalized
	}

	closing := "]"
	if a.appended == 0 {
		closing = "[]"
	}
	if err := a.write([]byte(closing)); err != nil {
		return err
	}
	a.finalized = true
	return nil
}

// Count reports how many records have been appended so far.
func (a *Aggregator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.appended
}

// write appends bytes to the output file, creating it on first use. Callers
// hold the lock.
func (a *Aggregator) write(data []byte) error {
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("output: opening %s: %w", a.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("output: writing %s: %w", a.path, err)
	}
	return nil
}
