// Package worker runs the concurrent extraction stage of a batch: a fixed
// pool of goroutines pulls file paths from a shared queue, extracts each
// file's labeled text through the engine, and appends one result record per
// successful file to the shared output aggregator.
//
// Failures are contained per file. A file that cannot be opened or read is
// logged and skipped without a record; only output write failures abort the
// run, since a broken output file invalidates every result.
package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/pdflabels/engine"
	"github.com/tsawler/pdflabels/flatten"
	"github.com/tsawler/pdflabels/model"
	"github.com/tsawler/pdflabels/output"
	"github.com/tsawler/pdflabels/queue"
)

// Pool is a fixed-size group of extraction workers bound to a queue, an
// engine, and an output aggregator.
type Pool struct {
	workers int
	queue   *queue.Queue
	engine  engine.Engine
	out     *output.Aggregator
	log     *zap.Logger
}

// NewPool creates a pool of n workers. Counts below one are raised to one.
func NewPool(n int, q *queue.Queue, e engine.Engine, out *output.Aggregator, log *zap.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{workers: n, queue: q, engine: e, out: out, log: log}
}

// Run starts the workers and blocks until the queue is closed and drained,
// the context is cancelled, or a worker hits a fatal output error.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		id := i
		g.Go(func() error {
			return p.runWorker(ctx, id)
		})
	}
	return g.Wait()
}

func (p *Pool) runWorker(ctx context.Context, id int) error {
	log := p.log.With(zap.Int("worker", id))
	for {
		path, err := p.queue.Get(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) {
				return nil
			}
			return err
		}
		if err := p.process(log, path); err != nil {
			return err
		}
	}
}

// process extracts one file and appends its record. The returned error is
// fatal for the run; per-file extraction failures are logged and absorbed.
func (p *Pool) process(log *zap.Logger, path string) (err error) {
	defer p.queue.TaskDone()
	defer func() {
		if r := recover(); r != nil {
			log.Error("extraction panicked", zap.String("file", path), zap.Any("panic", r))
			err = nil
		}
	}()

	log.Debug("extracting", zap.String("file", path))
	record, err := p.extract(path)
	if err != nil {
		log.Warn("skipping file", zap.String("file", path), zap.Error(err))
		return nil
	}

	if err := p.out.Append(record); err != nil {
		return fmt.Errorf("worker: writing result for %s: %w", path, err)
	}
	log.Info("file processed", zap.String("file", path), zap.Int("pages", len(record.Pages)))
	return nil
}

func (p *Pool) extract(path string) (model.FileResult, error) {
	doc, err := p.engine.Open(path)
	if err != nil {
		return model.FileResult{}, err
	}
	defer doc.Close()

	n := doc.PageCount()
	pages := make([]model.PageResult, 0, n)
	for i := 0; i < n; i++ {
		page, err := doc.Page(i)
		if err != nil {
			return model.FileResult{}, err
		}
		bbox, labels := flatten.Page(page)
		pages = append(pages, model.PageResult{
			Index:       page.Index,
			BoundingBox: bbox,
			Labels:      labels,
		})
	}
	return model.FileResult{Filename: path, Pages: pages}, nil
}
