// Package pdflabels extracts labeled text from batches of PDF files.
//
// A run walks a directory tree, feeds every file whose name matches a glob
// pattern to a pool of concurrent extraction workers, and writes one JSON
// record per readable file to a single shared output array.
//
// Basic usage:
//
//	cfg := pdflabels.ConfigFromEnv()
//	cfg.Root = "invoices"
//
//	runner, err := pdflabels.NewRunner(cfg, engine.NewPDF(), logger)
//	if err != nil {
//	    // handle error
//	}
//	queued, err := runner.Run(ctx)
//
// Each record in the output array carries the file's name and, per page, the
// page bounding box and the flattened text labels with their font and
// position metadata.
package pdflabels

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tsawler/pdflabels/engine"
	"github.com/tsawler/pdflabels/output"
	"github.com/tsawler/pdflabels/queue"
	"github.com/tsawler/pdflabels/worker"
)

// Runner executes batch runs with a fixed configuration and engine.
type Runner struct {
	cfg    Config
	engine engine.Engine
	log    *zap.Logger
}

// NewRunner validates cfg and builds a Runner. A nil engine selects the
// production PDF engine; a nil logger disables logging.
func NewRunner(cfg Config, e engine.Engine, log *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if e == nil {
		e = engine.NewPDF()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, engine: e, log: log}, nil
}

// Run walks the configured root, queues every matching file for extraction,
// and blocks until all queued files are processed and the output file is
// finalized. It returns the number of files queued.
//
// The output file is valid JSON on any non-error return, including a run
// that queues no files at all.
func (r *Runner) Run(ctx context.Context) (int, error) {
	out, err := output.New(r.cfg.Output)
	if err != nil {
		return 0, err
	}

	q := queue.New()
	pool := worker.NewPool(r.cfg.Workers, q, r.engine, out, r.log)

	poolErr := make(chan error, 1)
	go func() { poolErr <- pool.Run(ctx) }()

	queued, walkErr := r.enqueue(q)

	// Wait for the queue to drain, but bail out if the pool dies first:
	// a dead pool leaves queued tasks unfinished forever.
	if walkErr == nil {
		joinCtx, cancelJoin := context.WithCancel(ctx)
		defer cancelJoin()
		joined := make(chan error, 1)
		go func() { joined <- q.Join(joinCtx) }()
		select {
		case walkErr = <-joined:
		case err := <-poolErr:
			q.Close()
			return queued, err
		}
	}

	q.Close()
	if err := <-poolErr; err != nil {
		return queued, err
	}
	if walkErr != nil {
		return queued, walkErr
	}

	if err := out.Finalize(); err != nil {
		return queued, err
	}
	r.log.Info("run complete",
		zap.Int("queued", queued),
		zap.Int("written", out.Count()),
		zap.String("output", out.Path()))
	return queued, nil
}

// enqueue walks the root directory and puts every matching file path on the
// queue, returning the number queued.
func (r *Runner) enqueue(q *queue.Queue) (int, error) {
	queued := 0
	err := filepath.WalkDir(r.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := filepath.Match(r.cfg.Filter, d.Name())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := q.Put(path); err != nil {
			return err
		}
		queued++
		return nil
	})
	if err != nil {
		return queued, fmt.Errorf("walking %s: %w", r.cfg.Root, err)
	}
	return queued, nil
}
