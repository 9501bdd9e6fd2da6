// Command pdflabels walks the current directory tree, extracts labeled text
// from every PDF matching a glob pattern, and writes the results to a single
// JSON file.
//
// Usage:
//
//	pdflabels [-o output.json] [-p workers] [pattern]
//
// Settings may also come from PDFLABELS_* environment variables or a .env
// file; flags take precedence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tsawler/pdflabels"
	"github.com/tsawler/pdflabels/engine"
)

func main() {
	cfg := pdflabels.ConfigFromEnv()

	fs := flag.NewFlagSet("pdflabels", flag.ExitOnError)
	fs.StringVar(&cfg.Output, "o", cfg.Output, "path of the aggregated JSON output file")
	fs.IntVar(&cfg.Workers, "p", cfg.Workers, "number of concurrent extraction workers")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [-o output.json] [-p workers] [pattern]\n\n", fs.Name())
		fmt.Fprintf(fs.Output(), "Extracts labeled text from every file under the current directory\nwhose name matches pattern (default %q).\n\n", pdflabels.DefaultFilter)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if fs.NArg() > 0 {
		cfg.Filter = fs.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		os.Exit(2)
	}

	log, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pdflabels:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := pdflabels.NewRunner(cfg, engine.NewPDF(), log)
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	queued, err := runner.Run(ctx)
	if err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
	log.Info("done", zap.Int("files", queued), zap.String("output", cfg.Output))
}

func newLogger() (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	if os.Getenv("PDFLABELS_DEBUG") != "" {
		c.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return c.Build()
}
