package pdflabels

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults applied when neither the environment nor the caller overrides a
// setting.
const (
	DefaultOutput  = "result.json"
	DefaultWorkers = 2
	DefaultFilter  = "*.pdf"
)

// Config holds the settings for one batch run.
type Config struct {
	// Root is the directory walked for input files.
	Root string

	// Output is the path of the aggregated JSON result file. Any existing
	// file at that path is replaced.
	Output string

	// Workers is the number of concurrent extraction workers.
	Workers int

	// Filter is a glob pattern matched against each file's base name.
	Filter string
}

// ConfigFromEnv builds a Config from defaults and PDFLABELS_* environment
// variables. A .env file in the working directory is loaded first if present.
//
// Recognized variables: PDFLABELS_OUTPUT, PDFLABELS_WORKERS and
// PDFLABELS_FILTER.
func ConfigFromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Root:    ".",
		Output:  DefaultOutput,
		Workers: DefaultWorkers,
		Filter:  DefaultFilter,
	}
	if v := os.Getenv("PDFLABELS_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("PDFLABELS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("PDFLABELS_FILTER"); v != "" {
		cfg.Filter = v
	}
	return cfg
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("config: root directory must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("config: output path must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if _, err := filepath.Match(c.Filter, "probe"); err != nil {
		return fmt.Errorf("config: invalid filter pattern %q: %w", c.Filter, err)
	}
	return nil
}
