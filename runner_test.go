package pdflabels

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tsawler/pdflabels/engine"
	"github.com/tsawler/pdflabels/model"
)

// stubEngine produces one single-page record per opened file, or fails for
// paths in fail.
type stubEngine struct {
	fail map[string]bool
}

func (e *stubEngine) Open(path string) (engine.Document, error) {
	if e.fail != nil && e.fail[filepath.Base(path)] {
		return nil, errors.New("unreadable")
	}
	return &stubDocument{}, nil
}

type stubDocument struct{}

func (d *stubDocument) PageCount() int { return 1 }

func (d *stubDocument) Page(i int) (*model.Page, error) {
	char := &model.Char{
		BBox:     model.NewBBox(10, 700, 50, 712),
		FontName: "Helvetica",
		FontSize: 12,
		Upright:  true,
		Text:     "stub",
	}
	line := &model.TextLine{BBox: char.BBox, Nodes: []model.Node{char}}
	return &model.Page{Index: i, BBox: model.NewBBox(0, 0, 612, 792), Nodes: []model.Node{line}}, nil
}

func (d *stubDocument) Close() error { return nil }

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runRunner(t *testing.T, cfg Config, eng engine.Engine) (int, []model.FileResult) {
	t.Helper()

	r, err := NewRunner(cfg, eng, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	queued, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var results []model.FileResult
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatalf("output is not a valid JSON array: %v\n%s", err, data)
	}
	return queued, results
}

// ============================================================================
// Runs
// ============================================================================

func TestRunEmptyDirectoryWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Root:    dir,
		Output:  filepath.Join(t.TempDir(), "result.json"),
		Workers: 2,
		Filter:  "*.pdf",
	}

	queued, results := runRunner(t, cfg, &stubEngine{})
	if queued != 0 {
		t.Errorf("expected 0 queued files, got %d", queued)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result array, got %d records", len(results))
	}

	data, _ := os.ReadFile(cfg.Output)
	if string(data) != "[]" {
		t.Errorf("empty run output = %q, want %q", data, "[]")
	}
}

func TestRunProcessesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdf"))
	touch(t, filepath.Join(dir, "b.pdf"))
	touch(t, filepath.Join(dir, "nested", "c.pdf"))
	touch(t, filepath.Join(dir, "notes.txt"))

	cfg := Config{
		Root:    dir,
		Output:  filepath.Join(t.TempDir(), "result.json"),
		Workers: 2,
		Filter:  "*.pdf",
	}

	queued, results := runRunner(t, cfg, &stubEngine{})
	if queued != 3 {
		t.Errorf("expected 3 queued files, got %d", queued)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 records, got %d", len(results))
	}
	for _, r := range results {
		if filepath.Ext(r.Filename) != ".pdf" {
			t.Errorf("non-matching file in output: %s", r.Filename)
		}
		if len(r.Pages) != 1 || len(r.Pages[0].Labels) != 1 {
			t.Errorf("%s: unexpected record shape: %+v", r.Filename, r)
		}
	}
}

func TestRunFilterMatchesBaseNameOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "deep", "deeper", "report.pdf"))
	touch(t, filepath.Join(dir, "report.txt"))

	cfg := Config{
		Root:    dir,
		Output:  filepath.Join(t.TempDir(), "result.json"),
		Workers: 1,
		Filter:  "report.*",
	}

	queued, results := runRunner(t, cfg, &stubEngine{})
	if queued != 2 {
		t.Errorf("expected both report.* files queued, got %d", queued)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 records, got %d", len(results))
	}
}

func TestRunCountsQueuedNotWritten(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "good.pdf"))
	touch(t, filepath.Join(dir, "bad.pdf"))

	cfg := Config{
		Root:    dir,
		Output:  filepath.Join(t.TempDir(), "result.json"),
		Workers: 2,
		Filter:  "*.pdf",
	}

	queued, results := runRunner(t, cfg, &stubEngine{fail: map[string]bool{"bad.pdf": true}})
	if queued != 2 {
		t.Errorf("expected 2 queued files, got %d", queued)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 record for the readable file, got %d", len(results))
	}
}

func TestRunReplacesStaleOutput(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "result.json")
	if err := os.WriteFile(outPath, []byte(`[{"filename":"old"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{Root: t.TempDir(), Output: outPath, Workers: 1, Filter: "*.pdf"}
	_, results := runRunner(t, cfg, &stubEngine{})
	if len(results) != 0 {
		t.Errorf("stale output must be replaced, got %d records", len(results))
	}
}

// ============================================================================
// Configuration
// ============================================================================

func TestConfigValidate(t *testing.T) {
	valid := Config{Root: ".", Output: "out.json", Workers: 2, Filter: "*.pdf"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty root", func(c *Config) { c.Root = "" }, true},
		{"empty output", func(c *Config) { c.Output = "" }, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -3 }, true},
		{"malformed filter", func(c *Config) { c.Filter = "[" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PDFLABELS_OUTPUT", "custom.json")
	t.Setenv("PDFLABELS_WORKERS", "7")
	t.Setenv("PDFLABELS_FILTER", "*.PDF")

	cfg := ConfigFromEnv()
	if cfg.Output != "custom.json" {
		t.Errorf("Output = %q, want %q", cfg.Output, "custom.json")
	}
	if cfg.Workers != 7 {
		t.Errorf("Workers = %d, want 7", cfg.Workers)
	}
	if cfg.Filter != "*.PDF" {
		t.Errorf("Filter = %q, want %q", cfg.Filter, "*.PDF")
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("PDFLABELS_OUTPUT", "")
	t.Setenv("PDFLABELS_WORKERS", "")
	t.Setenv("PDFLABELS_FILTER", "")

	cfg := ConfigFromEnv()
	if cfg.Output != DefaultOutput || cfg.Workers != DefaultWorkers || cfg.Filter != DefaultFilter {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestConfigFromEnvIgnoresBadWorkerCount(t *testing.T) {
	for _, v := range []string{"zero", "-1", "0"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("PDFLABELS_WORKERS", v)
			cfg := ConfigFromEnv()
			if cfg.Workers != DefaultWorkers {
				t.Errorf("Workers = %d, want default %d", cfg.Workers, DefaultWorkers)
			}
		})
	}
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	_, err := NewRunner(Config{}, &stubEngine{}, nil)
	if err == nil {
		t.Fatal("expected error for zero-value config")
	}
}
