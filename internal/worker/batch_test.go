package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledgerline/billparse/internal/pipeline"
)

// MockProcessor implements Processor interface
type MockProcessor struct {
	ShouldError bool
}

func (m *MockProcessor) Process(ctx context.Context, document []byte) (*pipeline.Result, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.ShouldError {
		return nil, errors.New("process error")
	}
	return &pipeline.Result{Method: "primary", OK: true}, nil
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 test document"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePDF(t, dir, "a.pdf"),
		writePDF(t, dir, "b.pdf"),
		writePDF(t, dir, "c.pdf"),
	}

	processor := NewBatchProcessor(&MockProcessor{}, pipeline.NewLoader(0), 2, 0, 0)
	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	successCount := 0
	for _, res := range results {
		if res.Error == nil {
			successCount++
			if res.Result == nil {
				t.Error("expected result for successful parse")
			}
		} else {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
	}

	if successCount != 3 {
		t.Errorf("expected 3 successes, got %d", successCount)
	}
}

func TestBatchProcessor_ProcessPaths_LargeBacklog(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 50)
	for i := range paths {
		paths[i] = writePDF(t, dir, fmt.Sprintf("bill%02d.pdf", i))
	}

	processor := NewBatchProcessor(&MockProcessor{}, pipeline.NewLoader(0), 1, 0, 0)

	done := make(chan []*ParseResult)
	go func() {
		done <- processor.ProcessPaths(context.Background(), paths)
	}()

	select {
	case results := <-done:
		if len(results) != len(paths) {
			t.Fatalf("expected %d results, got %d", len(paths), len(results))
		}
		for _, res := range results {
			if res.Error != nil {
				t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
			}
		}
	case <-time.After(10 * time.Second):
		t.Fatal("batch wedged on a directory larger than the worker queue")
	}
}

func TestBatchProcessor_ProcessPaths_ProcessorError(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writePDF(t, dir, "a.pdf")}

	processor := NewBatchProcessor(&MockProcessor{ShouldError: true}, pipeline.NewLoader(0), 2, 0, 0)
	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Result != nil {
		t.Error("expected nil result on error")
	}
}

func TestBatchProcessor_ProcessPaths_LoadError(t *testing.T) {
	processor := NewBatchProcessor(&MockProcessor{}, pipeline.NewLoader(0), 2, 0, 0)
	results := processor.ProcessPaths(context.Background(), []string{"no_such_file.pdf"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error for missing document, got nil")
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockProcessor{}, pipeline.NewLoader(0), 2, 0, 0)

	results := processor.ProcessPaths(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessDir(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "a.pdf")
	writePDF(t, dir, "b.PDF")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	processor := NewBatchProcessor(&MockProcessor{}, pipeline.NewLoader(0), 2, 0, 0)
	results, err := processor.ProcessDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("ProcessDir failed: %v", err)
	}

	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessDir_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&MockProcessor{}, pipeline.NewLoader(0), 2, 0, 0)

	_, err := processor.ProcessDir(context.Background(), "no_such_dir")
	if err == nil {
		t.Error("expected error for non-existent directory, got nil")
	}
}

func TestBatchProcessor_ProcessDir_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockProcessor{}, pipeline.NewLoader(0), 2, 0, 0)

	_, err := processor.ProcessDir(context.Background(), t.TempDir())
	if err == nil {
		t.Error("expected error for directory without documents, got nil")
	}
}

func TestBatchProcessor_ProcessListFile(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf")
	b := writePDF(t, dir, "b.pdf")

	list := filepath.Join(dir, "bills.txt")
	content := a + "\n# comment\n\n" + b + "\n" + a + "\n"
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	processor := NewBatchProcessor(&MockProcessor{}, pipeline.NewLoader(0), 2, 0, 0)
	results, err := processor.ProcessListFile(context.Background(), list)
	if err != nil {
		t.Fatalf("ProcessListFile failed: %v", err)
	}

	if len(results) != 2 {
		t.Errorf("expected 2 results after deduplication, got %d", len(results))
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	_, err := ReadPathsFromFile("no_such_list.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_RateLimited(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePDF(t, dir, "a.pdf"),
		writePDF(t, dir, "b.pdf"),
	}

	processor := NewBatchProcessor(&MockProcessor{}, pipeline.NewLoader(0), 2, 100, 1)
	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
	}
}

func TestParseResult_GetError(t *testing.T) {
	r1 := &ParseResult{Path: "a.pdf", Error: nil}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("parse failed")
	r2 := &ParseResult{Path: "a.pdf", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
