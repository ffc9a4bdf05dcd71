package worker

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ledgerline/billparse/internal/pipeline"
)

// Processor defines the interface for processing a single document
type Processor interface {
	Process(ctx context.Context, document []byte) (*pipeline.Result, error)
}

// ParseJob represents a single-document parse job
type ParseJob struct {
	Path      string
	Loader    *pipeline.Loader
	Processor Processor
	Limiter   *Limiter
}

// Execute loads the document from disk and runs it through the processor
func (j *ParseJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, "batch"); err != nil {
			return &ParseResult{Path: j.Path, Error: err}
		}
	}

	doc, err := j.Loader.Load(j.Path)
	if err != nil {
		return &ParseResult{
			Path:  j.Path,
			Error: eris.Wrapf(err, "load %s", j.Path),
		}
	}

	result, err := j.Processor.Process(ctx, doc)
	if err != nil {
		return &ParseResult{Path: j.Path, Error: err}
	}
	return &ParseResult{Path: j.Path, Result: result}
}

// ParseResult represents the result of a parse job
type ParseResult struct {
	Path   string
	Result *pipeline.Result
	Error  error
}

// GetError returns the error from the parse result
func (r *ParseResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple documents concurrently
type BatchProcessor struct {
	processor   Processor
	loader      *pipeline.Loader
	limiter     *Limiter
	concurrency int
}

// NewBatchProcessor creates a new batch processor. When rps > 0, job
// starts are rate limited across all workers.
func NewBatchProcessor(processor Processor, loader *pipeline.Loader, concurrency int, rps float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if rps > 0 {
		limiter = NewLimiter(rps, burst)
	}
	return &BatchProcessor{
		processor:   processor,
		loader:      loader,
		limiter:     limiter,
		concurrency: concurrency,
	}
}

// ProcessPaths processes multiple document paths concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ParseResult {
	if len(paths) == 0 {
		return []*ParseResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start(ctx)

	for _, path := range paths {
		job := &ParseJob{
			Path:      path,
			Loader:    b.loader,
			Processor: b.processor,
			Limiter:   b.limiter,
		}
		pool.Submit(job)
	}

	results := pool.Wait()

	parseResults := make([]*ParseResult, len(results))
	for i, result := range results {
		parseResults[i] = result.(*ParseResult)
	}

	return parseResults
}

// ProcessDir lists PDF documents in a directory and processes them concurrently
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string) ([]*ParseResult, error) {
	if info, err := os.Stat(dir); err != nil {
		return nil, eris.Wrapf(err, "stat %s", dir)
	} else if !info.IsDir() {
		return nil, eris.Errorf("%s is not a directory", dir)
	}

	paths, err := b.loader.ListDocuments(dir)
	if err != nil {
		return nil, eris.Wrap(err, "list documents")
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("no PDF documents found in %s", dir)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ProcessListFile reads document paths from a file and processes them
// concurrently
func (b *BatchProcessor) ProcessListFile(ctx context.Context, listPath string) ([]*ParseResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, eris.Wrap(err, "read document list")
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("no document paths in %s", listPath)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file (one per line).
// Blank lines and # comments are skipped; duplicates are dropped.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, eris.Wrap(err, "open list file")
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "scan list file")
	}

	return paths, nil
}
