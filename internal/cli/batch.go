package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/billparse/internal/pipeline"
	"github.com/ledgerline/billparse/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchRPS     float64
	batchBurst   int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|list-file>",
	Short: "Parse many PDF bills in parallel",
	Long: `Batch processes utility bill PDFs concurrently:
- Given a directory, parse every PDF in it
- Given a file, treat each line as a document path (# comments allowed)
- Parse documents in parallel with configurable worker count
- Write one normalized JSON result per document

Example:
  billparse batch ./bills
  billparse batch bills.txt --concurrency 8 --output-dir ./results
  billparse batch ./bills --rps 2 --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: batch.workers from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./billparse-results", "output directory for results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&batchRPS, "rps", 0, "max documents started per second (0 = unlimited)")
	batchCmd.Flags().IntVar(&batchBurst, "burst", 1, "rate limiter burst size")
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig("batch")
	if err != nil {
		return err
	}

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Billparse Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", input)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	loader := pipeline.NewLoader(cfg.Parse.MaxDocumentBytes)
	processor := worker.NewBatchProcessor(p, loader, workers, batchRPS, batchBurst)

	fmt.Fprintf(os.Stderr, "⚙️  Processing documents with %d workers...\n", workers)
	fmt.Fprintf(os.Stderr, "\n")

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	var results []*worker.ParseResult
	if info.IsDir() {
		results, err = processor.ProcessDir(ctx, input)
	} else {
		results, err = processor.ProcessListFile(ctx, input)
	}
	if err != nil {
		return fmt.Errorf("process batch: %w", err)
	}

	successCount := 0
	failureCount := 0
	reviewCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		successCount++

		jsonPath := filepath.Join(outputDir, resultFilename(result.Path))
		if err := writeResult(result.Result, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}

		if result.Result.Bill.RequiresReview() {
			reviewCount++
			fmt.Fprintf(os.Stderr, "⚠ %s (confidence: %.2f, needs review)\n", result.Path, result.Result.Bill.ConfidenceScore)
		} else {
			fmt.Fprintf(os.Stderr, "✓ %s (confidence: %.2f)\n", result.Path, result.Result.Bill.ConfidenceScore)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:         %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:       %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Needs review:  %d\n", reviewCount)
	fmt.Fprintf(os.Stderr, "  Failures:      %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:        %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// resultFilename derives an output file name from a document path.
func resultFilename(docPath string) string {
	base := filepath.Base(docPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "result"
	}
	if len(base) > 100 {
		base = base[:100]
	}
	return base + ".json"
}
