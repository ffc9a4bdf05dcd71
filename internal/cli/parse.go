package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/billparse/internal/pipeline"
)

var (
	outJSON      string
	parseTimeout time.Duration
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file.pdf>",
	Short: "Parse a single utility bill PDF",
	Long: `Parse extracts a single utility bill PDF into a normalized record:
- Run the primary pattern-based extractor (when configured)
- Fall back to the model-based extractor on weak or failed results
- Validate the normalized record and attach a confidence score

Example:
  billparse parse bill.pdf
  billparse parse bill.pdf --json result.json
  billparse parse bill.pdf --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout)")
	parseCmd.Flags().DurationVar(&parseTimeout, "timeout", 3*time.Minute, "overall parse timeout")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
	defer cancel()

	cfg, err := loadConfig("parse")
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Parsing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", parseTimeout)
		fmt.Fprintln(os.Stderr)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	loader := pipeline.NewLoader(cfg.Parse.MaxDocumentBytes)
	doc, err := loader.Load(path)
	if err != nil {
		return err
	}

	result, err := p.Process(ctx, doc)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extraction method: %s\n", result.Method)
		fmt.Fprintf(os.Stderr, "✓ Confidence: %.2f\n", result.Bill.ConfidenceScore)
		if len(result.Issues) > 0 {
			fmt.Fprintf(os.Stderr, "⚠ Validation issues: %v\n", result.Issues)
		}
		if result.Bill.RequiresReview() {
			fmt.Fprintf(os.Stderr, "⚠ Flagged for manual review\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	return writeResult(result, outJSON)
}

// writeResult marshals a pipeline result as indented JSON to the given
// path, or to stdout when the path is empty.
func writeResult(result *pipeline.Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}
