package cli

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ledgerline/billparse/internal/backend"
	"github.com/ledgerline/billparse/internal/cache"
	"github.com/ledgerline/billparse/internal/config"
	"github.com/ledgerline/billparse/internal/pipeline"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "billparse",
	Short: "Billparse - utility bill extraction and normalization",
	Long: `Billparse turns utility bill PDFs (gas, water, electricity, trash)
into normalized, validated records.

It extracts fields with a pattern-based primary backend, falls back to
a model-based secondary backend when the primary result is weak, and
attaches a confidence score so low-quality extractions can be routed
to manual review instead of silently accepted.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Billparse.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("billparse v0.1.0")
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration, validates it for the given run mode
// and installs the global logger. Verbose mode forces debug-level
// console logging regardless of the configured format.
func loadConfig(mode string) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Format = "console"
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return nil, err
	}

	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPipeline wires extraction backends and the optional result
// cache from configuration. The primary backend is only constructed
// when its key is present; without it every document goes straight to
// the secondary backend.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	var primary backend.Backend
	if cfg.PDFCo.Key != "" {
		p, err := backend.NewPDFCo(backend.PDFCoConfig{
			APIKey:            cfg.PDFCo.Key,
			BaseURL:           cfg.PDFCo.BaseURL,
			Timeout:           time.Duration(cfg.PDFCo.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.PDFCo.RequestsPerSecond,
			Burst:             cfg.PDFCo.Burst,
			HTTPProxy:         cfg.PDFCo.HTTPProxy,
			HTTPSProxy:        cfg.PDFCo.HTTPSProxy,
		})
		if err != nil {
			return nil, eris.Wrap(err, "build primary backend")
		}
		primary = p
	}

	secondary, err := backend.NewOpenAI(backend.OpenAIConfig{
		APIKey:  cfg.OpenAI.Key,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Org:     cfg.OpenAI.Org,
	})
	if err != nil {
		return nil, eris.Wrap(err, "build secondary backend")
	}

	var opts []pipeline.Option
	if cfg.Cache.Enabled {
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		layered := cache.NewLayeredCache(ttl, cfg.Cache.Dir, ttl)
		opts = append(opts, pipeline.WithCache(layered, ttl))
	}

	return pipeline.NewPipeline(primary, secondary, opts...), nil
}
