package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sabarim/doorstats/internal/config"
	"github.com/sabarim/doorstats/internal/logger"
	"github.com/sabarim/doorstats/internal/pipeline"
)

// options holds the command-line flags
type options struct {
	configFile          string
	inputPath           string
	outputDir           string
	format              string
	advancedTypesetting bool
	parquetEnabled      bool
	csvEnabled          bool
	reportPath          string
	verbose             bool
	version             bool
}

var versionString = "0.1.0"

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	// Define the root command
	rootCmd := &cobra.Command{
		Use:   "doorstats",
		Short: "Door event statistics and charts",
		Long:  `Reads a door open/close log and writes charts of event counts, openness and visit durations.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRootCommand(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Define flags
	flags := rootCmd.Flags()
	flags.StringVar(&opts.configFile, "config", "doorstats.yaml", "Path to optional config file")
	flags.StringVar(&opts.inputPath, "input", "", "Door log to read (default door.csv)")
	flags.StringVar(&opts.outputDir, "output-dir", "", "Directory for chart images (default .)")
	flags.StringVar(&opts.format, "format", "", "Image format: png, svg, pdf, ...")
	flags.BoolVar(&opts.advancedTypesetting, "advanced-typesetting", false, "Render labels with LaTeX when available")
	flags.BoolVar(&opts.csvEnabled, "csv", false, "Export aggregate series as CSV")
	flags.BoolVar(&opts.parquetEnabled, "parquet", false, "Archive events as Parquet")
	flags.StringVar(&opts.reportPath, "report", "", "Write a YAML report to this path")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	flags.BoolVar(&opts.version, "version", false, "Print version information")

	return rootCmd
}

func runRootCommand(cmd *cobra.Command, opts *options) error {
	// Check for version flag
	if opts.version {
		fmt.Fprintf(cmd.OutOrStdout(), "doorstats version %s\n", versionString)
		return nil
	}

	// 1. Load configuration and apply flag overrides
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Environment, opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	if cfg.Source != "" {
		log.Debug("Loaded config", zap.String("path", cfg.Source))
	}

	// 2. Cancel the run on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Run the pipeline
	p, err := pipeline.New(&cfg, log)
	if err != nil {
		return err
	}
	if _, err := p.Run(ctx); err != nil {
		return err
	}
	return nil
}

// resolveConfig loads the optional config file, then lets every flag the
// user set override the file value.
func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("error loading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input.Path = opts.inputPath
	}
	if flags.Changed("output-dir") {
		cfg.Charts.OutputDir = opts.outputDir
	}
	if flags.Changed("format") {
		cfg.Charts.Format = opts.format
	}
	if flags.Changed("advanced-typesetting") {
		cfg.Charts.AdvancedTypesetting = opts.advancedTypesetting
	}
	if flags.Changed("csv") {
		cfg.Export.CSVEnabled = opts.csvEnabled
	}
	if flags.Changed("parquet") {
		cfg.Export.ParquetEnabled = opts.parquetEnabled
	}
	if flags.Changed("report") {
		cfg.Export.ReportPath = opts.reportPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
