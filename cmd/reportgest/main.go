package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/reportgest/internal/config"
	"github.com/dgallion1/reportgest/internal/jsonblock"
	"github.com/dgallion1/reportgest/internal/parser"
	"github.com/dgallion1/reportgest/internal/pipeline"
	"github.com/dgallion1/reportgest/internal/record"
)

var version = "0.1.0"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	verbose  bool
	phrases  string
	jsonScan string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	gf := &globalFlags{}
	root := &cobra.Command{
		Use:   "reportgest",
		Short: "Extract catalog records from market report documents",
		Long: `reportgest reads word-processing report documents and extracts the
catalog fields a report listing needs: title, description markup, table of
contents, coverage table, FAQ and breadcrumb schema, and SEO metadata.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolVarP(&gf.verbose, "verbose", "v", false, "debug logging on stderr")
	root.PersistentFlags().StringVar(&gf.phrases, "phrases", "", "YAML phrase table (overrides PHRASES_FILE)")
	root.PersistentFlags().StringVar(&gf.jsonScan, "json-scan", "", "JSON block scanner: depth or strict (overrides JSON_SCAN)")

	root.AddCommand(extractCmd(gf))
	root.AddCommand(inspectCmd(gf))
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reportgest %s\n", version)
		},
	}
}

// setup loads configuration, applies the global flags and returns a logger
// writing text to stderr.
func (gf *globalFlags) setup(cmd *cobra.Command) (config.Config, *slog.Logger) {
	cfg := config.Load()
	if gf.phrases != "" {
		cfg.PhrasesFile = gf.phrases
	}
	if gf.jsonScan != "" {
		cfg.JSONScan = jsonblock.ParseMode(gf.jsonScan)
	}
	level := cfg.SlogLevel()
	if gf.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return cfg, log
}

// newExtractor builds the extractor the subcommands share.
func newExtractor(cfg config.Config) (*pipeline.Extractor, error) {
	opts, err := cfg.RecordOptions()
	if err != nil {
		return nil, err
	}
	return pipeline.NewExtractor(
		record.NewAssembler(opts),
		parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		cfg.DocTimeout,
		nil,
	), nil
}
