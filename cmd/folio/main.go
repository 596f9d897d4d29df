// Package main provides the folio CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mdasilveira/folio/internal/config"
	"github.com/mdasilveira/folio/internal/site"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	logger      = zap.NewNop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Static publication list and knowledge graph builder",
	Long: `folio builds the publication pages of an academic site.

It reads BibTeX bibliographies, a publication keyword index and a keyword
graph topology, and writes:
  - a filterable publication list grouped by year
  - an interactive D3 knowledge graph sized by keyword frequency
  - an optional static SVG snapshot of the graph

When the bibliography is unavailable the list falls back to titles from the
keyword index; when the topology is unavailable the graph falls back to the
copy embedded in the previous build.

All commands output JSON by default; use --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			logger = l
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log fallback decisions to stderr")
	rootCmd.Version = Version
}

// mustFindSite finds the site root, exits on error.
func mustFindSite() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.FindSite(config.StartDirectory(cwd))
	if err != nil {
		if errors.Is(err, config.ErrNoSite) && humanOutput {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	return root
}

// mustLoadConfig loads and validates configuration, exits on error.
func mustLoadConfig(root string) *config.Site {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Validate(root); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}

// mustOpenSite finds, loads and wires the current site.
func mustOpenSite() *site.Site {
	root := mustFindSite()
	return site.New(root, mustLoadConfig(root), logger)
}
