package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mdasilveira/folio/internal/config"
	"github.com/mdasilveira/folio/internal/site"
	"github.com/mdasilveira/folio/internal/watch"
)

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before rebuilding")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever an input file changes",
	Long: `Build once, then watch the local bibliographies, keyword index, topology
and folio.yml, rebuilding after each burst of changes. Remote sources are
not watched. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s := mustOpenSite()

	rebuild := func() {
		// folio.yml may have changed.
		cfg, err := config.Load(s.Root)
		if err == nil {
			err = cfg.Validate(s.Root)
		}
		if err != nil {
			logger.Warn("config invalid, keeping previous", zap.Error(err))
		} else {
			s = site.New(s.Root, cfg, logger)
		}
		report, err := s.Build(ctx)
		if err != nil {
			exitWithError(ExitError, "building site: %v", err)
		}
		printWatchReport(report)
	}
	rebuild()

	w, err := watch.New(s.Inputs(), func(changed []string) {
		logger.Info("inputs changed", zap.Strings("files", changed))
		rebuild()
	}, watch.WithDebounce(watchDebounce), watch.WithLogger(logger))
	if err != nil {
		exitWithError(ExitError, "watching inputs: %v", err)
	}

	if humanOutput {
		fmt.Printf("Watching %d files\n", len(w.Files()))
	}
	if err := w.Run(ctx); err != nil {
		exitWithError(ExitError, "watching inputs: %v", err)
	}
	return nil
}

func printWatchReport(report *site.Report) {
	if humanOutput {
		fmt.Printf("[%s] %s; graph %d nodes\n", time.Now().Format("15:04:05"), report.Status, report.Nodes)
		return
	}
	outputJSONCompact(report)
}
