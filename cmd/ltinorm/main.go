package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/ltinorm/internal/config"
	"github.com/san-kum/ltinorm/internal/logger"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	relTol    float64
	maxLength int
	normName  string
	samples   int

	save      bool
	batchFile string
	verbose   bool
	plotPath  string
	format    string
	outPath   string
	kind      string
)

// main registers the ltinorm commands and executes the root command, exiting
// with status 1 on error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ltinorm",
		Short:        "gramians, balancing and L1 norm bounds for LTI systems",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				return nil
			}
			lvl, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}
			logger.SetLevel(lvl)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	gramCmd := &cobra.Command{
		Use:   "gram [preset]",
		Short: "print controllability and observability gramians",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGram,
	}
	systemFlags(gramCmd)

	normCmd := &cobra.Command{
		Use:   "norm [preset]",
		Short: "per-state norms from the controllability gramian",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runNorm,
	}
	systemFlags(normCmd)
	normCmd.Flags().StringVar(&normName, "norm", "", "norm to compute (H2)")

	balanceCmd := &cobra.Command{
		Use:   "balance [preset]",
		Short: "balanced realization and its transform",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBalance,
	}
	systemFlags(balanceCmd)

	hankelCmd := &cobra.Command{
		Use:   "hankel [preset]",
		Short: "Hankel singular values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHankel,
	}
	systemFlags(hankelCmd)

	l1Cmd := &cobra.Command{
		Use:   "l1 [preset]",
		Short: "bound the L1 norm of an analog SISO system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runL1,
	}
	systemFlags(l1Cmd)
	refinementFlags(l1Cmd)
	l1Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every refinement")
	l1Cmd.Flags().StringVar(&plotPath, "plot", "", "write the bound history to an image (png, svg, pdf)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [preset]",
		Short: "full report for one system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	systemFlags(analyzeCmd)
	refinementFlags(analyzeCmd)
	analyzeCmd.Flags().IntVar(&samples, "samples", 0, "impulse response samples")
	analyzeCmd.Flags().BoolVar(&save, "save", false, "store the report in the data directory")

	batchCmd := &cobra.Command{
		Use:   "batch [preset...]",
		Short: "analyze several presets concurrently (all when none given)",
		RunE:  runBatch,
	}
	refinementFlags(batchCmd)
	batchCmd.Flags().BoolVar(&save, "save", false, "store the reports in the data directory")
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "batch file path (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved reports",
		RunE:  runList,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "render a saved report",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the impulse response of a saved report",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved report as json, csv or an image",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json, csv, png, svg or pdf")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout for json and csv when empty)")
	exportCmd.Flags().StringVar(&kind, "kind", "response", "image content: response or hankel")

	watchCmd := &cobra.Command{
		Use:   "watch [preset]",
		Short: "watch the L1 bounds converge",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWatch,
	}
	systemFlags(watchCmd)
	refinementFlags(watchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  runPresets,
	}

	rootCmd.AddCommand(gramCmd, normCmd, balanceCmd, hankelCmd, l1Cmd, analyzeCmd,
		batchCmd, listCmd, showCmd, plotCmd, exportCmd, watchCmd, presetsCmd)
	return rootCmd
}

func systemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset system")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
}

func refinementFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&relTol, "rtol", 0, "relative half-width at which L1 refinement stops")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "ceiling on impulse samples per refinement")
}
