package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"handsplit/adapters/stats/ttest"
	"handsplit/adapters/tabular"
	"handsplit/app"
	"handsplit/internal"
	"handsplit/internal/config"
	"handsplit/internal/errors"
	"handsplit/internal/profiling"
	"handsplit/internal/render"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] ignoring unreadable .env file: %v", err)
	}

	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. On success exactly
// one line is written to stdout; on failure nothing is.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.IsAppError(err) {
			fmt.Fprintf(stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "handsplit [stats-file]",
		Short: "Test whether left- and right-handed hitters bat differently",
		Long: `Compare the batting averages of left-handed ("L") and right-handed ("R")
hitters with Welch's t-test at the 95% confidence level.

The input is a CSV (or .xlsx) file with at least the columns handedness and avg.
Rows missing either are dropped; handedness values other than exactly "L" or "R"
are ignored.

The result is printed as (NOT_SIGNIFICANT, (T_STATISTIC, P_VALUE)), where
NOT_SIGNIFICANT is True when p > 0.05, meaning the averages are statistically
indistinguishable, and False when p <= 0.05.

The file defaults to $BATTING_STATS_FILE, then src_data/baseball_stats.csv.

Example: handsplit src_data/baseball_stats.csv`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load()
			if err != nil {
				return err
			}

			path := appConfig.Data.StatsFile
			if len(args) == 1 {
				if strings.TrimSpace(args[0]) == "" {
					return errors.ConfigInvalid("stats file path is empty")
				}
				path = args[0]
			}

			logger := internal.NewLoggerTo(stderr, internal.ParseLogLevel(appConfig.Logging.Level, internal.LogLevelWarn))
			if verbose || appConfig.Logging.Verbose {
				logger.SetLevel(internal.LogLevelDebug)
			}

			comparator := app.NewAverageComparator(
				tabular.NewDataReader(logger),
				ttest.NewWelchTTest(),
				profiling.NewCohortProfiler(),
				logger,
			)

			comparison, err := comparator.Compare(cmd.Context(), path)
			if err != nil {
				return err
			}

			fmt.Fprintln(stdout, render.FormatTuple(comparison))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log cohort summaries and test details to stderr")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd
}
