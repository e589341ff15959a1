package app

import (
	"context"
	"fmt"
	"time"

	"handsplit/domain/batting"
	"handsplit/domain/core"
	"handsplit/internal"
	"handsplit/internal/errors"
	"handsplit/ports"
)

// AverageComparator decides whether left- and right-handed hitters have
// statistically different batting averages
type AverageComparator struct {
	loader   ports.DatasetLoader
	test     ports.MeanComparisonTest
	profiler ports.CohortProfiler
	logger   *internal.Logger
}

// NewAverageComparator creates a comparator
func NewAverageComparator(loader ports.DatasetLoader, test ports.MeanComparisonTest, profiler ports.CohortProfiler, logger *internal.Logger) *AverageComparator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AverageComparator{
		loader:   loader,
		test:     test,
		profiler: profiler,
		logger:   logger,
	}
}

// Compare loads the file at path, drops records missing handedness or avg,
// splits the rest into the "L" and "R" cohorts and tests left against right.
//
// The returned Comparison's NotSignificant is true when p > 0.05, i.e. when
// the cohorts are statistically indistinguishable.
func (c *AverageComparator) Compare(ctx context.Context, path string) (*batting.Comparison, error) {
	runID := core.NewRunID()
	log := c.logger.With("run " + runID.Short())
	startTime := time.Now()

	dataset, err := c.loader.Load(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	if dataset == nil {
		return nil, errors.InternalError(fmt.Sprintf("loader returned no dataset for %s", path))
	}

	cleaned := dataset.DropMissing()
	dropped := dataset.Len() - cleaned.Len()
	log.Info("loaded %d records from %s, %d dropped for missing handedness or avg", dataset.Len(), path, dropped)

	left, right, unmatched := cleaned.Split()
	if unmatched > 0 {
		log.Warn("%d records have a handedness other than %q or %q and were excluded", unmatched, batting.LeftHanded, batting.RightHanded)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	leftSummary, err := c.profiler.Summarize(left)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize left-handed cohort")
	}
	rightSummary, err := c.profiler.Summarize(right)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize right-handed cohort")
	}
	log.Debug("cohort L: n=%d mean=%.4f sd=%.4f median=%.4f outliers=%d",
		leftSummary.Count, leftSummary.Mean, leftSummary.StdDev, leftSummary.Median, leftSummary.Outliers)
	log.Debug("cohort R: n=%d mean=%.4f sd=%.4f median=%.4f outliers=%d",
		rightSummary.Count, rightSummary.Mean, rightSummary.StdDev, rightSummary.Median, rightSummary.Outliers)

	result, err := c.test.Compare(left.Averages, right.Averages)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("%s on %d left-handed and %d right-handed hitters",
			c.test.Name(), left.Size(), right.Size()))
	}

	comparison := &batting.Comparison{
		NotSignificant: batting.Classify(result.PValue),
		Result:         result,
		Left:           leftSummary,
		Right:          rightSummary,
		Dropped:        dropped,
		Unmatched:      unmatched,
	}

	log.Info("%s: t=%.6g df=%.4g p=%.6g not_significant=%t (%.2fms)",
		c.test.Name(), result.Statistic, result.DegreesOfFreedom, result.PValue,
		comparison.NotSignificant, float64(time.Since(startTime).Nanoseconds())/1e6)

	return comparison, nil
}
