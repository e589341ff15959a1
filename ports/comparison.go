package ports

import (
	"context"

	"handsplit/domain/batting"
)

// DatasetLoader reads player records from a file
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*batting.Dataset, error)
}

// MeanComparisonTest compares the means of two independent samples
type MeanComparisonTest interface {
	Name() string
	Compare(a, b []float64) (batting.TestResult, error)
}

// CohortProfiler describes a cohort
type CohortProfiler interface {
	Summarize(cohort batting.Cohort) (batting.CohortSummary, error)
}
