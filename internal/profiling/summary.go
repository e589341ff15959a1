package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"handsplit/domain/batting"
)

// CohortProfiler computes descriptive statistics for a cohort
type CohortProfiler struct{}

// NewCohortProfiler creates a new cohort profiler
func NewCohortProfiler() *CohortProfiler {
	return &CohortProfiler{}
}

// Summarize describes the cohort's averages. An empty cohort yields a zero
// count and NaN statistics rather than an error; whether that is fatal is
// for the significance test to decide.
func (p *CohortProfiler) Summarize(cohort batting.Cohort) (batting.CohortSummary, error) {
	summary := batting.CohortSummary{
		Handedness: cohort.Handedness,
		Count:      cohort.Size(),
		Mean:       math.NaN(),
		StdDev:     math.NaN(),
		Median:     math.NaN(),
		Min:        math.NaN(),
		Max:        math.NaN(),
	}
	if cohort.Size() == 0 {
		return summary, nil
	}

	data := stats.Float64Data(cohort.Averages)

	mean, err := data.Mean()
	if err != nil {
		return summary, err
	}
	median, err := data.Median()
	if err != nil {
		return summary, err
	}
	min, err := data.Min()
	if err != nil {
		return summary, err
	}
	max, err := data.Max()
	if err != nil {
		return summary, err
	}

	summary.Mean = mean
	summary.Median = median
	summary.Min = min
	summary.Max = max

	if cohort.Size() > 1 {
		// Sample standard deviation, matching the variance the t-test uses
		stdDev, err := stats.StandardDeviationSample(data)
		if err != nil {
			return summary, err
		}
		summary.StdDev = stdDev
	}

	if cohort.Size() >= 4 {
		q, err := stats.Quartile(data)
		if err != nil {
			return summary, err
		}
		summary.Outliers = detectOutliers(cohort.Averages, q.Q1, q.Q3)
	}

	return summary, nil
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
