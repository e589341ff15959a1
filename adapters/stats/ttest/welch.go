package ttest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"handsplit/domain/batting"
	"handsplit/internal/errors"
)

// MinSampleSize is the smallest sample with a defined unbiased variance.
// Smaller non-empty samples yield a NaN result rather than an error.
const MinSampleSize = 2

// WelchTTest compares two sample means without assuming equal variances
type WelchTTest struct{}

// NewWelchTTest creates a new Welch's t-test
func NewWelchTTest() *WelchTTest {
	return &WelchTTest{}
}

// Name returns the test name
func (w *WelchTTest) Name() string {
	return "welch_ttest"
}

// Compare runs a two-tailed Welch's t-test of a against b. The statistic is
// positive when a has the larger mean. An empty sample is an error; a sample
// of one gives NaN for the statistic and p-value.
func (w *WelchTTest) Compare(a, b []float64) (batting.TestResult, error) {
	if len(a) == 0 || len(b) == 0 {
		return batting.TestResult{}, errors.DegenerateInput(fmt.Sprintf(
			"welch t-test needs a non-empty sample on each side, got %d and %d",
			len(a), len(b)))
	}
	if len(a) < MinSampleSize || len(b) < MinSampleSize {
		return undefinedResult(), nil
	}

	n1 := float64(len(a))
	n2 := float64(len(b))

	// MeanVariance returns the unbiased (n-1) sample variance
	mean1, var1 := stat.MeanVariance(a, nil)
	mean2, var2 := stat.MeanVariance(b, nil)

	se1 := var1 / n1
	se2 := var2 / n2
	se := math.Sqrt(se1 + se2)

	if se == 0 {
		return zeroErrorResult(mean1, mean2), nil
	}

	tStat := (mean1 - mean2) / se

	// Degrees of freedom using Welch-Satterthwaite equation
	df := (se1 + se2) * (se1 + se2) / (se1*se1/(n1-1) + se2*se2/(n2-1))

	return batting.TestResult{
		Statistic:        tStat,
		PValue:           TwoTailedPValue(tStat, df),
		DegreesOfFreedom: df,
	}, nil
}

// TwoTailedPValue returns P(|T| >= |t|) for Student's t with df degrees of freedom
func TwoTailedPValue(t, df float64) float64 {
	if math.IsNaN(t) || math.IsNaN(df) || df <= 0 {
		return math.NaN()
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	// Survival keeps precision for tiny tails where 1-CDF rounds to zero
	return math.Min(1, 2*tDist.Survival(math.Abs(t)))
}

// undefinedResult is returned when a sample is too small to estimate its
// variance; a NaN p-value classifies as not significant
func undefinedResult() batting.TestResult {
	nan := math.NaN()
	return batting.TestResult{Statistic: nan, PValue: nan, DegreesOfFreedom: nan}
}

// zeroErrorResult handles two constant samples. Equal means carry no evidence
// of a difference; unequal means are infinitely far apart.
func zeroErrorResult(mean1, mean2 float64) batting.TestResult {
	switch {
	case mean1 == mean2:
		return batting.TestResult{Statistic: 0, PValue: 1, DegreesOfFreedom: math.NaN()}
	case mean1 > mean2:
		return batting.TestResult{Statistic: math.Inf(1), PValue: 0, DegreesOfFreedom: math.NaN()}
	default:
		return batting.TestResult{Statistic: math.Inf(-1), PValue: 0, DegreesOfFreedom: math.NaN()}
	}
}
