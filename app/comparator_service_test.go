package app

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"handsplit/adapters/stats/ttest"
	"handsplit/adapters/tabular"
	"handsplit/domain/batting"
	"handsplit/internal"
	"handsplit/internal/errors"
	"handsplit/internal/profiling"
)

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func newComparator() *AverageComparator {
	logger := quietLogger()
	return NewAverageComparator(tabular.NewDataReader(logger), ttest.NewWelchTTest(), profiling.NewCohortProfiler(), logger)
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "baseball_stats.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompare_ClearDifference(t *testing.T) {
	path := writeCSV(t, "name,handedness,avg\nA,L,0.250\nB,L,0.260\nC,R,0.300\nD,R,0.310\n")

	cmp, err := newComparator().Compare(context.Background(), path)
	require.NoError(t, err)

	assert.False(t, cmp.NotSignificant)
	assert.Less(t, cmp.Result.PValue, 0.05)
	assert.Less(t, cmp.Result.Statistic, 0.0, "left cohort is tested first and has the lower mean")
	assert.InDelta(t, 0.255, cmp.Left.Mean, 1e-12)
	assert.InDelta(t, 0.305, cmp.Right.Mean, 1e-12)
}

func TestCompare_IdenticalAverages(t *testing.T) {
	path := writeCSV(t, "name,handedness,avg\nA,L,0.250\nB,L,0.250\nC,R,0.250\nD,R,0.250\nE,R,0.250\n")

	cmp, err := newComparator().Compare(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, cmp.NotSignificant)
	assert.InDelta(t, 1.0, cmp.Result.PValue, 1e-12)
	assert.Equal(t, 0.0, cmp.Result.Statistic)
}

func TestCompare_NearlyIdenticalAverages(t *testing.T) {
	path := writeCSV(t, "name,handedness,avg\nA,L,0.270\nB,L,0.280\nC,L,0.275\nD,R,0.271\nE,R,0.279\nF,R,0.275\n")

	cmp, err := newComparator().Compare(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, cmp.NotSignificant)
	assert.Greater(t, cmp.Result.PValue, 0.9)
}

func TestCompare_MissingValuesExcluded(t *testing.T) {
	content := "name,handedness,avg\n" +
		"A,L,0.250\nB,L,0.260\nC,R,0.300\nD,R,0.310\n" +
		"E,,0.900\n" +
		"F,R,\n" +
		",L,0.255\n"
	path := writeCSV(t, content)

	cmp, err := newComparator().Compare(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, cmp.Left.Count, "record missing only a name is kept")
	assert.Equal(t, 2, cmp.Right.Count)
	assert.Equal(t, 2, cmp.Dropped)
}

func TestCompare_UnexpectedHandednessIgnored(t *testing.T) {
	base := "name,handedness,avg\nA,L,0.250\nB,L,0.262\nC,L,0.241\nD,R,0.300\nE,R,0.288\nF,R,0.310\n"
	noisy := base + "G,l,0.999\nH, R,0.001\nI,B,0.500\nJ,\"\",0.400\nK,S,0.100\n"

	clean, err := newComparator().Compare(context.Background(), writeCSV(t, base))
	require.NoError(t, err)
	dirty, err := newComparator().Compare(context.Background(), writeCSV(t, noisy))
	require.NoError(t, err)

	assert.Equal(t, clean.Result, dirty.Result)
	assert.Equal(t, clean.NotSignificant, dirty.NotSignificant)
	// the empty string is read as missing and dropped rather than unmatched
	assert.Equal(t, 4, dirty.Unmatched)
	assert.Equal(t, 1, dirty.Dropped)
}

func TestCompare_Idempotent(t *testing.T) {
	path := writeCSV(t, "name,handedness,avg\nA,L,0.301\nB,L,0.285\nC,L,0.262\nD,R,0.250\nE,R,0.268\nF,R,0.241\n")
	comparator := newComparator()

	first, err := comparator.Compare(context.Background(), path)
	require.NoError(t, err)
	second, err := comparator.Compare(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompare_EmptyCohort(t *testing.T) {
	path := writeCSV(t, "name,handedness,avg\nA,R,0.250\nB,R,0.260\nC,l,0.300\n")

	_, err := newComparator().Compare(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDegenerateInput, errors.GetCode(err))
}

func TestCompare_SinglePlayerCohortIsNotSignificant(t *testing.T) {
	path := writeCSV(t, "name,handedness,avg\nA,L,0.250\nC,R,0.300\nD,R,0.310\n")

	cmp, err := newComparator().Compare(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, cmp.NotSignificant)
	assert.True(t, math.IsNaN(cmp.Result.Statistic))
	assert.True(t, math.IsNaN(cmp.Result.PValue))
	assert.Equal(t, 1, cmp.Left.Count)
}

func TestCompare_LoadErrorsKeepTheirCode(t *testing.T) {
	_, err := newComparator().Compare(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeFileAccess, errors.GetCode(err))

	_, err = newComparator().Compare(context.Background(), writeCSV(t, "name,avg\nA,0.3\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaError, errors.GetCode(err))
}

// Mock implementations for testing
type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, path string) (*batting.Dataset, error) {
	args := m.Called(ctx, path)
	ds, _ := args.Get(0).(*batting.Dataset)
	return ds, args.Error(1)
}

type MockTest struct {
	mock.Mock
}

func (m *MockTest) Name() string {
	return "mock_test"
}

func (m *MockTest) Compare(a, b []float64) (batting.TestResult, error) {
	args := m.Called(a, b)
	return args.Get(0).(batting.TestResult), args.Error(1)
}

func TestCompare_PassesLeftThenRight(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, "players.csv").Return(&batting.Dataset{Records: []batting.Record{
		batting.NewRecord("A", "R", 0.300),
		batting.NewRecord("B", "L", 0.250),
		batting.NewRecord("C", "R", 0.310),
		batting.NewRecord("D", "L", 0.260),
	}}, nil)

	test := new(MockTest)
	test.On("Compare", []float64{0.250, 0.260}, []float64{0.300, 0.310}).
		Return(batting.TestResult{Statistic: -7.07, PValue: 0.019}, nil)

	comparator := NewAverageComparator(loader, test, profiling.NewCohortProfiler(), quietLogger())
	cmp, err := comparator.Compare(context.Background(), "players.csv")
	require.NoError(t, err)

	test.AssertExpectations(t)
	loader.AssertExpectations(t)
	assert.False(t, cmp.NotSignificant)
}

func TestCompare_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		pValue         float64
		notSignificant bool
	}{
		{0.01, false},
		{0.05, false},
		{0.0500001, true},
		{0.5, true},
	}

	for _, tt := range tests {
		loader := new(MockLoader)
		loader.On("Load", mock.Anything, mock.Anything).Return(&batting.Dataset{Records: []batting.Record{
			batting.NewRecord("A", "L", 0.250),
			batting.NewRecord("B", "R", 0.300),
		}}, nil)
		test := new(MockTest)
		test.On("Compare", mock.Anything, mock.Anything).Return(batting.TestResult{Statistic: 1, PValue: tt.pValue}, nil)

		cmp, err := NewAverageComparator(loader, test, profiling.NewCohortProfiler(), quietLogger()).
			Compare(context.Background(), "players.csv")
		require.NoError(t, err)
		assert.Equal(t, tt.notSignificant, cmp.NotSignificant, "p=%v", tt.pValue)
		assert.Equal(t, tt.pValue, cmp.Result.PValue)
	}
}

func TestCompare_CancelledContext(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(&batting.Dataset{}, nil)
	test := new(MockTest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAverageComparator(loader, test, profiling.NewCohortProfiler(), quietLogger()).Compare(ctx, "players.csv")
	assert.ErrorIs(t, err, context.Canceled)
	test.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
}

func TestCompare_NilDatasetIsInternalError(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(nil, nil)
	test := new(MockTest)

	_, err := NewAverageComparator(loader, test, profiling.NewCohortProfiler(), quietLogger()).
		Compare(context.Background(), "players.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))
	test.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
}
