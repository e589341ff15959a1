package batting

// Column names recognised in the input table
const (
	ColumnName       = "name"
	ColumnHandedness = "handedness"
	ColumnAvg        = "avg"
)

// Handedness codes. Matching is exact: "l", " R" or "B" belong to neither cohort.
const (
	LeftHanded  = "L"
	RightHanded = "R"
)

// SignificanceLevel is the p-value threshold at or below which the cohorts
// are considered different (95% confidence)
const SignificanceLevel = 0.05

// Record is one player row. A nil field was missing in the source.
type Record struct {
	Name       *string
	Handedness *string
	Avg        *float64
}

// NewRecord builds a fully populated record
func NewRecord(name, handedness string, avg float64) Record {
	return Record{Name: &name, Handedness: &handedness, Avg: &avg}
}

// Complete reports whether the fields needed for the comparison are present
func (r Record) Complete() bool {
	return r.Handedness != nil && r.Avg != nil
}

// Dataset is an ordered collection of records loaded from one source
type Dataset struct {
	Source  string
	Records []Record
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.Records)
}

// DropMissing returns a new dataset without records missing handedness or avg.
// Records missing only a name are kept.
func (d *Dataset) DropMissing() *Dataset {
	kept := make([]Record, 0, len(d.Records))
	for _, r := range d.Records {
		if r.Complete() {
			kept = append(kept, r)
		}
	}
	return &Dataset{Source: d.Source, Records: kept}
}

// Split partitions complete records into the left and right cohorts.
// Records with any other handedness value are left out of both and counted
// in unmatched. Incomplete records are skipped as well.
func (d *Dataset) Split() (left, right Cohort, unmatched int) {
	left = Cohort{Handedness: LeftHanded}
	right = Cohort{Handedness: RightHanded}

	for _, r := range d.Records {
		if !r.Complete() {
			continue
		}
		switch *r.Handedness {
		case LeftHanded:
			left.Averages = append(left.Averages, *r.Avg)
		case RightHanded:
			right.Averages = append(right.Averages, *r.Avg)
		default:
			unmatched++
		}
	}
	return left, right, unmatched
}

// Cohort is the batting averages of the players sharing one handedness code
type Cohort struct {
	Handedness string
	Averages   []float64
}

// Size returns the number of players in the cohort
func (c Cohort) Size() int {
	return len(c.Averages)
}

// TestResult is the raw output of a two-sample significance test
type TestResult struct {
	Statistic        float64 `json:"statistic"`
	PValue           float64 `json:"p_value"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
}

// CohortSummary holds descriptive statistics for one cohort
type CohortSummary struct {
	Handedness string  `json:"handedness"`
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Median     float64 `json:"median"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	// Outliers counts averages beyond 1.5 IQR of the quartiles
	Outliers int `json:"outliers"`
}

// Comparison is the outcome of comparing left- and right-handed averages.
//
// NotSignificant is true when the averages are statistically
// indistinguishable (p > 0.05) and false when they differ (p <= 0.05).
// Note the polarity: true does NOT mean "there is a difference".
type Comparison struct {
	NotSignificant bool          `json:"not_significant"`
	Result         TestResult    `json:"result"`
	Left           CohortSummary `json:"left"`
	Right          CohortSummary `json:"right"`
	// Dropped counts records missing handedness or avg
	Dropped int `json:"dropped"`
	// Unmatched counts complete records whose handedness is neither "L" nor "R"
	Unmatched int `json:"unmatched"`
}

// Classify applies the decision rule to a p-value. A NaN p-value compares
// false against the threshold and therefore classifies as not significant.
func Classify(pValue float64) bool {
	return !(pValue <= SignificanceLevel)
}
