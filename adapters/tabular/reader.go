package tabular

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"handsplit/domain/batting"
	"handsplit/internal"
	"handsplit/internal/errors"
)

// MissingValues are the cell contents read as missing: the common NA
// spellings found in CSV dumps and spreadsheet exports
var MissingValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

const utf8BOM = "\ufeff"

// DataReader loads player records from CSV or Excel files
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{logger: logger}
}

// fileType picks the parser from the extension; anything but .xlsx is read as CSV
func fileType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}

// Load reads the file at path into a dataset. The table must carry
// handedness and avg columns, in any order; other columns are ignored.
func (r *DataReader) Load(ctx context.Context, path string) (*batting.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind := fileType(path)
	r.logger.Debug("[DataReader] Starting to read %s file: %s", kind, path)

	readStart := time.Now()
	var rows [][]string
	var err error
	switch kind {
	case "xlsx":
		rows, err = r.readExcelRows(path)
	default:
		rows, err = r.readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] %s file read in %.2fms (%d rows)",
		strings.ToUpper(kind), float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return buildDataset(path, rows)
}

// readCSVRows reads comma-separated text. The file is closed on every path.
func (r *DataReader) readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.FileAccess(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if stderrors.As(err, &parseErr) {
			return nil, errors.ParseError(fmt.Sprintf("malformed CSV in %s", path), err)
		}
		return nil, errors.FileAccess(path, err)
	}
	return rows, nil
}

// readExcelRows reads the first sheet of a workbook
func (r *DataReader) readExcelRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.FileAccess(path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to open Excel file %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.SchemaError(fmt.Sprintf("%s has no sheets", path))
	}

	// Raw values keep number formats such as percentages out of type detection
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	r.logger.Trace("[DataReader] using sheet %q of %d", sheets[0], len(sheets))
	return rows, nil
}

// buildDataset checks the header, lets gota infer column types and converts
// the frame into records
func buildDataset(source string, rows [][]string) (*batting.Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.Newf(errors.CodeSchemaError, "%s is empty: no columns to parse", source)
	}

	if len(rows[0]) == 0 {
		return nil, errors.Newf(errors.CodeSchemaError, "%s has an empty header row", source)
	}

	header := append([]string(nil), rows[0]...)
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	if err := checkSchema(header); err != nil {
		return nil, err
	}
	avgIdx := indexOf(header, batting.ColumnAvg)
	header = dedupeHeader(header)

	if len(rows) == 1 {
		return &batting.Dataset{Source: source}, nil
	}

	records := make([][]string, 0, len(rows))
	records = append(records, header)
	for i, row := range rows[1:] {
		normalized, err := normalizeRow(row, len(header))
		if err != nil {
			return nil, errors.ParseError(fmt.Sprintf("row %d of %s", i+1, source), err)
		}
		normalized[avgIdx] = strings.TrimSpace(normalized[avgIdx])
		records = append(records, normalized)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(MissingValues),
		dataframe.WithTypes(map[string]series.Type{
			batting.ColumnName:       series.String,
			batting.ColumnHandedness: series.String,
		}),
	)
	if df.Err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to load %s", source), df.Err)
	}

	return toDataset(source, df)
}

func checkSchema(header []string) error {
	var missing []string
	for _, required := range []string{batting.ColumnHandedness, batting.ColumnAvg} {
		if !contains(header, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return errors.SchemaError(fmt.Sprintf("missing required column(s): %s (found: %s)",
			strings.Join(missing, ", "), strings.Join(header, ", ")))
	}
	return nil
}

// normalizeRow pads short rows with missing cells; long rows are an error
func normalizeRow(row []string, width int) ([]string, error) {
	if len(row) > width {
		return nil, fmt.Errorf("expected %d fields, saw %d", width, len(row))
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded, nil
}

// dedupeHeader keeps the first column of each name and renames later
// repeats to name.1, name.2 and so on, so lookups by name hit the first one
func dedupeHeader(header []string) []string {
	taken := make(map[string]bool, len(header))
	for _, name := range header {
		taken[name] = true
	}

	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		n, dup := seen[name]
		if !dup {
			seen[name] = 0
			out[i] = name
			continue
		}
		candidate := name
		for taken[candidate] {
			n++
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		taken[candidate] = true
		seen[name] = n
		out[i] = candidate
	}
	return out
}

func toDataset(source string, df dataframe.DataFrame) (*batting.Dataset, error) {
	avgCol := df.Col(batting.ColumnAvg)
	if avgCol.Err != nil {
		return nil, errors.SchemaError(avgCol.Err.Error())
	}
	if err := checkNumeric(avgCol); err != nil {
		return nil, err
	}

	handCol := df.Col(batting.ColumnHandedness)
	if handCol.Err != nil {
		return nil, errors.SchemaError(handCol.Err.Error())
	}

	var nameCol *series.Series
	if contains(df.Names(), batting.ColumnName) {
		col := df.Col(batting.ColumnName)
		nameCol = &col
	}

	records := make([]batting.Record, df.Nrow())
	for i := range records {
		if e := handCol.Elem(i); !e.IsNA() {
			s := e.String()
			records[i].Handedness = &s
		}
		if e := avgCol.Elem(i); !e.IsNA() {
			f := e.Float()
			records[i].Avg = &f
		}
		if nameCol != nil {
			if e := nameCol.Elem(i); !e.IsNA() {
				s := e.String()
				records[i].Name = &s
			}
		}
	}

	return &batting.Dataset{Source: source, Records: records}, nil
}

// checkNumeric fails when the avg column holds a non-numeric value. A column
// of nothing but missing cells is detected as string and passes.
func checkNumeric(col series.Series) error {
	switch col.Type() {
	case series.Float, series.Int:
		return nil
	}
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			continue
		}
		if _, err := strconv.ParseFloat(e.String(), 64); err != nil {
			return errors.TypeConversion(fmt.Sprintf(
				"column %q must be numeric: could not convert %q in row %d", col.Name, e.String(), i+1))
		}
	}
	return nil
}

func contains(values []string, want string) bool {
	return indexOf(values, want) >= 0
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
