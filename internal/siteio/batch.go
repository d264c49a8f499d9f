package siteio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/screening"
)

// Batch table formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ColumnID names the optional row identifier column of a batch table.
const ColumnID = "id"

// InputColumns are the recognised input columns, in output order
var InputColumns = []string{"z_m", "a_max", "estres_v_total", "estres_v_ef", "Mw", "N1_60_cs", "FC", "D50"}

// Row is one site read from a batch table
type Row struct {
	Line  int // 1-based line in the source table
	ID    string
	Input screening.Input

	// Err is the first cell that is not a number; that field stays nil.
	Err *liquefaction.ComputeError
}

// Apply replaces the missing-field failures caused by an unparseable cell
// with the parse error. Only the methods that read the column are affected.
func (r Row) Apply(a *screening.Assessment) {
	if r.Err == nil {
		return
	}
	if slices.Contains(screening.FeatureNames, r.Err.Step) && a.Probability == nil {
		a.ClassifierError = r.Err.Error()
	}
	if slices.Contains(siteColumns, r.Err.Step) && !a.Traditional.OK() {
		a.Traditional.Failure = r.Err
	}
}

// siteColumns are the inputs of the safety factor
var siteColumns = InputColumns[:6]

// TableFormatOf returns the batch table format implied by the file extension.
func TableFormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("siteio: unsupported table type %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

// ReadRows reads a CSV or XLSX batch table. The first row is the header;
// columns are matched by name and unknown columns are ignored. Empty cells
// stay nil; a cell that is not a number stays nil and is reported in Row.Err.
func ReadRows(path string) ([]Row, error) {
	format, err := TableFormatOf(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("siteio: %w", err)
	}
	defer file.Close()

	var records [][]string
	switch format {
	case FormatCSV:
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		records, err = r.ReadAll()
	case FormatXLSX:
		records, err = readSheet(file)
	}
	if err != nil {
		return nil, fmt.Errorf("siteio: %s: %w", filepath.Base(path), err)
	}

	rows, err := parseRecords(records)
	if err != nil {
		return nil, fmt.Errorf("siteio: %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func readSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetRows(f.GetSheetName(0))
}

func parseRecords(records [][]string) ([]Row, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("table has no data rows")
	}

	columns := make(map[string]int)
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	found := false
	for _, name := range InputColumns {
		if _, ok := columns[name]; ok {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("header has none of the input columns %s", strings.Join(InputColumns, ", "))
	}

	var rows []Row
	for i, record := range records[1:] {
		line := i + 2
		if blank(record) {
			continue
		}

		row := Row{Line: line, ID: cell(record, columns, ColumnID)}
		if row.ID == "" {
			row.ID = strconv.Itoa(line - 1)
		}

		targets := map[string]**float64{
			"z_m":            &row.Input.Depth,
			"a_max":          &row.Input.PeakGroundAccel,
			"estres_v_total": &row.Input.TotalStress,
			"estres_v_ef":    &row.Input.EffectiveStress,
			"Mw":             &row.Input.Magnitude,
			"N1_60_cs":       &row.Input.BlowCount,
			"FC":             &row.Input.FinesContent,
			"D50":            &row.Input.MeanGrainSize,
		}
		for _, name := range InputColumns {
			text := cell(record, columns, name)
			if text == "" {
				continue
			}
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				if row.Err == nil {
					row.Err = &liquefaction.ComputeError{
						Kind:   liquefaction.InvalidInput,
						Step:   name,
						Detail: fmt.Sprintf("line %d: %q is not a number", line, text),
					}
				}
				continue
			}
			*targets[name] = &v
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func cell(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
