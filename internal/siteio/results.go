package siteio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/screening"
)

// Record is one scored batch row
type Record struct {
	ID         string
	Assessment *screening.Assessment
}

// factorColumns are the quantities of a successful safety factor
var factorColumns = []string{
	"safety_factor",
	"cyclic_stress_ratio",
	"adjusted_cyclic_resistance_ratio",
	"stress_reduction_factor",
	"magnitude_scaling_factor",
	"overburden_correction_factor",
}

// factorCells returns the factorColumns values, empty on failure.
func factorCells(f *liquefaction.Factors) []any {
	if f == nil {
		return make([]any, len(factorColumns))
	}
	return []any{f.SafetyFactor, f.CSR, f.CRRAdjusted, f.Rd, f.MSF, f.KSigma}
}

// ResultColumns returns the header of a batch result table.
func ResultColumns(withClassifier bool) []string {
	cols := append([]string{ColumnID}, InputColumns...)
	cols = append(cols, factorColumns...)
	cols = append(cols, "fs_class", "failure")
	if withClassifier {
		cols = append(cols, "probability", "risk", "classifier_error")
	}
	return cols
}

// cells returns the row values; nil marks an empty cell.
func (r Record) cells(withClassifier bool) []any {
	a := r.Assessment
	in := a.Input
	out := []any{r.ID}
	for _, v := range []*float64{
		in.Depth, in.PeakGroundAccel, in.TotalStress, in.EffectiveStress,
		in.Magnitude, in.BlowCount, in.FinesContent, in.MeanGrainSize,
	} {
		out = append(out, optional(v))
	}

	out = append(out, factorCells(a.Traditional.Factors)...)
	out = append(out, string(a.FSClass))
	if a.Traditional.Failure != nil {
		out = append(out, a.Traditional.Failure.Error())
	} else {
		out = append(out, nil)
	}

	if withClassifier {
		out = append(out, optional(a.Probability), string(a.Risk), emptyNil(a.ClassifierError))
	}
	return out
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func emptyNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// WriteRecords writes batch results as CSV or XLSX, chosen by extension.
func WriteRecords(path string, records []Record, withClassifier bool) error {
	format, err := TableFormatOf(path)
	if err != nil {
		return err
	}

	table := [][]any{toAny(ResultColumns(withClassifier))}
	for _, r := range records {
		table = append(table, r.cells(withClassifier))
	}

	if format == FormatXLSX {
		return writeSheet(path, table)
	}
	return writeCSV(path, table)
}

// WriteProfile exports a profile evaluation as an XLSX sheet, one row per
// layer with the critical layer flagged. risks adds the classifier columns
// when not nil and must follow the order of res.Layers.
func WriteProfile(path string, res *liquefaction.ProfileResult, risks []screening.LayerRisk) error {
	format, err := TableFormatOf(path)
	if err != nil {
		return err
	}
	if format != FormatXLSX {
		return fmt.Errorf("siteio: profile export must be .xlsx, got %q", filepath.Ext(path))
	}
	if risks != nil && len(risks) != len(res.Layers) {
		return fmt.Errorf("siteio: %d classifier results for %d layers", len(risks), len(res.Layers))
	}

	header := []string{"layer", "z_m"}
	header = append(header, factorColumns...)
	header = append(header, "class", "critical", "failure")
	if risks != nil {
		header = append(header, "probability", "risk", "classifier_error")
	}

	table := [][]any{toAny(header)}
	for i, lr := range res.Layers {
		row := []any{lr.Layer.Label(), optional(lr.Layer.Depth)}
		row = append(row, factorCells(lr.Result.Factors)...)
		row = append(row, string(lr.Class), i == res.Critical)
		if lr.Result.Failure != nil {
			row = append(row, lr.Result.Failure.Error())
		} else {
			row = append(row, nil)
		}
		if risks != nil {
			r := risks[i]
			row = append(row, optional(r.Probability), string(r.Risk), emptyNil(r.ClassifierError))
		}
		table = append(table, row)
	}
	return writeSheet(path, table)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func writeSheet(path string, table [][]any) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("siteio: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range table {
		for j, v := range row {
			if v == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("siteio: %w", err)
			}
			if err := f.SetCellValue(sheet, name, v); err != nil {
				return fmt.Errorf("siteio: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("siteio: save %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeCSV(path string, table [][]any) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("siteio: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("siteio: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for _, row := range table {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("siteio: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("siteio: %w", err)
	}
	return file.Close()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
