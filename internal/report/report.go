// Package report renders a screening assessment as a PDF document.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/alexiusacademia/goliq/internal/screening"
	"github.com/alexiusacademia/goliq/internal/version"
)

// Meta describes the report header
type Meta struct {
	Title   string
	Project string
	Author  string
	Date    time.Time
}

const (
	font       = "Helvetica"
	lineHeight = 6.0
	labelWidth = 70.0
	valueWidth = 40.0
	unitWidth  = 30.0
)

// Write renders the assessment to w.
func Write(w io.Writer, a *screening.Assessment, meta Meta) error {
	if meta.Title == "" {
		meta.Title = "Liquefaction Screening Report"
	}
	if meta.Date.IsZero() {
		meta.Date = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, false)
	pdf.SetAuthor(meta.Author, false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("goliq v%s - page %d", version.Version, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(font, "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont(font, "", 11)
	if meta.Project != "" {
		pdf.Cell(0, lineHeight, fmt.Sprintf("Project: %s", meta.Project))
		pdf.Ln(lineHeight)
	}
	if meta.Author != "" {
		pdf.Cell(0, lineHeight, fmt.Sprintf("Author: %s", meta.Author))
		pdf.Ln(lineHeight)
	}
	pdf.Cell(0, lineHeight, fmt.Sprintf("Date: %s", meta.Date.Format("2006-01-02")))
	pdf.Ln(10)

	writeInputs(pdf, a.Input)
	writeTraditional(pdf, a)
	writeClassifier(pdf, a)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// WriteFile renders the assessment to a file.
func WriteFile(path string, a *screening.Assessment, meta Meta) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := Write(f, a, meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont(font, "B", 13)
	pdf.Cell(0, 8, text)
	pdf.Ln(9)
	pdf.SetFont(font, "", 11)
}

func row(pdf *gofpdf.Fpdf, label, value, unit string) {
	pdf.CellFormat(labelWidth, lineHeight, label, "B", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, lineHeight, value, "B", 0, "R", false, 0, "")
	pdf.CellFormat(unitWidth, lineHeight, unit, "B", 1, "L", false, 0, "")
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func writeInputs(pdf *gofpdf.Fpdf, in screening.Input) {
	heading(pdf, "Input Summary")
	row(pdf, "Depth, z", optional(in.Depth, "%.2f"), "m")
	row(pdf, "Peak ground acceleration, a_max", optional(in.PeakGroundAccel, "%.3f"), "g")
	row(pdf, "Total vertical stress, sigma_v", optional(in.TotalStress, "%.1f"), "kPa")
	row(pdf, "Effective vertical stress, sigma'_v", optional(in.EffectiveStress, "%.1f"), "kPa")
	row(pdf, "Moment magnitude, Mw", optional(in.Magnitude, "%.2f"), "")
	row(pdf, "Corrected blow count, (N1)60cs", optional(in.BlowCount, "%.1f"), "blows/ft")
	row(pdf, "Fines content, FC", optional(in.FinesContent, "%.1f"), "%")
	row(pdf, "Mean grain size, D50", optional(in.MeanGrainSize, "%.3f"), "mm")
	pdf.Ln(6)
}

func writeTraditional(pdf *gofpdf.Fpdf, a *screening.Assessment) {
	heading(pdf, "Simplified Procedure (Seed-Idriss)")

	f := a.Traditional.Factors
	if f == nil {
		pdf.SetTextColor(180, 0, 0)
		pdf.MultiCell(0, lineHeight, fmt.Sprintf("Calculation failed: %v", a.Traditional.Failure), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
		return
	}

	row(pdf, "Stress reduction factor, rd", fmt.Sprintf("%.4f", f.Rd), "")
	row(pdf, "Cyclic stress ratio, CSR", fmt.Sprintf("%.4f", f.CSR), "")
	row(pdf, "Magnitude scaling factor, MSF", fmt.Sprintf("%.4f", f.MSF), "")
	row(pdf, "Overburden correction, K_sigma", fmt.Sprintf("%.4f", f.KSigma), "")
	row(pdf, "CRR for Mw 7.5", fmt.Sprintf("%.4f", f.CRR75), "")
	row(pdf, "Adjusted CRR", fmt.Sprintf("%.4f", f.CRRAdjusted), "")
	pdf.SetFont(font, "B", 11)
	row(pdf, "Factor of safety, FS", fmt.Sprintf("%.3f", f.SafetyFactor), "")
	pdf.SetFont(font, "", 11)
	pdf.Ln(3)

	pdf.SetFont(font, "B", 11)
	pdf.Cell(0, lineHeight, string(a.FSClass))
	pdf.Ln(lineHeight)
	pdf.SetFont(font, "", 11)
	pdf.MultiCell(0, lineHeight, a.FSClass.Interpretation(), "", "L", false)
	pdf.Ln(6)
}

func writeClassifier(pdf *gofpdf.Fpdf, a *screening.Assessment) {
	heading(pdf, "Machine-Learning Classifier")

	if a.Probability == nil {
		pdf.SetTextColor(180, 0, 0)
		pdf.MultiCell(0, lineHeight, fmt.Sprintf("Classifier unavailable: %s", a.ClassifierError), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		return
	}

	row(pdf, "Probability of liquefaction", fmt.Sprintf("%.1f", *a.Probability*100), "%")
	pdf.Ln(3)
	pdf.SetFont(font, "B", 11)
	pdf.Cell(0, lineHeight, string(a.Risk))
	pdf.Ln(lineHeight)
	pdf.SetFont(font, "", 11)
	pdf.MultiCell(0, lineHeight, a.Risk.Interpretation(), "", "L", false)
	pdf.Ln(6)

	if a.Explanation == nil {
		return
	}

	heading(pdf, "Feature Attribution")
	row(pdf, "Base value", fmt.Sprintf("%.4f", a.Explanation.Base), "")
	for _, attr := range a.Explanation.Ranked() {
		row(pdf, fmt.Sprintf("%s = %g", attr.Feature, attr.Value), fmt.Sprintf("%+.4f", attr.Contribution), "")
	}
	pdf.SetFont(font, "B", 11)
	row(pdf, "Prediction", fmt.Sprintf("%.4f", a.Explanation.Prediction), "")
	pdf.SetFont(font, "", 11)
}
