package siteio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/screening"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const siteJSON = `{
  "z_m": 10, "a_max": 0.4, "estres_v_total": 180, "estres_v_ef": 100,
  "Mw": 7.5, "N1_60_cs": 15, "FC": 10, "D50": 0.25
}`

const siteYAML = `
z_m: 10
a_max: 0.4
estres_v_total: 180
estres_v_ef: 100
Mw: 7.5
N1_60_cs: 15
FC: 10
D50: 0.25
`

func TestLoadInput_JSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := LoadInput(writeFile(t, "site.json", siteJSON))
	require.NoError(t, err)
	fromYAML, err := LoadInput(writeFile(t, "site.yml", siteYAML))
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	require.NotNil(t, fromJSON.EffectiveStress)
	assert.Equal(t, 100.0, *fromJSON.EffectiveStress)
	require.NotNil(t, fromJSON.MeanGrainSize)
	assert.Equal(t, 0.25, *fromJSON.MeanGrainSize)
}

func TestLoadInput_MissingValueReachesCalculator(t *testing.T) {
	in, err := LoadInput(writeFile(t, "site.json", `{"z_m": 10, "a_max": null}`))
	require.NoError(t, err)
	assert.Nil(t, in.PeakGroundAccel)

	res := liquefaction.ComputeInput(in.SiteInput)
	require.False(t, res.OK())
	assert.Equal(t, liquefaction.InvalidInput, res.Failure.Kind)
	assert.Equal(t, "a_max", res.Failure.Step)
}

func TestLoadInput_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"unknown key json": `{"z_m": 10, "depth": 10}`,
		"string value":     `{"z_m": "deep"}`,
		"not an object":    `[1, 2]`,
		"malformed":        `{"z_m": `,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadInput(writeFile(t, "site.json", doc))
			assert.Error(t, err)
		})
	}

	_, err := LoadInput(writeFile(t, "site.yaml", "z_m: 10\nZ_M: 12\n"))
	assert.Error(t, err)

	_, err = LoadInput(writeFile(t, "site.txt", siteJSON))
	assert.Error(t, err)
}

func TestLoadProfile(t *testing.T) {
	path := writeFile(t, "borehole-3.yaml", `
description: river terrace
layers:
  - name: silty sand
    z_m: 8
    a_max: 0.3
    estres_v_total: 150
    estres_v_ef: 90
    Mw: 7.5
    N1_60_cs: 12
    FC: 25
  - z_m: 3
    a_max: 0.3
    estres_v_total: 55
    estres_v_ef: 45
    Mw: 7.5
    N1_60_cs: 20
`)
	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "borehole-3", p.Name)
	assert.Equal(t, "river terrace", p.Description)
	require.Len(t, p.Layers, 2)
	assert.Equal(t, "silty sand", p.Layers[0].Name)
	require.NotNil(t, p.Layers[0].FinesContent)
	assert.Equal(t, 25.0, *p.Layers[0].FinesContent)
	assert.Nil(t, p.Layers[1].FinesContent)

	res, err := p.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, "z = 3.00 m", res.Layers[0].Layer.Label())
}

func TestLoadProfile_NoLayers(t *testing.T) {
	_, err := LoadProfile(writeFile(t, "p.json", `{"name": "empty", "layers": []}`))
	assert.Error(t, err)
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios(writeFile(t, "eq.yaml", `
scenarios:
  - id: OBE
    description: operating basis
    a_max: 0.2
    Mw: 6.5
  - id: MCE
    a_max: 0.45
    Mw: 7.8
`))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "MCE", scenarios[1].ID)
	assert.Equal(t, 0.45, scenarios[1].PGA)

	_, err = LoadScenarios(writeFile(t, "eq.json",
		`{"scenarios": [{"id": "A", "a_max": 0.2, "Mw": 6}, {"id": "A", "a_max": 0.3, "Mw": 7}]}`))
	assert.ErrorContains(t, err, "duplicate")

	_, err = LoadScenarios(writeFile(t, "eq.json", `{"scenarios": [{"id": "A", "a_max": -0.1, "Mw": 6}]}`))
	assert.Error(t, err)
}

func TestReadRows_CSV(t *testing.T) {
	path := writeFile(t, "batch.csv", `id,z_m,a_max,estres_v_total,estres_v_ef,Mw,N1_60_cs,FC,D50,notes
B1-5,5,0.2,90,60,7.5,40,5,0.3,dense

,10,0.4,180,100,7.5,15,,0.25,
`)
	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "B1-5", rows[0].ID)
	assert.Equal(t, 2, rows[0].Line)
	require.NotNil(t, rows[0].Input.BlowCount)
	assert.Equal(t, 40.0, *rows[0].Input.BlowCount)

	// blank lines are skipped
	assert.Equal(t, "2", rows[1].ID)
	assert.Nil(t, rows[1].Input.FinesContent)
	require.NotNil(t, rows[1].Input.MeanGrainSize)
	assert.Equal(t, 0.25, *rows[1].Input.MeanGrainSize)
}

func TestReadRows_UnparseableCellFailsOnlyItsRow(t *testing.T) {
	path := writeFile(t, "in.csv", `id,z_m,a_max,estres_v_total,estres_v_ef,Mw,N1_60_cs,FC,D50
A,10,0.4,180,100,7.5,15,10,0.25
B,10,0.4,180,n/a,7.5,15,10,0.25
C,10,0.4,180,100,7.5,15,ten,0.25
`)
	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Nil(t, rows[0].Err)
	require.NotNil(t, rows[1].Err)
	assert.Equal(t, liquefaction.InvalidInput, rows[1].Err.Kind)
	assert.Equal(t, "estres_v_ef", rows[1].Err.Step)
	assert.Contains(t, rows[1].Err.Error(), `line 3: "n/a" is not a number`)
	assert.Nil(t, rows[1].Input.EffectiveStress)
	require.NotNil(t, rows[2].Err)
	assert.Equal(t, "FC", rows[2].Err.Step)

	assessor := screening.NewAssessor(nil, nil)
	results := make([]*screening.Assessment, len(rows))
	for i, row := range rows {
		results[i] = assessor.Assess(row.Input)
		row.Apply(results[i])
	}

	assert.Equal(t, liquefaction.ClassLiquefiable, results[0].FSClass)

	assert.Equal(t, liquefaction.ClassError, results[1].FSClass)
	require.NotNil(t, results[1].Traditional.Failure)
	assert.ErrorIs(t, results[1].Traditional.Failure, liquefaction.ErrInvalidInput)
	assert.Contains(t, results[1].Traditional.Failure.Detail, "n/a")
	assert.Contains(t, results[1].ClassifierError, "n/a")

	// a bad classifier-only cell leaves the safety factor alone
	assert.Equal(t, liquefaction.ClassLiquefiable, results[2].FSClass)
	assert.Contains(t, results[2].ClassifierError, `"ten" is not a number`)
}

func TestReadRows_Errors(t *testing.T) {
	_, err := ReadRows(writeFile(t, "header.csv", "z_m,a_max\n"))
	assert.Error(t, err)

	_, err = ReadRows(writeFile(t, "cols.csv", "depth,pga\n1,2\n"))
	assert.Error(t, err)

	_, err = ReadRows(writeFile(t, "rows.txt", "z_m\n1\n"))
	assert.Error(t, err)
}

func sampleRecords() []Record {
	site := liquefaction.SiteParameters{Depth: 10, PeakGroundAccel: 0.4, TotalStress: 180, EffectiveStress: 100, Magnitude: 7.5, BlowCount: 15}
	fc, d50 := 10.0, 0.25
	in := screening.Input{SiteInput: site.Input(), FinesContent: &fc, MeanGrainSize: &d50}

	bad := in
	bad.EffectiveStress = nil

	assessor := screening.NewAssessor(nil, nil)
	return []Record{
		{ID: "ok", Assessment: assessor.Assess(in)},
		{ID: "bad", Assessment: assessor.Assess(bad)},
	}
}

func TestWriteRecords_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	require.NoError(t, WriteRecords(path, sampleRecords(), true))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	table, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, table, 3)
	assert.Equal(t, ResultColumns(true), table[0])

	header := make(map[string]int)
	for i, name := range table[0] {
		header[name] = i
	}
	assert.Equal(t, "Liquefiable", table[1][header["fs_class"]])
	assert.Empty(t, table[1][header["failure"]])
	assert.Equal(t, "Error", table[2][header["fs_class"]])
	assert.Contains(t, table[2][header["failure"]], "estres_v_ef")
	assert.Equal(t, screening.ErrNoModel.Error(), table[1][header["classifier_error"]])

	for name, want := range map[string]float64{
		"stress_reduction_factor":      0.907,
		"magnitude_scaling_factor":     1.00015,
		"overburden_correction_factor": 1.00012,
	} {
		v, err := strconv.ParseFloat(table[1][header[name]], 64)
		require.NoError(t, err, name)
		assert.InDelta(t, want, v, 1e-4, name)
		assert.Empty(t, table[2][header[name]], name)
	}
}

func TestWriteRecords_XLSXReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteRecords(path, sampleRecords(), false))

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ok", rows[0].ID)
	require.NotNil(t, rows[0].Input.TotalStress)
	assert.InDelta(t, 180, *rows[0].Input.TotalStress, 1e-9)
	assert.Nil(t, rows[1].Input.EffectiveStress)
}

func TestWriteProfile(t *testing.T) {
	p, err := LoadProfile(writeFile(t, "p.json", `{"layers": [
	  {"name": "a", "z_m": 4, "a_max": 0.3, "estres_v_total": 72, "estres_v_ef": 42.6, "Mw": 7.5, "N1_60_cs": 10},
	  {"name": "b", "z_m": 6, "a_max": 0.3, "estres_v_total": 108, "estres_v_ef": 0, "Mw": 7.5, "N1_60_cs": 10}
	]}`))
	require.NoError(t, err)
	res, err := p.Evaluate()
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "profile.xlsx")
	require.NoError(t, WriteProfile(path, res, nil))
	_, err = os.Stat(path)
	assert.NoError(t, err)

	risks := screening.NewAssessor(nil, nil).ProfileRisks(res)
	withRisks := filepath.Join(dir, "risks.xlsx")
	require.NoError(t, WriteProfile(withRisks, res, risks))

	f, err := excelize.OpenFile(withRisks)
	require.NoError(t, err)
	defer f.Close()
	sheet, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, sheet, 3)
	assert.Equal(t, "risk", sheet[0][len(sheet[0])-2])
	assert.Contains(t, sheet[0], "stress_reduction_factor")

	assert.Error(t, WriteProfile(path, res, risks[:1]))
}

func TestWriteProfile_RejectsOtherExtensions(t *testing.T) {
	res := &liquefaction.ProfileResult{Critical: -1}
	dir := t.TempDir()
	for _, name := range []string{"out.csv", "out.json", "out"} {
		path := filepath.Join(dir, name)
		assert.Error(t, WriteProfile(path, res, nil), name)
		assert.NoFileExists(t, path)
	}
}
