package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/cnc-calculator/internal/model"
	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Material,Diameter,Min,Max\nAcrylic,3,0.05,0.1\nAcrylic,6,0.08,0.2\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_SemicolonWithDecimalCommas(t *testing.T) {
	data := []byte("Material;Diameter;Min;Max\nAcrylic;3;0,05;0,1\nAcrylic;6;0,08;0,2\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Material\tDiameter\tMin\tMax\nAcrylic\t3\t0.05\t0.1\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Material", "Diameter", "Chipload Min", "Chipload Max", "Plunge Min", "Plunge Max"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Material: 0, Diameter: 1, ChiploadMin: 2, ChiploadMax: 3, PlungeMin: 4, PlungeMax: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_ReorderedAndAliased(t *testing.T) {
	row := []string{"MAX", "dia", "Name", "min"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.ChiploadMax != 0 || mapping.Diameter != 1 || mapping.Material != 2 || mapping.ChiploadMin != 3 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.PlungeMin != -1 || mapping.PlungeMax != -1 {
		t.Errorf("plunge columns should be absent, got %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Acrylic", "3", "0.05", "0.1"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping.Material != 0 || mapping.PlungeMax != 5 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── ImportMaterialsCSVFromReader Tests ────────────────────

func TestImportCSVFromReader_GroupsRowsByMaterial(t *testing.T) {
	csv := `Material,Diameter,Chipload Min,Chipload Max,Plunge Min,Plunge Max
Acrylic,6,0.08,0.2,0.3,0.4
Acrylic,3.175,0.05,0.1,,
MDF,3.175,0.04,0.08,0.5,0.5
MDF,6,0.06,0.15,,
`
	result := ImportMaterialsCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(result.Materials))
	}

	acrylic := result.Materials[0]
	if acrylic.Name != "Acrylic" {
		t.Errorf("expected Acrylic first, got %s", acrylic.Name)
	}
	if len(acrylic.Chiploads) != 2 || acrylic.Chiploads[0].Diameter != 3.175 {
		t.Errorf("expected sorted table starting at 3.175, got %v", acrylic.Diameters())
	}
	if acrylic.PlungeRate != (model.Range{Lower: 0.3, Upper: 0.4}) {
		t.Errorf("unexpected plunge rate %+v", acrylic.PlungeRate)
	}
	if result.Materials[1].PlungeRate != (model.Range{Lower: 0.5, Upper: 0.5}) {
		t.Errorf("unexpected MDF plunge rate %+v", result.Materials[1].PlungeRate)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	csv := "Foam,6,0.1,0.3,0.5,0.6\nFoam,3,0.05,0.15\n"
	result := ImportMaterialsCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Materials) != 1 {
		t.Fatalf("expected 1 material, got %d (errors: %v)", len(result.Materials), result.Errors)
	}
	for _, w := range result.Warnings {
		if strings.Contains(w, "header") {
			t.Errorf("unexpected header warning: %s", w)
		}
	}
}

func TestImportCSVFromReader_SemicolonDecimalComma(t *testing.T) {
	csv := "Material;Diameter;Min;Max;Plunge Min;Plunge Max\nAcrylic;3;0,05;0,1;0,3;0,4\n"
	result := ImportMaterialsCSVFromReader(strings.NewReader(csv), ';')

	if len(result.Materials) != 1 {
		t.Fatalf("expected 1 material, got %d (errors: %v)", len(result.Materials), result.Errors)
	}
	got := result.Materials[0].Chiploads[0].Chipload
	if got != (model.Range{Lower: 0.05, Upper: 0.1}) {
		t.Errorf("expected (0.05, 0.1), got %+v", got)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	csv := `Material,Diameter,Min,Max,Plunge Min,Plunge Max
Acrylic,abc,0.05,0.1,0.3,0.3
Acrylic,3,0.2,0.1,0.3,0.3
Acrylic,-3,0.05,0.1,0.3,0.3
,3,0.05,0.1,0.3,0.3
Acrylic,6,0.08,0.2,0.3,0.3
`
	result := ImportMaterialsCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if len(result.Materials) != 1 || len(result.Materials[0].Chiploads) != 1 {
		t.Fatalf("expected the one valid row to survive, got %+v", result.Materials)
	}
	if !strings.HasPrefix(result.Errors[0], "Line 2:") {
		t.Errorf("expected error to name line 2, got %q", result.Errors[0])
	}
}

func TestImportCSVFromReader_MissingPlungeRate(t *testing.T) {
	csv := "Material,Diameter,Min,Max\nAcrylic,3,0.05,0.1\n"
	result := ImportMaterialsCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Materials) != 0 {
		t.Errorf("expected no materials, got %d", len(result.Materials))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "No plunge rate") {
		t.Errorf("expected missing plunge error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_DuplicateDiameter(t *testing.T) {
	csv := "Acrylic,3,0.05,0.1,0.3,0.3\nAcrylic,3,0.06,0.12\n"
	result := ImportMaterialsCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Materials) != 0 {
		t.Errorf("expected material to be rejected, got %d", len(result.Materials))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "duplicate") {
		t.Errorf("expected duplicate diameter error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_ConflictingPlungeWarns(t *testing.T) {
	csv := "Acrylic,3,0.05,0.1,0.3,0.3\nAcrylic,6,0.08,0.2,0.5,0.5\n"
	result := ImportMaterialsCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Materials) != 1 {
		t.Fatalf("expected 1 material, got %d", len(result.Materials))
	}
	if result.Materials[0].PlungeRate.Lower != 0.3 {
		t.Errorf("expected the first plunge rate to win, got %+v", result.Materials[0].PlungeRate)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected one warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	csv := "Material,Diameter,Min\nAcrylic,3,0.05\n"
	result := ImportMaterialsCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Chipload max") {
		t.Errorf("expected missing column error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportMaterialsCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

// ─── File Import Tests ─────────────────────────────────────

func TestImportMaterialsCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.csv")
	content := "Material|Diameter|Min|Max|Plunge Min|Plunge Max\nHDPE|6|0.1|0.25|0.4|0.5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportMaterialsCSV(path)
	if len(result.Materials) != 1 {
		t.Fatalf("expected 1 material, got %d (errors: %v)", len(result.Materials), result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if w == "Detected pipe delimiter" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected pipe delimiter warning, got %v", result.Warnings)
	}
}

func TestImportMaterialsCSV_FileNotFound(t *testing.T) {
	result := ImportMaterialsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Cannot open file") {
		t.Errorf("expected open error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "materials.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportMaterialsExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Material", "Diameter", "Chipload Min", "Chipload Max", "Plunge Min", "Plunge Max"},
		{"Walnut", 3.175, 0.02, 0.04, 0.2, 0.3},
		{"Walnut", 6, 0.03, 0.07, nil, nil},
	})

	result := ImportMaterialsExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Materials) != 1 {
		t.Fatalf("expected 1 material, got %d", len(result.Materials))
	}
	m := result.Materials[0]
	if m.Name != "Walnut" || len(m.Chiploads) != 2 {
		t.Errorf("unexpected material %+v", m)
	}
	if m.Chiploads[1].Chipload.Upper != 0.07 {
		t.Errorf("expected upper chipload 0.07, got %f", m.Chiploads[1].Chipload.Upper)
	}
}

func TestImportMaterialsExcel_FileNotFound(t *testing.T) {
	result := ImportMaterialsExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportedMaterialsMergeIntoCatalog(t *testing.T) {
	csv := "Acrylic,3,0.05,0.1,0.3,0.4\nAcrylic,6,0.08,0.2\n"
	result := ImportMaterialsCSVFromReader(strings.NewReader(csv), ',')

	catalog, err := model.DefaultCatalog().Merge(result.Materials)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.Material("Acrylic"); err != nil {
		t.Errorf("expected Acrylic in merged catalog: %v", err)
	}
}
