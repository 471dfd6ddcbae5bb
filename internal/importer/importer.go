// Package importer provides CSV and Excel import of material chipload tables.
// It supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
//
// Each row describes one point of a material's chipload table:
//
//	material, diameter, chipload_min, chipload_max[, plunge_min, plunge_max]
//
// Rows for the same material are collected into one model.Material. The
// plunge rate fractions only need to appear on one row per material.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/cnc-calculator/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Materials []model.Material
	Errors    []string
	Warnings  []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Material    int
	Diameter    int
	ChiploadMin int
	ChiploadMax int
	PlungeMin   int
	PlungeMax   int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"material":     {"material", "material name", "name", "stock"},
	"diameter":     {"diameter", "dia", "tool diameter", "tool_diameter", "tool", "d"},
	"chipload_min": {"chipload_min", "chipload min", "min chipload", "chipload lower", "min", "lower"},
	"chipload_max": {"chipload_max", "chipload max", "max chipload", "chipload upper", "max", "upper"},
	"plunge_min":   {"plunge_min", "plunge min", "min plunge", "plunge lower"},
	"plunge_max":   {"plunge_max", "plunge max", "max plunge", "plunge upper"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Material:    -1,
		Diameter:    -1,
		ChiploadMin: -1,
		ChiploadMax: -1,
		PlungeMin:   -1,
		PlungeMax:   -1,
	}
	slots := map[string]*int{
		"material":     &mapping.Material,
		"diameter":     &mapping.Diameter,
		"chipload_min": &mapping.ChiploadMin,
		"chipload_max": &mapping.ChiploadMax,
		"plunge_min":   &mapping.PlungeMin,
		"plunge_max":   &mapping.PlungeMax,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if *slots[role] == -1 {
						*slots[role] = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			Material:    0,
			Diameter:    1,
			ChiploadMin: 2,
			ChiploadMax: 3,
			PlungeMin:   4,
			PlungeMax:   5,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber accepts both "0.05" and the decimal-comma form "0,05".
func parseNumber(s string) (float64, error) {
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

// tableRow is one parsed line of the input.
type tableRow struct {
	material  string
	point     model.ChiploadPoint
	plunge    model.Range
	hasPlunge bool
}

// parseRow extracts a table row using the given column mapping.
// Returns the row, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (tableRow, string, string) {
	name := getCell(row, mapping.Material)
	if name == "" {
		return tableRow{}, fmt.Sprintf("%s: Missing material name", rowLabel), ""
	}

	values := make([]float64, 3)
	for i, col := range []struct {
		idx  int
		name string
	}{
		{mapping.Diameter, "diameter"},
		{mapping.ChiploadMin, "chipload min"},
		{mapping.ChiploadMax, "chipload max"},
	} {
		s := getCell(row, col.idx)
		if s == "" {
			return tableRow{}, fmt.Sprintf("%s: Missing %s value", rowLabel, col.name), ""
		}
		v, err := parseNumber(s)
		if err != nil {
			return tableRow{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, col.name, s), ""
		}
		values[i] = v
	}

	if values[0] <= 0 || values[1] <= 0 || values[2] <= 0 {
		return tableRow{}, fmt.Sprintf("%s: Diameter and chipload must be positive", rowLabel), ""
	}
	if values[1] > values[2] {
		return tableRow{}, fmt.Sprintf("%s: Chipload min %.4g is greater than max %.4g", rowLabel, values[1], values[2]), ""
	}

	tr := tableRow{
		material: name,
		point: model.ChiploadPoint{
			Diameter: values[0],
			Chipload: model.Range{Lower: values[1], Upper: values[2]},
		},
	}

	// Optional plunge rate fractions
	pMin, pMax := getCell(row, mapping.PlungeMin), getCell(row, mapping.PlungeMax)
	if pMin == "" && pMax == "" {
		return tr, "", ""
	}
	if pMax == "" {
		pMax = pMin
	}
	if pMin == "" {
		pMin = pMax
	}
	lo, errLo := parseNumber(pMin)
	hi, errHi := parseNumber(pMax)
	if errLo != nil || errHi != nil || lo <= 0 || hi <= 0 || lo > hi {
		return tr, "", fmt.Sprintf("%s: Ignoring invalid plunge rate '%s'-'%s'", rowLabel, pMin, pMax)
	}
	tr.plunge = model.Range{Lower: lo, Upper: hi}
	tr.hasPlunge = true
	return tr, "", ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportMaterialsCSV imports chipload tables from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportMaterialsCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportMaterialsCSVFromReader imports chipload tables from a CSV reader with a
// specific delimiter.
func ImportMaterialsCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportMaterialsExcel imports chipload tables from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportMaterialsExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Material == -1 {
			missing = append(missing, "Material")
		}
		if mapping.Diameter == -1 {
			missing = append(missing, "Diameter")
		}
		if mapping.ChiploadMin == -1 {
			missing = append(missing, "Chipload min")
		}
		if mapping.ChiploadMax == -1 {
			missing = append(missing, "Chipload max")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 2 {
		// Non-numeric diameter in the first row: an unrecognized header.
		if _, err := parseNumber(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	var order []string
	points := map[string][]model.ChiploadPoint{}
	plunges := map[string]model.Range{}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		tr, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		if _, seen := points[tr.material]; !seen {
			order = append(order, tr.material)
		}
		points[tr.material] = append(points[tr.material], tr.point)

		if tr.hasPlunge {
			if prev, ok := plunges[tr.material]; ok && prev != tr.plunge {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: Conflicting plunge rate for %s, keeping the first", rowLabel, tr.material))
			} else if !ok {
				plunges[tr.material] = tr.plunge
			}
		}
	}

	for _, name := range order {
		plunge, ok := plunges[name]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Material %s: No plunge rate given", name))
			continue
		}
		m, err := model.NewMaterialFromPoints(name, points[name], plunge)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Material %s: %v", name, err))
			continue
		}
		result.Materials = append(result.Materials, m)
	}

	return result
}
