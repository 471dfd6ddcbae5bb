// Package export writes calculated setups to printable files: a PDF report
// with feedrate charts and a sheet of QR-coded setup cards.
package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/cnc-calculator/internal/engine"
	"github.com/piwi3910/cnc-calculator/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	tableWidth   = 110.0
	chartLeft    = marginLeft + tableWidth + 10
	chartWidth   = pageWidth - chartLeft - marginRight
	chartHeight  = chartWidth / 2 // charts are rendered at 2:1
)

// reportItem is one label/value line of a setup page.
type reportItem struct {
	label string
	value string
}

// ExportReport generates a PDF with one page per setup, each showing the
// cutting parameters, computed feedrate, guidelines, the best feedrate the
// maximizer finds and a feedrate chart, followed by a summary page.
func ExportReport(path string, setups []model.Setup, cfg model.AppConfig) error {
	if len(setups) == 0 {
		return fmt.Errorf("no setups to export")
	}

	eng := engine.New(nil, engine.OptionsFromConfig(cfg))

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, setup := range setups {
		pdf.AddPage()
		if err := renderSetupPage(pdf, eng, setup, i+1); err != nil {
			return fmt.Errorf("failed to render setup %q: %w", setup.Label, err)
		}
	}

	pdf.AddPage()
	renderSummaryPage(pdf, eng, setups)

	return pdf.OutputFileAndClose(path)
}

// setupItems lists the parameter and result lines shown for a setup.
func setupItems(eng *engine.Engine, setup model.Setup) ([]reportItem, error) {
	p := setup.Parameters
	chipload, _ := p.Chipload()

	suggested, err := eng.SuggestChipload(p.ToolDiameter(), p.Material())
	if err != nil {
		return nil, err
	}
	best, err := eng.Maximize(p)
	if err != nil {
		return nil, err
	}

	bestText := "not reachable below the limit"
	if best.Found {
		bestText = fmt.Sprintf("%.0f mm/min at %.4f mm", best.Feedrate, best.Chipload)
	}

	g := setup.Guidelines
	return []reportItem{
		{"Material", p.Material().Name},
		{"Cutting Style", p.CuttingStyle().Name},
		{"Flutes", fmt.Sprintf("%d", p.Flutes())},
		{"Tool Diameter", fmt.Sprintf("%.3f mm", p.ToolDiameter())},
		{"Spindle Speed", fmt.Sprintf("%.0f RPM", p.RPM())},
		{"Width of Cut", fmt.Sprintf("%.3f mm", p.WOC())},
		{"Depth of Cut", fmt.Sprintf("%.3f mm", p.DOC())},
		{"Chipload", fmt.Sprintf("%.4f mm/flute (%.4f mm/rev)", chipload, model.TotalChipload(chipload, p.Flutes()))},
		{"Suggested Chipload", fmt.Sprintf("%.4f - %.4f mm", suggested.Lower, suggested.Upper)},
		{"Feedrate", fmt.Sprintf("%.0f mm/min", setup.Feedrate)},
		{"WOC Guideline", fmt.Sprintf("%.2f - %.2f mm", g.WOC.Lower, g.WOC.Upper)},
		{"DOC Guideline", fmt.Sprintf("%.2f - %.2f mm", g.DOC.Lower, g.DOC.Upper)},
		{"Plunge Rate", fmt.Sprintf("%.0f - %.0f mm/min", g.PlungeRate.Lower, g.PlungeRate.Upper)},
		{"Best Feedrate", bestText},
	}, nil
}

// renderSetupPage draws a single setup on the current PDF page.
func renderSetupPage(pdf *fpdf.Fpdf, eng *engine.Engine, setup model.Setup, setupNum int) error {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Setup %d: %s", setupNum, setup.Label)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	pdf.CellFormat(100, 5, "ID "+setup.ID, "", 0, "L", false, 0, "")

	items, err := setupItems(eng, setup)
	if err != nil {
		return err
	}

	y := marginTop + headerHeight + 10
	pdf.SetTextColor(0, 0, 0)
	for i, item := range items {
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(marginLeft, y)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(40, 7, item.label, "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(tableWidth-40, 7, item.value, "1", 0, "L", true, 0, "")
		y += 7
	}

	ceiling := eng.Options().MaxFeedrate
	if eng.ExceedsCeiling(setup.Feedrate) {
		y += 5
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(tableWidth, 7, fmt.Sprintf("WARNING: Feedrate exceeds machine limit of %.0f mm/min", ceiling), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	chart, err := FeedrateChart(setup, eng, ceiling)
	if err != nil {
		return err
	}
	imgName := "chart_" + setup.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(chart))
	pdf.ImageOptions(imgName, chartLeft, marginTop+headerHeight+10, chartWidth, chartHeight, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	return pdf.Error()
}

// renderSummaryPage draws the overview table of all setups.
func renderSummaryPage(pdf *fpdf.Fpdf, eng *engine.Engine, setups []model.Setup) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Setup Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	colWidths := []float64{12, 55, 50, 15, 22, 22, 25, 28, 38}
	headers := []string{"#", "Label", "Material", "Flutes", "Tool (mm)", "RPM", "Chipload", "Feedrate", "Plunge (mm/min)"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	over := 0
	for i, s := range setups {
		p := s.Parameters
		chipload, _ := p.Chipload()
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			s.Label,
			p.Material().Name,
			fmt.Sprintf("%d", p.Flutes()),
			fmt.Sprintf("%.3f", p.ToolDiameter()),
			fmt.Sprintf("%.0f", p.RPM()),
			fmt.Sprintf("%.4f", chipload),
			fmt.Sprintf("%.0f", s.Feedrate),
			fmt.Sprintf("%.0f - %.0f", s.Guidelines.PlungeRate.Lower, s.Guidelines.PlungeRate.Upper),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		if eng.ExceedsCeiling(s.Feedrate) {
			pdf.SetTextColor(200, 0, 0)
			over++
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		pdf.SetTextColor(0, 0, 0)
		y += 6
	}

	if over > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		text := fmt.Sprintf("WARNING: %d setup(s) exceed the machine limit of %.0f mm/min", over, eng.Options().MaxFeedrate)
		pdf.CellFormat(200, 7, text, "", 0, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CNC Calculator - Feeds and Speeds", "", 0, "C", false, 0, "")
}
