package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/cnc-calculator/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// CardInfo holds the data encoded into each setup card's QR code.
type CardInfo struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Material   string  `json:"material"`
	Style      string  `json:"cutting_style"`
	Flutes     int     `json:"flutes"`
	Diameter   float64 `json:"tool_diameter_mm"`
	RPM        float64 `json:"rpm"`
	Chipload   float64 `json:"chipload_mm"`
	Feedrate   float64 `json:"feedrate_mm_min"`
	PlungeRate float64 `json:"plunge_mm_min"`
	MaxWOC     float64 `json:"max_woc_mm"`
	MaxDOC     float64 `json:"max_doc_mm"`
}

// Card layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each card is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectCardInfos extracts the card data for each setup.
// Plunge rate is the lower end of the guideline range.
func CollectCardInfos(setups []model.Setup) []CardInfo {
	cards := make([]CardInfo, 0, len(setups))
	for _, s := range setups {
		p := s.Parameters
		chipload, _ := p.Chipload()
		cards = append(cards, CardInfo{
			ID:         s.ID,
			Label:      s.Label,
			Material:   p.Material().Name,
			Style:      p.CuttingStyle().Name,
			Flutes:     p.Flutes(),
			Diameter:   p.ToolDiameter(),
			RPM:        p.RPM(),
			Chipload:   chipload,
			Feedrate:   s.Feedrate,
			PlungeRate: s.Guidelines.PlungeRate.Lower,
			MaxWOC:     s.Guidelines.WOC.Upper,
			MaxDOC:     s.Guidelines.DOC.Upper,
		})
	}
	return cards
}

// ExportSetupCards generates a PDF of QR-coded cards, one per setup, to tape
// to a tool holder or the machine. Each card shows the label, spindle speed
// and feedrate, and carries the full setup as JSON in its QR code.
func ExportSetupCards(path string, setups []model.Setup) error {
	cards := CollectCardInfos(setups)
	if len(cards) == 0 {
		return fmt.Errorf("no setups to generate cards for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, card := range cards {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderCard(pdf, x, y, i, card); err != nil {
			return fmt.Errorf("failed to render card for %q: %w", card.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderCard draws a single card at the given position.
func renderCard(pdf *fpdf.Fpdf, x, y float64, index int, info CardInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal card info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.ID, index)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	label := info.Label
	if pdf.GetStringWidth(label) > textW {
		for len(label) > 0 && pdf.GetStringWidth(label+"...") > textW {
			label = label[:len(label)-1]
		}
		label += "..."
	}
	pdf.CellFormat(textW, 4.5, label, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%.0f RPM  F%.0f", info.RPM, info.Feedrate), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+8.5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%dF %.2fmm  cl %.3f", info.Flutes, info.Diameter, info.Chipload), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+12.5)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Plunge %.0f  DOC %.2f", info.PlungeRate, info.MaxDOC), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
