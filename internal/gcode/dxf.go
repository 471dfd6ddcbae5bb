package gcode

import (
	"fmt"

	"github.com/piwi3910/cnc-calculator/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// DXF layer names, one per move class.
const (
	LayerCut    = "CUT"
	LayerPlunge = "PLUNGE"
	LayerRapid  = "RAPID"
)

// ExportDXF writes the test-cut toolpath for setup as 3D LINE entities.
func ExportDXF(path string, setup model.Setup, settings model.TestCutSettings) error {
	return New(setup, settings).ExportDXF(path)
}

// ExportDXF writes the generator's toolpath as 3D LINE entities. The program
// is generated and parsed back so the drawing matches the G-code exactly.
func (g *Generator) ExportDXF(path string) error {
	code, err := g.Generate()
	if err != nil {
		return err
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name  string
		color color.ColorNumber
	}{
		{LayerRapid, color.Cyan},
		{LayerPlunge, color.Yellow},
		{LayerCut, color.Red},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	for _, m := range ParseGCode(code) {
		if m.Length() < 1e-9 {
			continue
		}
		if err := d.ChangeLayer(layerFor(m)); err != nil {
			return err
		}
		if _, err := d.Line(m.FromX, m.FromY, m.FromZ, m.ToX, m.ToY, m.ToZ); err != nil {
			return fmt.Errorf("add line: %w", err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save DXF: %w", err)
	}
	return nil
}

func layerFor(m GCodeMove) string {
	switch {
	case m.Rapid:
		return LayerRapid
	case m.Type == MovePlunge:
		return LayerPlunge
	default:
		return LayerCut
	}
}
