package export

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/piwi3910/cnc-calculator/internal/engine"
	"github.com/piwi3910/cnc-calculator/internal/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// chartSamples is the number of segments used to draw the feedrate curve.
const chartSamples = 40

// ChartSeries is the data behind a feedrate chart.
type ChartSeries struct {
	Curve     plotter.XYs // Feedrate (mm/min) over per-flute chipload (mm)
	Suggested model.Range
	Current   plotter.XY
	Ceiling   float64
}

// FeedrateSeries samples the feedrate over the suggested chipload range of
// the setup's tool and material. A degenerate range is widened by 10% on
// each side so the curve is still visible.
func FeedrateSeries(setup model.Setup, eng *engine.Engine, ceiling float64) (ChartSeries, error) {
	p := setup.Parameters
	suggested, err := eng.SuggestChipload(p.ToolDiameter(), p.Material())
	if err != nil {
		return ChartSeries{}, err
	}

	lo, hi := suggested.Lower, suggested.Upper
	if c, ok := p.Chipload(); ok {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	if hi-lo <= 0 {
		lo, hi = lo*0.9, hi*1.1
	}

	curve := make(plotter.XYs, chartSamples+1)
	for i := range curve {
		c := lo + (hi-lo)*float64(i)/chartSamples
		curve[i].X = c
		curve[i].Y = model.Feedrate(p.Flutes(), p.RPM(), c, p.WOC(), p.ToolDiameter())
	}

	series := ChartSeries{Curve: curve, Suggested: suggested, Ceiling: ceiling}
	if c, ok := p.Chipload(); ok {
		series.Current = plotter.XY{X: c, Y: setup.Feedrate}
	}
	return series, nil
}

// FeedrateChart renders the feedrate over the suggested chipload range as a
// PNG, with the machine ceiling as a dashed line and the setup's chipload
// marked.
func FeedrateChart(setup model.Setup, eng *engine.Engine, ceiling float64) ([]byte, error) {
	series, err := FeedrateSeries(setup, eng, ceiling)
	if err != nil {
		return nil, fmt.Errorf("failed to sample feedrate: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Feedrate at %.0f RPM", setup.Parameters.RPM())
	p.X.Label.Text = "Chipload per flute (mm)"
	p.Y.Label.Text = "Feedrate (mm/min)"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(series.Curve)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedrate line: %v", err)
	}
	line.Color = color.RGBA{R: 33, G: 150, B: 243, A: 255}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("%d flute(s), %.2fmm", setup.Parameters.Flutes(), setup.Parameters.ToolDiameter()), line)

	if ceiling > 0 {
		first, last := series.Curve[0].X, series.Curve[len(series.Curve)-1].X
		ceilingLine, err := plotter.NewLine(plotter.XYs{{X: first, Y: ceiling}, {X: last, Y: ceiling}})
		if err != nil {
			return nil, fmt.Errorf("failed to create ceiling line: %v", err)
		}
		ceilingLine.Color = color.RGBA{R: 255, A: 255}
		ceilingLine.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(ceilingLine)
		p.Legend.Add(fmt.Sprintf("Max %.0f mm/min", ceiling), ceilingLine)
	}

	if series.Current.X > 0 {
		marker, err := plotter.NewScatter(plotter.XYs{series.Current})
		if err != nil {
			return nil, fmt.Errorf("failed to create setup marker: %v", err)
		}
		marker.GlyphStyle.Color = color.RGBA{R: 255, G: 152, A: 255}
		marker.GlyphStyle.Radius = vg.Points(4)
		marker.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(marker)
		p.Legend.Add("Setup", marker)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = vg.Points(10)

	writer, err := p.WriterTo(vg.Points(800), vg.Points(400), "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %v", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}
