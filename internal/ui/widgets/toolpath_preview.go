package widgets

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/cnc-calculator/internal/gcode"
	"github.com/piwi3910/cnc-calculator/internal/model"
)

// Toolpath colors for different move types.
var (
	colorRapid   = color.NRGBA{R: 255, G: 60, B: 60, A: 200}   // Red for rapid moves
	colorFeed    = color.NRGBA{R: 30, G: 120, B: 255, A: 230}  // Blue for cutting moves
	colorPlunge  = color.NRGBA{R: 50, G: 200, B: 50, A: 220}   // Green for plunge
	colorRetract = color.NRGBA{R: 180, G: 180, B: 0, A: 180}   // Yellow for retract
	colorStock   = color.NRGBA{R: 230, G: 210, B: 175, A: 255} // Light wood for stock
	colorPocket  = color.NRGBA{R: 200, G: 220, B: 255, A: 120} // Light blue for the pocket
)

// ToolpathPreview renders a top view of a test-cut program over the pocket
// it clears.
type ToolpathPreview struct {
	widget.BaseWidget
	moves        []gcode.GCodeMove
	pocket       model.TestCutSettings
	toolDiameter float64
	maxWidth     float32
	maxHeight    float32
}

// NewToolpathPreview creates a preview for parsed moves. A zero pocket
// width is drawn as one tool diameter, matching the generator.
func NewToolpathPreview(moves []gcode.GCodeMove, pocket model.TestCutSettings, toolDiameter float64, maxW, maxH float32) *ToolpathPreview {
	if pocket.Width == 0 {
		pocket.Width = toolDiameter
	}
	tp := &ToolpathPreview{
		moves:        moves,
		pocket:       pocket,
		toolDiameter: toolDiameter,
		maxWidth:     maxW,
		maxHeight:    maxH,
	}
	tp.ExtendBaseWidget(tp)
	return tp
}

// CreateRenderer implements fyne.Widget.
func (tp *ToolpathPreview) CreateRenderer() fyne.WidgetRenderer {
	r := &toolpathRenderer{tp: tp}
	r.rebuild()
	return r
}

// Scale returns the pixels-per-mm factor and the margin around the pocket.
func (tp *ToolpathPreview) Scale() (scale, margin float32) {
	margin = float32(tp.toolDiameter) + 10
	w := float32(tp.pocket.Length)
	h := float32(tp.pocket.Width)
	if w <= 0 || h <= 0 {
		return 1, margin
	}
	scale = (tp.maxWidth - margin*2) / w
	if sy := (tp.maxHeight - margin*2) / h; sy < scale {
		scale = sy
	}
	if scale <= 0 {
		scale = 1
	}
	return scale, margin
}

type toolpathRenderer struct {
	tp      *ToolpathPreview
	objects []fyne.CanvasObject
}

func (r *toolpathRenderer) rebuild() {
	r.objects = nil

	tp := r.tp
	if tp.pocket.Length <= 0 || tp.pocket.Width <= 0 {
		return
	}
	scale, margin := tp.Scale()

	// Screen Y grows downward; flip so +Y points up like the machine.
	toScreen := func(x, y float64) fyne.Position {
		sx := float32(x-tp.pocket.OriginX)*scale + margin
		sy := float32(tp.pocket.OriginY+tp.pocket.Width-y)*scale + margin
		return fyne.NewPos(sx, sy)
	}

	pw := float32(tp.pocket.Length) * scale
	ph := float32(tp.pocket.Width) * scale

	stock := canvas.NewRectangle(colorStock)
	stock.Resize(fyne.NewSize(pw+margin, ph+margin))
	stock.Move(fyne.NewPos(margin/2, margin/2))
	r.objects = append(r.objects, stock)

	pocket := canvas.NewRectangle(colorPocket)
	pocket.StrokeColor = color.NRGBA{R: 100, G: 130, B: 180, A: 200}
	pocket.StrokeWidth = 1.5
	pocket.Resize(fyne.NewSize(pw, ph))
	pocket.Move(fyne.NewPos(margin, margin))
	r.objects = append(r.objects, pocket)

	for _, m := range tp.moves {
		from := toScreen(m.FromX, m.FromY)
		to := toScreen(m.ToX, m.ToY)
		xyDist := math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)

		switch m.Type {
		case gcode.MoveRapid:
			if xyDist < 0.01 {
				continue
			}
			r.addLine(from, to, colorRapid, 1)
		case gcode.MoveFeed:
			if xyDist < 0.01 {
				continue
			}
			// Width of the line follows the cutter so overlap between passes shows.
			w := float32(tp.toolDiameter) * scale
			if w < 2 {
				w = 2
			}
			r.addLine(from, to, colorFeed, w)
		case gcode.MovePlunge:
			r.addMarker(from, colorPlunge, 5)
		case gcode.MoveRetract:
			if xyDist < 0.01 {
				r.addMarker(from, colorRetract, 3)
			} else {
				r.addLine(from, to, colorRetract, 1)
			}
		}
	}
}

func (r *toolpathRenderer) addLine(from, to fyne.Position, col color.Color, width float32) {
	line := canvas.NewLine(col)
	line.StrokeWidth = width
	line.Position1 = from
	line.Position2 = to
	r.objects = append(r.objects, line)
}

func (r *toolpathRenderer) addMarker(at fyne.Position, col color.Color, size float32) {
	marker := canvas.NewCircle(col)
	marker.Resize(fyne.NewSize(size, size))
	marker.Move(fyne.NewPos(at.X-size/2, at.Y-size/2))
	r.objects = append(r.objects, marker)
}

func (r *toolpathRenderer) Layout(size fyne.Size)        {}
func (r *toolpathRenderer) Refresh()                     { r.rebuild() }
func (r *toolpathRenderer) Destroy()                     {}
func (r *toolpathRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *toolpathRenderer) MinSize() fyne.Size {
	tp := r.tp
	if tp.pocket.Length <= 0 || tp.pocket.Width <= 0 {
		return fyne.NewSize(100, 100)
	}
	scale, margin := tp.Scale()
	return fyne.NewSize(float32(tp.pocket.Length)*scale+margin*2, float32(tp.pocket.Width)*scale+margin*2)
}

// RenderToolpathPreview generates the test cut for setup and returns its
// preview, or an error label when the program cannot be generated.
func RenderToolpathPreview(gen *gcode.Generator) fyne.CanvasObject {
	code, err := gen.Generate()
	if err != nil {
		return widget.NewLabel("Cannot generate test cut: " + err.Error())
	}
	return NewToolpathPreview(
		gcode.ParseGCode(code),
		gen.Settings,
		gen.Setup.Snapshot.ToolDiameter,
		700, 300,
	)
}
