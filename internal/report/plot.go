package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/pairscope/internal/spikes"
	"github.com/KaramelBytes/pairscope/internal/table"
	"github.com/KaramelBytes/pairscope/internal/utils"
)

// PlotOptions controls the rendered figure.
type PlotOptions struct {
	DPI int
	// Width of the figure; panel height scales with the number of columns.
	Width vg.Length
	// PanelHeight per column; the figure is at least MinHeight tall.
	PanelHeight vg.Length
	MinHeight   vg.Length
}

// DefaultPlotOptions returns a 14in wide figure at 150 dpi.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{DPI: 150, Width: 14 * vg.Inch, PanelHeight: 1.5 * vg.Inch, MinHeight: 4 * vg.Inch}
}

var (
	seriesColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	spikeColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PlotSeries renders one stacked panel per column with flagged rows as red
// markers and writes the figure as PNG. The x axis is the time index when
// set, otherwise the row number.
func PlotSeries(path string, t *table.Table, cols []string, masks map[string]spikes.Mask, opt PlotOptions) error {
	if len(cols) == 0 {
		return fmt.Errorf("plot: no columns")
	}
	if opt.DPI <= 0 {
		opt = DefaultPlotOptions()
	}
	xs, ok := xValues(t)
	plots := make([][]*plot.Plot, len(cols))
	for i, name := range cols {
		p, err := panel(name, xs, t.Values(name), masks[name])
		if err != nil {
			return err
		}
		if ok {
			p.X.Tick.Marker = plot.TimeTicks{Format: "15:04:05"}
		}
		if i == len(cols)-1 {
			if ok {
				p.X.Label.Text = t.IndexName
			} else {
				p.X.Label.Text = "row"
			}
		}
		plots[i] = []*plot.Plot{p}
	}

	height := vg.Length(len(cols)) * opt.PanelHeight
	if height < opt.MinHeight {
		height = opt.MinHeight
	}
	img := vgimg.NewWith(vgimg.UseWH(opt.Width, height), vgimg.UseDPI(opt.DPI))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(cols),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      2 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}

func panel(name string, xs, ys []float64, mask spikes.Mask) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = name
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	var line, marks plotter.XYs
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) || math.IsNaN(xs[i]) {
			continue
		}
		line = append(line, plotter.XY{X: xs[i], Y: y})
		if i < len(mask) && mask[i] {
			marks = append(marks, plotter.XY{X: xs[i], Y: y})
		}
	}
	if len(line) > 0 {
		l, err := plotter.NewLine(line)
		if err != nil {
			return nil, fmt.Errorf("plot %s: %w", name, err)
		}
		l.LineStyle.Color = seriesColor
		l.LineStyle.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(name, l)
	}
	if len(marks) > 0 {
		s, err := plotter.NewScatter(marks)
		if err != nil {
			return nil, fmt.Errorf("plot %s spikes: %w", name, err)
		}
		s.GlyphStyle.Color = spikeColor
		s.GlyphStyle.Radius = vg.Points(2.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add("spike", s)
	}
	return p, nil
}

// xValues returns Unix seconds for a time index, or row numbers otherwise.
func xValues(t *table.Table) ([]float64, bool) {
	xs := make([]float64, t.Len())
	if t.Times == nil {
		for i := range xs {
			xs[i] = float64(i)
		}
		return xs, false
	}
	for i, ts := range t.Times {
		if ts.IsZero() {
			xs[i] = math.NaN()
			continue
		}
		xs[i] = float64(ts.UnixNano()) / 1e9
	}
	return xs, true
}
