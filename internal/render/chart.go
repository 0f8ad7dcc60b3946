// Package render draws line charts with gonum/plot and writes them as PNG.
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"adventureworks-report/internal/errors"
)

const defaultDPI = 100

// Series is one named line on a chart. An empty Name keeps the series out
// of the legend.
type Series struct {
	Name string
	XYs  plotter.XYs
}

// ReferenceLine is a horizontal line drawn across the full x range.
type ReferenceLine struct {
	Y     float64
	Label string
	Color color.Color
}

type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
	DPI    int

	// TimeAxis treats x values as Unix seconds and labels the axis with
	// month ticks.
	TimeAxis        bool
	TimeFormat      string
	TickEveryMonths int

	Reference  *ReferenceLine
	LegendTop  bool
	LegendLeft bool
}

// GroupSeries splits rows into one series per group value. Series are
// ordered by name and points keep their row order. A nil group yields a
// single unnamed series.
func GroupSeries[T any](rows []T, group func(T) string, x, y func(T) float64) []Series {
	if group == nil {
		xys := make(plotter.XYs, len(rows))
		for i, r := range rows {
			xys[i] = plotter.XY{X: x(r), Y: y(r)}
		}
		return []Series{{XYs: xys}}
	}

	index := make(map[string]int)
	var out []Series
	for _, r := range rows {
		name := group(r)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Series{Name: name})
		}
		out[i].XYs = append(out[i].XYs, plotter.XY{X: x(r), Y: y(r)})
	}

	slices.SortStableFunc(out, func(a, b Series) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Plot builds the plot without drawing it.
func (c Chart) Plot(series []Series) (*plot.Plot, error) {
	points := 0
	for _, s := range series {
		points += len(s.XYs)
	}
	if points == 0 {
		return nil, fmt.Errorf("chart %q has no data points", c.Title)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = c.LegendTop
	p.Legend.Left = c.LegendLeft
	p.Add(plotter.NewGrid())

	if c.TimeAxis {
		p.X.Tick.Marker = MonthTicks{Every: c.TickEveryMonths, Format: c.TimeFormat}
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	colors := seriesColors(len(series))
	for i, s := range series {
		if len(s.XYs) == 0 {
			continue
		}

		line, scatter, err := plotter.NewLinePoints(s.XYs)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		scatter.GlyphStyle.Color = colors[i]
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(2.5)

		p.Add(line, scatter)
		if s.Name != "" {
			p.Legend.Add(s.Name, line, scatter)
		}
	}

	if ref := c.Reference; ref != nil {
		y := ref.Y
		fn := plotter.NewFunction(func(float64) float64 { return y })
		fn.Color = ref.Color
		if fn.Color == nil {
			fn.Color = color.RGBA{R: 220, A: 255}
		}
		fn.Width = vg.Points(1.5)
		fn.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(fn)
		if ref.Label != "" {
			p.Legend.Add(ref.Label, fn)
		}

		// Functions carry no data range; keep the line inside the y axis.
		p.Y.Min = math.Min(p.Y.Min, y)
		p.Y.Max = math.Max(p.Y.Max, y)
	}

	return p, nil
}

// Save draws the chart and writes it to path as PNG, creating the parent
// directory if needed.
func (c Chart) Save(path string, series []Series) error {
	p, err := c.Plot(series)
	if err != nil {
		return errors.Render(err, path)
	}

	dpi := c.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}

	canvas := vgimg.NewWith(vgimg.UseWH(c.Width, c.Height), vgimg.UseDPI(dpi))
	p.Draw(draw.New(canvas))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Render(err, path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Render(err, path)
	}

	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(file); err != nil {
		file.Close()
		return errors.Render(err, path)
	}

	if err := file.Close(); err != nil {
		return errors.Render(err, path)
	}
	return nil
}

// seriesColors uses the brewer Set1 palette up to its nine colors and the
// plotutil cycle beyond that.
func seriesColors(n int) []color.Color {
	if n <= 9 {
		if pal, err := brewer.GetPalette(brewer.TypeQualitative, "Set1", max(n, 3)); err == nil {
			return pal.Colors()[:n]
		}
	}

	out := make([]color.Color, n)
	for i := range out {
		out[i] = plotutil.Color(i)
	}
	return out
}
