package export

import (
	"bytes"
	"image"
	"image/png"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/DaanHessen/tensioncurve/internal/engine"
)

// Chart is the rendering adapter the composer draws through. PointToPixel
// reports positions from the most recent Render.
type Chart interface {
	SetSeries(points []engine.Point, acts []float64)
	PointToPixel(i int) (image.Point, bool)
	Render() (image.Image, error)
}

// GoChart renders the curve with go-chart.
type GoChart struct {
	Width, Height int
	LineColor     drawing.Color
	ActColor      drawing.Color
	DotColor      drawing.Color

	points []engine.Point
	acts   []float64
	pixels []image.Point
}

// NewGoChart returns a chart of the given pixel size with default colours.
func NewGoChart(width, height int) *GoChart {
	return &GoChart{
		Width:     width,
		Height:    height,
		LineColor: drawing.ColorFromHex("4bc0c0"),
		ActColor:  drawing.Color{R: 105, G: 105, B: 105, A: 255},
		DotColor:  drawing.ColorFromHex("36a2eb"),
	}
}

func (g *GoChart) SetSeries(points []engine.Point, acts []float64) {
	g.points = append([]engine.Point(nil), points...)
	g.acts = append([]float64(nil), acts...)
	g.pixels = nil
}

func (g *GoChart) PointToPixel(i int) (image.Point, bool) {
	if i < 0 || i >= len(g.pixels) {
		return image.Point{}, false
	}
	return g.pixels[i], true
}

func (g *GoChart) Render() (image.Image, error) {
	xr, yr := g.ranges()
	series := []chart.Series{}
	if len(g.points) > 0 {
		xs := make([]float64, len(g.points))
		ys := make([]float64, len(g.points))
		for i, p := range g.points {
			xs[i], ys[i] = p.Progress, p.Tension
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "Tension",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: g.LineColor, StrokeWidth: 2},
		})
	}
	for i, a := range g.acts {
		series = append(series, chart.ContinuousSeries{
			Name:    engine.ActLabel(i),
			XValues: []float64{a, a},
			YValues: []float64{yr.Min, yr.Max},
			Style:   chart.Style{StrokeColor: g.ActColor, StrokeWidth: 2, StrokeDashArray: []float64{6, 4}},
		})
	}
	markers := &pixelSeries{points: g.points, color: g.DotColor}
	series = append(series, markers)

	ch := chart.Chart{
		Width:      g.Width,
		Height:     g.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 20, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Story progress", Range: &xr},
		YAxis:      chart.YAxis{Name: "Tension", Range: &yr},
		Series:     series,
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, "render chart")
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "decode chart")
	}
	g.pixels = markers.pixels
	return img, nil
}

// ranges spans 0..100 on both axes and widens to fit the data.
func (g *GoChart) ranges() (chart.ContinuousRange, chart.ContinuousRange) {
	xr := chart.ContinuousRange{Min: 0, Max: 100}
	yr := chart.ContinuousRange{Min: 0, Max: 100}
	for _, p := range g.points {
		xr.Min, xr.Max = min(xr.Min, p.Progress), max(xr.Max, p.Progress)
		yr.Min, yr.Max = min(yr.Min, p.Tension), max(yr.Max, p.Tension)
	}
	for _, a := range g.acts {
		xr.Min, xr.Max = min(xr.Min, a), max(xr.Max, a)
	}
	return xr, yr
}

// pixelSeries draws a dot per point and records where it landed.
type pixelSeries struct {
	points []engine.Point
	color  drawing.Color
	pixels []image.Point
}

func (p *pixelSeries) GetName() string           { return "Points" }
func (p *pixelSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (p *pixelSeries) GetStyle() chart.Style {
	return chart.Style{StrokeColor: p.color, FillColor: p.color}
}
func (p *pixelSeries) Validate() error { return nil }

func (p *pixelSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	p.pixels = make([]image.Point, len(p.points))
	for i, pt := range p.points {
		p.pixels[i] = image.Pt(
			canvasBox.Left+xrange.Translate(pt.Progress),
			canvasBox.Bottom-yrange.Translate(pt.Tension),
		)
	}
	r.SetFillColor(p.color)
	r.SetStrokeColor(p.color)
	r.SetStrokeWidth(1)
	for _, px := range p.pixels {
		r.Circle(3, px.X, px.Y)
		r.FillStroke()
	}
}
