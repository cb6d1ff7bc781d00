package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/DaanHessen/tensioncurve/internal/engine"
	"github.com/DaanHessen/tensioncurve/internal/text"
)

// Layout selects what goes into the exported image.
type Layout int

const (
	// LayoutBare is the chart alone.
	LayoutBare Layout = iota
	// LayoutAnnotated adds the title, numbered markers and the legend.
	LayoutAnnotated
)

func (l Layout) String() string {
	if l == LayoutAnnotated {
		return "annotated"
	}
	return "bare"
}

// Colors used by the composer.
type Colors struct {
	Background color.Color
	Ink        color.Color
	Muted      color.Color
	Header     color.Color
	Marker     color.Color
	MarkerInk  color.Color
}

// DefaultColors is a light scheme that prints well.
var DefaultColors = Colors{
	Background: color.White,
	Ink:        color.RGBA{R: 30, G: 30, B: 46, A: 255},
	Muted:      color.RGBA{R: 88, G: 91, B: 112, A: 255},
	Header:     color.RGBA{R: 136, G: 57, B: 239, A: 255},
	Marker:     color.RGBA{R: 210, G: 15, B: 57, A: 255},
	MarkerInk:  color.White,
}

// Composer renders a campaign into a single image.
type Composer struct {
	Chart        Chart
	Face         font.Face
	Colors       Colors
	ColumnWidth  int
	MarkerRadius int
	Padding      int
}

// NewComposer uses the 7x13 bitmap face and default colours.
func NewComposer(ch Chart) *Composer {
	return &Composer{
		Chart:        ch,
		Face:         basicfont.Face7x13,
		Colors:       DefaultColors,
		ColumnWidth:  220,
		MarkerRadius: 9,
		Padding:      16,
	}
}

// Measure reports the pixel width of s in the composer's face.
func (c *Composer) Measure(s string) int {
	return font.MeasureString(c.Face, s).Ceil()
}

// Compose renders the chart and, for LayoutAnnotated, overlays markers and
// adds the title and legend.
func (c *Composer) Compose(camp *engine.Campaign, title string, layout Layout) (image.Image, error) {
	if c.Chart == nil {
		return nil, errors.New("compose: no chart")
	}
	c.Chart.SetSeries(camp.Curve(), camp.Acts())
	chartImg, err := c.Chart.Render()
	if err != nil {
		return nil, err
	}
	if layout == LayoutBare {
		return chartImg, nil
	}

	cb := chartImg.Bounds()
	lineH := c.Face.Metrics().Height.Ceil()
	titleLines := text.Wrap(title, cb.Dx()-2*c.Padding, c.Measure)
	titleH := c.Padding + len(titleLines)*lineH + c.Padding/2

	legend := LayoutLegend(GroupByAct(camp.Events()), Metrics{
		ColumnWidth:  c.ColumnWidth,
		ColumnHeight: cb.Dy() - c.Padding,
		ColumnGap:    c.Padding,
		LineHeight:   lineH,
		GroupGap:     lineH / 2,
		Indent:       c.Measure("   "),
		Measure:      c.Measure,
	})

	width := cb.Dx()
	if legend.Columns > 0 {
		width += legend.Width + 2*c.Padding
	}
	height := titleH + max(cb.Dy(), legend.Height+c.Padding)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c.Colors.Background), image.Point{}, draw.Src)

	chartOrigin := image.Pt(0, titleH)
	draw.Draw(dst, cb.Sub(cb.Min).Add(chartOrigin), chartImg, cb.Min, draw.Over)

	for i, ln := range titleLines {
		x := (cb.Dx() - c.Measure(ln)) / 2
		c.drawString(dst, ln, image.Pt(max(x, c.Padding), c.Padding+i*lineH), c.Colors.Ink)
	}

	for i := 0; i < camp.Len(); i++ {
		px, ok := c.Chart.PointToPixel(i)
		if !ok {
			continue
		}
		c.drawMarker(dst, px.Add(chartOrigin), i+1)
	}

	legendOrigin := image.Pt(cb.Dx()+c.Padding, titleH)
	for _, ln := range legend.Lines {
		ink := c.Colors.Ink
		switch ln.Kind {
		case LineHeader:
			ink = c.Colors.Header
		case LineBody:
			ink = c.Colors.Muted
		}
		c.drawString(dst, ln.Text, legendOrigin.Add(image.Pt(ln.X, ln.Y)), ink)
	}
	return dst, nil
}

// drawString draws s with its top-left corner at at.
func (c *Composer) drawString(dst draw.Image, s string, at image.Point, ink color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(ink),
		Face: c.Face,
		Dot:  fixed.Point26_6{X: fixed.I(at.X), Y: fixed.I(at.Y + c.Face.Metrics().Ascent.Ceil())},
	}
	d.DrawString(s)
}

func (c *Composer) drawMarker(dst *image.RGBA, center image.Point, n int) {
	label := strconv.Itoa(n)
	r := max(c.MarkerRadius, (c.Measure(label)+4)/2)
	fillDisc(dst, center, r, c.Colors.Marker)
	m := c.Face.Metrics()
	at := image.Pt(center.X-c.Measure(label)/2, center.Y-(m.Ascent+m.Descent).Ceil()/2)
	c.drawString(dst, label, at, c.Colors.MarkerInk)
}

func fillDisc(dst *image.RGBA, center image.Point, r int, col color.Color) {
	b := dst.Bounds()
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y > r*r {
				continue
			}
			p := center.Add(image.Pt(x, y))
			if p.In(b) {
				dst.Set(p.X, p.Y, col)
			}
		}
	}
}

// LegendText is the legend as plain lines, for the clipboard.
func LegendText(camp *engine.Campaign) string {
	var out []byte
	for gi, g := range GroupByAct(camp.Events()) {
		if gi > 0 {
			out = append(out, '\n')
		}
		out = append(out, g.Label...)
		out = append(out, '\n')
		for _, e := range g.Entries {
			out = fmt.Appendf(out, "%d. %s\n", e.Number, e.Name)
			if e.Description != "" {
				out = fmt.Appendf(out, "   %s\n", e.Description)
			}
		}
	}
	return string(out)
}
