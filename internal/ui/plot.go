package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/tensioncurve/internal/engine"
)

// plotGutter is the width of the y-axis labels left of the plot area.
const plotGutter = 4

// plot maps between terminal cells and curve coordinates. Col 0 is the left
// edge of the drawing area, row 0 its top.
type plot struct {
	width, height int
	xMin, xMax    float64
	yMin, yMax    float64
}

// newPlot sizes the drawing area and fits the axes to the data. Both axes
// span at least 0..100.
func newPlot(width, height int, points []engine.Point, acts []float64) plot {
	p := plot{width: max(width, 2), height: max(height, 2), xMax: 100, yMax: 100}
	for _, pt := range points {
		p.xMin, p.xMax = min(p.xMin, pt.Progress), max(p.xMax, pt.Progress)
		p.yMin, p.yMax = min(p.yMin, pt.Tension), max(p.yMax, pt.Tension)
	}
	for _, a := range acts {
		p.xMin, p.xMax = min(p.xMin, a), max(p.xMax, a)
	}
	return p
}

// cellToData converts a cell to curve coordinates rounded to two decimals.
func (p plot) cellToData(col, row int) (progress, tension float64) {
	col = min(max(col, 0), p.width-1)
	row = min(max(row, 0), p.height-1)
	progress = p.xMin + float64(col)/float64(p.width-1)*(p.xMax-p.xMin)
	tension = p.yMax - float64(row)/float64(p.height-1)*(p.yMax-p.yMin)
	return round2(progress), round2(tension)
}

// dataToCell is the inverse of cellToData, clamped into the area.
func (p plot) dataToCell(progress, tension float64) (col, row int) {
	col = int(math.Round((progress - p.xMin) / (p.xMax - p.xMin) * float64(p.width-1)))
	row = int(math.Round((p.yMax - tension) / (p.yMax - p.yMin) * float64(p.height-1)))
	return min(max(col, 0), p.width-1), min(max(row, 0), p.height-1)
}

func (p plot) contains(col, row int) bool {
	return col >= 0 && col < p.width && row >= 0 && row < p.height
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

type cellKind int

const (
	cellEmpty cellKind = iota
	cellGrid
	cellAct
	cellCurve
	cellPoint
	cellActive
	cellCursor
)

type cell struct {
	r    rune
	kind cellKind
}

// render draws the curve, act rules, points and crosshair. selected is the
// index of the highlighted point or -1; cursor is in cell coordinates.
func (p plot) render(points []engine.Point, acts []float64, selected int, cursor [2]int, st styles) string {
	grid := make([][]cell, p.height)
	for r := range grid {
		grid[r] = make([]cell, p.width)
		for c := range grid[r] {
			grid[r][c] = cell{r: ' '}
		}
	}
	for _, frac := range []float64{0.25, 0.5, 0.75} {
		row := int(math.Round(frac * float64(p.height-1)))
		for c := range grid[row] {
			grid[row][c] = cell{r: '┄', kind: cellGrid}
		}
	}
	for _, a := range acts {
		col, _ := p.dataToCell(a, p.yMin)
		for r := range grid {
			grid[r][col] = cell{r: '│', kind: cellAct}
		}
	}
	for i := 1; i < len(points); i++ {
		c0, r0 := p.dataToCell(points[i-1].Progress, points[i-1].Tension)
		c1, r1 := p.dataToCell(points[i].Progress, points[i].Tension)
		line(c0, r0, c1, r1, func(c, r int) {
			grid[r][c] = cell{r: '·', kind: cellCurve}
		})
	}
	for i, pt := range points {
		c, r := p.dataToCell(pt.Progress, pt.Tension)
		if i == selected {
			grid[r][c] = cell{r: '◆', kind: cellActive}
		} else {
			grid[r][c] = cell{r: '●', kind: cellPoint}
		}
	}
	if p.contains(cursor[0], cursor[1]) && grid[cursor[1]][cursor[0]].kind < cellPoint {
		grid[cursor[1]][cursor[0]] = cell{r: '┼', kind: cellCursor}
	}

	styleFor := map[cellKind]lipgloss.Style{
		cellEmpty:  lipgloss.NewStyle(),
		cellGrid:   st.grid,
		cellAct:    st.act,
		cellCurve:  st.curve,
		cellPoint:  st.point,
		cellActive: st.active,
		cellCursor: st.cursor,
	}
	var b strings.Builder
	for r, row := range grid {
		b.WriteString(st.axis.Render(p.yLabel(r)))
		// Consecutive cells of one kind share a style run.
		start := 0
		for c := 1; c <= len(row); c++ {
			if c < len(row) && row[c].kind == row[start].kind {
				continue
			}
			var run strings.Builder
			for _, cl := range row[start:c] {
				run.WriteRune(cl.r)
			}
			b.WriteString(styleFor[row[start].kind].Render(run.String()))
			start = c
		}
		b.WriteByte('\n')
	}
	b.WriteString(st.axis.Render(p.xAxis()))
	return b.String()
}

// yLabel labels the top, middle and bottom rows.
func (p plot) yLabel(row int) string {
	switch row {
	case 0:
		return fmt.Sprintf("%3.0f ", p.yMax)
	case (p.height - 1) / 2:
		return fmt.Sprintf("%3.0f ", (p.yMax+p.yMin)/2)
	case p.height - 1:
		return fmt.Sprintf("%3.0f ", p.yMin)
	}
	return strings.Repeat(" ", plotGutter)
}

func (p plot) xAxis() string {
	left := fmt.Sprintf("%.0f", p.xMin)
	right := fmt.Sprintf("%.0f", p.xMax)
	gap := max(p.width-len(left)-len(right), 1)
	return strings.Repeat(" ", plotGutter) + left + strings.Repeat("─", gap) + right
}

// line walks the cells between two points (Bresenham), both ends included.
func line(c0, r0, c1, r1 int, set func(c, r int)) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}
	e := dc + dr
	for {
		set(c0, r0)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
