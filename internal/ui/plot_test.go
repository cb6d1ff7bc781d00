package ui

import (
	"strings"
	"testing"

	"github.com/DaanHessen/tensioncurve/internal/engine"
)

func TestPlotCellRoundTrip(t *testing.T) {
	pl := newPlot(72, 25, nil, nil)
	for col := 0; col < pl.width; col += 7 {
		for row := 0; row < pl.height; row += 3 {
			p, ten := pl.cellToData(col, row)
			c, r := pl.dataToCell(p, ten)
			if c != col || r != row {
				t.Fatalf("cell (%d,%d) -> (%.2f,%.2f) -> (%d,%d)", col, row, p, ten, c, r)
			}
		}
	}
}

func TestPlotCorners(t *testing.T) {
	pl := newPlot(51, 11, nil, nil)
	if p, ten := pl.cellToData(0, 0); p != 0 || ten != 100 {
		t.Fatalf("top-left = (%v,%v)", p, ten)
	}
	if p, ten := pl.cellToData(50, 10); p != 100 || ten != 0 {
		t.Fatalf("bottom-right = (%v,%v)", p, ten)
	}
	if p, ten := pl.cellToData(25, 5); p != 50 || ten != 50 {
		t.Fatalf("centre = (%v,%v)", p, ten)
	}
	if pl.contains(51, 0) || pl.contains(0, -1) || !pl.contains(50, 10) {
		t.Fatalf("contains is off")
	}
}

func TestPlotWidensForData(t *testing.T) {
	pl := newPlot(40, 10, []engine.Point{{Progress: 150, Tension: -20}}, []float64{180})
	if pl.xMax != 180 || pl.yMin != -20 || pl.yMax != 100 || pl.xMin != 0 {
		t.Fatalf("ranges = x[%v,%v] y[%v,%v]", pl.xMin, pl.xMax, pl.yMin, pl.yMax)
	}
}

func TestLineIncludesEnds(t *testing.T) {
	var cells [][2]int
	line(0, 0, 4, 2, func(c, r int) { cells = append(cells, [2]int{c, r}) })
	if cells[0] != [2]int{0, 0} || cells[len(cells)-1] != [2]int{4, 2} {
		t.Fatalf("line cells = %v", cells)
	}
	if len(cells) != 5 {
		t.Fatalf("expected one cell per column, got %v", cells)
	}
}

func TestPlotRenderMarksPoints(t *testing.T) {
	pl := newPlot(30, 10, nil, nil)
	points := []engine.Point{{Progress: 10, Tension: 20}, {Progress: 50, Tension: 80}, {Progress: 90, Tension: 40}}
	out := pl.render(points, []float64{50}, 1, [2]int{0, 0}, newStyles(paletteFor("catppuccin")))
	if n := strings.Count(out, "●"); n != 2 {
		t.Fatalf("expected 2 plain points, got %d", n)
	}
	if strings.Count(out, "◆") != 1 {
		t.Fatalf("selected point not highlighted")
	}
	if !strings.Contains(out, "┼") || !strings.Contains(out, "│") {
		t.Fatalf("cursor or act rule missing:\n%s", out)
	}
	if lines := strings.Split(out, "\n"); len(lines) != 11 {
		t.Fatalf("expected 10 rows plus axis, got %d", len(lines))
	}
}
