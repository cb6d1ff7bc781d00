package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DaanHessen/tensioncurve/internal/engine"
	"github.com/DaanHessen/tensioncurve/internal/text"
)

// NoActLabel heads the group of events without an act.
const NoActLabel = "No act"

// Entry is one numbered legend item. Number matches the chart marker.
type Entry struct {
	Number      int
	Name        string
	Description string
}

// Group collects the entries sharing an act label.
type Group struct {
	Label   string
	Entries []Entry
}

// GroupByAct groups events by act label in the order each label is first
// seen. Entries keep their curve numbering.
func GroupByAct(events []engine.PointEvent) []Group {
	var groups []Group
	index := map[string]int{}
	for i, ev := range events {
		key := strings.TrimSpace(ev.Act)
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, Group{Label: groupLabel(key)})
		}
		groups[gi].Entries = append(groups[gi].Entries, Entry{
			Number:      i + 1,
			Name:        ev.Name,
			Description: ev.Description,
		})
	}
	return groups
}

func groupLabel(act string) string {
	if act == "" {
		return NoActLabel
	}
	if n, err := strconv.Atoi(act); err == nil && n > 0 {
		return fmt.Sprintf("Act %d", n)
	}
	return act
}

// LineKind tells the composer how to draw a legend line.
type LineKind int

const (
	LineHeader LineKind = iota
	LineName
	LineBody
)

// Line is a positioned legend line. X and Y are the top-left corner
// relative to the legend origin.
type Line struct {
	X, Y int
	Kind LineKind
	Text string
}

// Metrics sizes the legend.
type Metrics struct {
	ColumnWidth  int
	ColumnHeight int
	ColumnGap    int
	LineHeight   int
	GroupGap     int
	Indent       int
	Measure      text.Measurer
}

// Legend is the laid out legend.
type Legend struct {
	Lines   []Line
	Columns int
	Width   int
	Height  int
}

// LayoutLegend places groups top to bottom and opens a new column to the
// right whenever the next entry would cross ColumnHeight. A group header is
// never left alone at the bottom of a column. An entry taller than a whole
// column still gets a column of its own.
func LayoutLegend(groups []Group, m Metrics) Legend {
	var lg Legend
	if m.LineHeight <= 0 {
		m.LineHeight = 1
	}
	col, y := 0, 0
	place := func(ln Line) {
		ln.X += col * (m.ColumnWidth + m.ColumnGap)
		ln.Y = y
		lg.Lines = append(lg.Lines, ln)
		y += m.LineHeight
		lg.Height = max(lg.Height, y)
	}
	for _, g := range groups {
		if len(g.Entries) == 0 {
			continue
		}
		if y > 0 {
			y += m.GroupGap
		}
		for ei, e := range g.Entries {
			block := entryLines(e, m)
			need := len(block) * m.LineHeight
			if ei == 0 {
				need += m.LineHeight
			}
			if y > 0 && y+need > m.ColumnHeight {
				col++
				y = 0
			}
			if ei == 0 {
				place(Line{Kind: LineHeader, Text: g.Label})
			}
			for _, ln := range block {
				place(ln)
			}
		}
	}
	if len(lg.Lines) > 0 {
		lg.Columns = col + 1
		lg.Width = lg.Columns*m.ColumnWidth + col*m.ColumnGap
	}
	return lg
}

func entryLines(e Entry, m Metrics) []Line {
	var out []Line
	for _, s := range text.Wrap(fmt.Sprintf("%d. %s", e.Number, e.Name), m.ColumnWidth, m.Measure) {
		out = append(out, Line{Kind: LineName, Text: s})
	}
	for _, s := range text.Wrap(e.Description, m.ColumnWidth-m.Indent, m.Measure) {
		out = append(out, Line{X: m.Indent, Kind: LineBody, Text: s})
	}
	return out
}
