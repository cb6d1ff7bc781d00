package text

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Measurer reports the width of s in the caller's unit (pixels, cells).
type Measurer func(s string) int

// CellWidth measures terminal cells, ignoring ANSI styling.
func CellWidth(s string) int { return lipgloss.Width(s) }

// Wrap greedily breaks s into lines no wider than width. A line starts with
// one word and takes the next word while the result still fits. A single
// word wider than width gets a line to itself. Blank input yields no lines.
func Wrap(s string, width int, measure Measurer) []string {
	if measure == nil {
		measure = CellWidth
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if measure(candidate) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}
