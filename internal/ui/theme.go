package ui

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/tensioncurve/internal/export"
)

type palette struct {
	Background lipgloss.Color
	Surface    lipgloss.Color
	Panel      lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	AccentAlt  lipgloss.Color
	Border     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Curve      lipgloss.Color
	Grid       lipgloss.Color
}

var palettes = map[string]palette{
	"catppuccin": {
		Background: lipgloss.Color("#1e1e2e"),
		Surface:    lipgloss.Color("#313244"),
		Panel:      lipgloss.Color("#45475a"),
		Text:       lipgloss.Color("#cdd6f4"),
		Muted:      lipgloss.Color("#a6adc8"),
		Accent:     lipgloss.Color("#cba6f7"),
		AccentAlt:  lipgloss.Color("#f38ba8"),
		Border:     lipgloss.Color("#585b70"),
		Success:    lipgloss.Color("#94e2d5"),
		Warning:    lipgloss.Color("#f9e2af"),
		Curve:      lipgloss.Color("#94e2d5"),
		Grid:       lipgloss.Color("#313244"),
	},
	"dracula": {
		Background: lipgloss.Color("#282a36"),
		Surface:    lipgloss.Color("#343746"),
		Panel:      lipgloss.Color("#3c4053"),
		Text:       lipgloss.Color("#f8f8f2"),
		Muted:      lipgloss.Color("#6272a4"),
		Accent:     lipgloss.Color("#ff79c6"),
		AccentAlt:  lipgloss.Color("#bd93f9"),
		Border:     lipgloss.Color("#44475a"),
		Success:    lipgloss.Color("#50fa7b"),
		Warning:    lipgloss.Color("#f1fa8c"),
		Curve:      lipgloss.Color("#50fa7b"),
		Grid:       lipgloss.Color("#343746"),
	},
	"gruvbox": {
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Panel:      lipgloss.Color("#504945"),
		Text:       lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#a89984"),
		Accent:     lipgloss.Color("#fabd2f"),
		AccentAlt:  lipgloss.Color("#d3869b"),
		Border:     lipgloss.Color("#665c54"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fe8019"),
		Curve:      lipgloss.Color("#b8bb26"),
		Grid:       lipgloss.Color("#3c3836"),
	},
	"parchment": {
		Background: lipgloss.Color("#f4ecd8"),
		Surface:    lipgloss.Color("#e8dcc0"),
		Panel:      lipgloss.Color("#dccca8"),
		Text:       lipgloss.Color("#3b2f2f"),
		Muted:      lipgloss.Color("#7a6a58"),
		Accent:     lipgloss.Color("#8b1e1e"),
		AccentAlt:  lipgloss.Color("#b5651d"),
		Border:     lipgloss.Color("#a08a6a"),
		Success:    lipgloss.Color("#4f6d3a"),
		Warning:    lipgloss.Color("#a0522d"),
		Curve:      lipgloss.Color("#8b1e1e"),
		Grid:       lipgloss.Color("#e0d2b4"),
	},
	"solarized_dark": {
		Background: lipgloss.Color("#002b36"),
		Surface:    lipgloss.Color("#073642"),
		Panel:      lipgloss.Color("#0a3a45"),
		Text:       lipgloss.Color("#fdf6e3"),
		Muted:      lipgloss.Color("#93a1a1"),
		Accent:     lipgloss.Color("#b58900"),
		AccentAlt:  lipgloss.Color("#268bd2"),
		Border:     lipgloss.Color("#586e75"),
		Success:    lipgloss.Color("#859900"),
		Warning:    lipgloss.Color("#cb4b16"),
		Curve:      lipgloss.Color("#859900"),
		Grid:       lipgloss.Color("#073642"),
	},
}

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes["catppuccin"]
}

func themeNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func nextThemeName(current string, step int) string {
	names := themeNames()
	if len(names) == 0 {
		return current
	}
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	idx = (idx + step) % len(names)
	if idx < 0 {
		idx += len(names)
	}
	return names[idx]
}

type styles struct {
	title    lipgloss.Style
	panel    lipgloss.Style
	focused  lipgloss.Style
	heading  lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	status   lipgloss.Style
	errText  lipgloss.Style
	axis     lipgloss.Style
	curve    lipgloss.Style
	point    lipgloss.Style
	active   lipgloss.Style
	act      lipgloss.Style
	cursor   lipgloss.Style
	grid     lipgloss.Style
}

func newStyles(p palette) styles {
	border := lipgloss.RoundedBorder()
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		panel:    lipgloss.NewStyle().Border(border).BorderForeground(p.Border).Padding(0, 1),
		focused:  lipgloss.NewStyle().Border(border).BorderForeground(p.Accent).Padding(0, 1),
		heading:  lipgloss.NewStyle().Bold(true).Foreground(p.AccentAlt),
		muted:    lipgloss.NewStyle().Foreground(p.Muted),
		selected: lipgloss.NewStyle().Bold(true).Foreground(p.Background).Background(p.Accent),
		status:   lipgloss.NewStyle().Foreground(p.Success),
		errText:  lipgloss.NewStyle().Bold(true).Foreground(p.Warning),
		axis:     lipgloss.NewStyle().Foreground(p.Muted),
		curve:    lipgloss.NewStyle().Foreground(p.Curve),
		point:    lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		active:   lipgloss.NewStyle().Bold(true).Foreground(p.AccentAlt),
		act:      lipgloss.NewStyle().Foreground(p.Border),
		cursor:   lipgloss.NewStyle().Bold(true).Foreground(p.Warning),
		grid:     lipgloss.NewStyle().Foreground(p.Grid),
	}
}

// exportColors maps a palette onto the PNG composer.
func exportColors(p palette) export.Colors {
	return export.Colors{
		Background: hexColor(p.Background),
		Ink:        hexColor(p.Text),
		Muted:      hexColor(p.Muted),
		Header:     hexColor(p.Accent),
		Marker:     hexColor(p.AccentAlt),
		MarkerInk:  hexColor(p.Background),
	}
}

func hexColor(c lipgloss.Color) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(string(c), "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
