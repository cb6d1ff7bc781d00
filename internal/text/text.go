package text

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/DaanHessen/tensioncurve/internal/engine"
)

// Renderer turns markdown into terminal output.
type Renderer interface {
	Render(md string) (string, error)
}

// AdviceMarkdown formats a recommendation for the side panel.
func AdviceMarkdown(rec engine.Recommendation) string {
	var b strings.Builder
	b.WriteString("## Recommendation\n\n")
	b.WriteString(rec.Headline + "\n")
	if rec.Band != engine.BandNone {
		b.WriteString(fmt.Sprintf("\n_Band: %s_\n", rec.Band))
	}
	for _, s := range rec.Suggestions {
		b.WriteString("\n> " + s + "\n")
	}
	if len(rec.Techniques) > 0 {
		if rec.Direction == engine.DirectionUp {
			b.WriteString("\n### Ways to lower tension\n")
		} else {
			b.WriteString("\n### Ways to raise tension\n")
		}
		for _, t := range rec.Techniques {
			b.WriteString("- " + t + "\n")
		}
	}
	return b.String()
}

// NewGlamour returns a glamour-backed renderer wrapping at width.
func NewGlamour(style string, width int) (Renderer, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("could not create renderer: %w", err)
	}
	return r, nil
}

// Plain returns markdown unchanged apart from word wrapping at width cells.
func Plain(width int) Renderer { return plainRenderer{width: width} }

type plainRenderer struct{ width int }

func (p plainRenderer) Render(md string) (string, error) {
	var out []string
	for _, line := range strings.Split(md, "\n") {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wordwrap.String(strings.TrimSpace(line), p.width))
	}
	return strings.Join(out, "\n"), nil
}

// WithFallback returns a renderer that prefers primary and falls back to backup on error.
func WithFallback(primary, fallback Renderer) Renderer {
	return &fallbackRenderer{p: primary, f: fallback}
}

type fallbackRenderer struct{ p, f Renderer }

func (r *fallbackRenderer) Render(md string) (string, error) {
	if r.p == nil {
		return r.f.Render(md)
	}
	if s, err := r.p.Render(md); err == nil {
		return s, nil
	}
	return r.f.Render(md)
}
