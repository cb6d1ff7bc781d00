package engine

import (
	"fmt"
	"math"
	"strings"
)

const (
	// AdvicePrefix opens every headline.
	AdvicePrefix = "Based on the tension curve principles: "
	// NewArcChance is the probability of the extra arc suggestion.
	NewArcChance = 0.3
	// NewArcMinPoints is the curve length from which the arc suggestion may appear.
	NewArcMinPoints = 6
	minStep         = 5
	maxTension      = 100
)

const (
	msgAddPoints = "Add more points to get a recommendation."
	msgNewArc    = "Consider closing the current arc and opening a new one with a fresh hook."
)

var (
	raiseTechniques = []string{
		"Introduce a ticking clock",
		"Reveal a betrayal or a hidden threat",
		"Put something a character cares about at stake",
	}
	lowerTechniques = []string{
		"Give the party a safe haven to rest and regroup",
		"Add a moment of humor or camaraderie",
		"Let the players explore or trade without pressure",
	}
	bandAdvice = map[Band]string{
		BandCalm:     "Tension is very low. Introduce a hook, a rumor or a looming threat to draw the players in.",
		BandBuilding: "Tension is building. Layer complications and foreshadow the coming conflict.",
		BandRising:   "Tension is moderate. Escalate with a setback or a hard choice.",
		BandHigh:     "This is a high point. Pay it off with a dramatic confrontation, then plan a release.",
		BandClimax:   "Tension is at its peak. Resolve the climax and give the players a breather afterwards.",
	}
)

// Roller supplies the randomness behind optional advice. *Stream satisfies it.
type Roller interface {
	Float64() float64
}

// Recommendation is the advice computed from the recent curve.
type Recommendation struct {
	Policy      string
	Headline    string
	Direction   Direction
	Delta       int // rounded last minus rounded second-to-last tension
	Magnitude   int // suggested counter-adjustment
	Band        Band
	Suggestions []string
	Techniques  []string
}

// Text flattens the recommendation into plain lines, used for the clipboard.
func (r Recommendation) Text() string {
	var b strings.Builder
	b.WriteString(r.Headline)
	for _, s := range r.Suggestions {
		b.WriteString("\n" + s)
	}
	for _, t := range r.Techniques {
		b.WriteString("\n- " + t)
	}
	return b.String()
}

// Policy maps a curve to advice.
type Policy interface {
	Name() string
	Recommend(points []Point) Recommendation
}

// PolicyFor returns the named policy. The roller is only used by the trend policy.
func PolicyFor(name string, r Roller) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyTrend:
		return TrendPolicy{Roller: r}, nil
	case PolicyBands:
		return BandPolicy{}, nil
	default:
		return nil, invalid("unknown advice policy %q (want %s)", name, strings.Join(AllPolicies, "|"))
	}
}

// TrendPolicy compares the last two tension values and suggests a
// counter-adjustment. It is the default policy.
type TrendPolicy struct {
	// Roller decides the optional new-arc suggestion; nil disables it.
	Roller Roller
}

func (TrendPolicy) Name() string { return PolicyTrend }

func (p TrendPolicy) Recommend(points []Point) Recommendation {
	rec := Recommendation{Policy: PolicyTrend}
	if len(points) < 2 {
		rec.Headline = AdvicePrefix + msgAddPoints
		return rec
	}
	last := int(math.Round(points[len(points)-1].Tension))
	prev := int(math.Round(points[len(points)-2].Tension))
	rec.Delta = last - prev
	// A flat step counts as falling.
	if rec.Delta > 0 {
		rec.Direction = DirectionUp
		rec.Magnitude = clamp(rec.Delta-minStep, minStep, maxTension-last)
		rec.Headline = AdvicePrefix + fmt.Sprintf("Tension rose by %d. Consider easing it by about %d points to give the table room to breathe.", rec.Delta, rec.Magnitude)
		rec.Techniques = append([]string(nil), lowerTechniques...)
	} else {
		rec.Direction = DirectionDown
		rec.Magnitude = clamp(abs(rec.Delta)+minStep, minStep, last)
		if rec.Delta == 0 {
			rec.Headline = AdvicePrefix + fmt.Sprintf("Tension held at %d. Consider raising it by about %d points to drive the story forward.", last, rec.Magnitude)
		} else {
			rec.Headline = AdvicePrefix + fmt.Sprintf("Tension fell by %d. Consider raising it by about %d points to keep the players engaged.", -rec.Delta, rec.Magnitude)
		}
		rec.Techniques = append([]string(nil), raiseTechniques...)
	}
	if len(points) >= NewArcMinPoints && p.Roller != nil && p.Roller.Float64() < NewArcChance {
		rec.Suggestions = append(rec.Suggestions, msgNewArc)
	}
	return rec
}

// BandPolicy looks only at the last tension value and returns the canned
// advice of its band.
type BandPolicy struct{}

func (BandPolicy) Name() string { return PolicyBands }

func (BandPolicy) Recommend(points []Point) Recommendation {
	rec := Recommendation{Policy: PolicyBands}
	if len(points) == 0 {
		rec.Headline = AdvicePrefix + msgAddPoints
		return rec
	}
	rec.Band = BandOf(points[len(points)-1].Tension)
	rec.Headline = AdvicePrefix + bandAdvice[rec.Band]
	return rec
}

// BandOf classifies a tension value.
func BandOf(tension float64) Band {
	switch {
	case tension < 20:
		return BandCalm
	case tension < 40:
		return BandBuilding
	case tension < 60:
		return BandRising
	case tension < 80:
		return BandHigh
	default:
		return BandClimax
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
