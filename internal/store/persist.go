package store

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/DaanHessen/tensioncurve/internal/engine"
)

// document is the persisted shape. Events run parallel to points by index.
type document struct {
	Points []engine.Point `json:"points"`
	Acts   []float64      `json:"acts"`
	Events []eventDoc     `json:"events"`
}

type eventDoc struct {
	Progress    float64 `json:"progress"`
	Tension     float64 `json:"tension"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Act         string  `json:"act"`
}

// Encode serialises a campaign into the persisted document.
func Encode(c *engine.Campaign) ([]byte, error) {
	doc := document{Points: []engine.Point{}, Acts: c.Acts(), Events: []eventDoc{}}
	for _, pe := range c.Events() {
		doc.Points = append(doc.Points, pe.Point)
		doc.Events = append(doc.Events, eventDoc{
			Progress:    pe.Progress,
			Tension:     pe.Tension,
			Name:        pe.Name,
			Description: pe.Description,
			Act:         pe.Act,
		})
	}
	return json.Marshal(doc)
}

// Decode parses a persisted document, accepting the older browser layout
// as well. Shape mismatches are reported as engine.ErrInvalidInput.
func Decode(data []byte) (*engine.Campaign, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrapf(engine.ErrInvalidInput, "campaign document: %v", err)
	}
	if probe == nil {
		return nil, errors.Wrap(engine.ErrInvalidInput, "campaign document: not an object")
	}
	if _, ok := probe["tensionData"]; ok {
		return decodeLegacy(data)
	}
	for _, field := range []string{"points", "events"} {
		if _, ok := probe[field]; !ok {
			return nil, errors.Wrapf(engine.ErrInvalidInput, "campaign document: missing %q", field)
		}
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(engine.ErrInvalidInput, "campaign document: %v", err)
	}
	if len(doc.Events) != len(doc.Points) {
		return nil, errors.Wrapf(engine.ErrInvalidInput, "campaign document: %d events for %d points", len(doc.Events), len(doc.Points))
	}
	records := make([]engine.PointEvent, len(doc.Points))
	for i, p := range doc.Points {
		ev := doc.Events[i]
		records[i] = engine.PointEvent{Point: p, Name: ev.Name, Description: ev.Description, Act: ev.Act}
	}
	return engine.FromParts(records, doc.Acts), nil
}

// Save writes the campaign under key. Store errors propagate unchanged.
func Save(ctx context.Context, kv KV, key string, c *engine.Campaign) error {
	data, err := Encode(c)
	if err != nil {
		return wrap(err, "encode campaign")
	}
	return kv.Put(ctx, key, data)
}

// Load reads the campaign under key, engine.ErrNotFound when absent.
func Load(ctx context.Context, kv KV, key string) (*engine.Campaign, error) {
	data, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(engine.ErrNotFound, "no saved campaign under %q", key)
	}
	return Decode(data)
}

// legacyDocument is what the browser version stored: chart.js data with
// string labels plus events keyed by x/y.
type legacyDocument struct {
	TensionData *struct {
		Labels   []json.RawMessage `json:"labels"`
		Datasets []struct {
			Data []json.RawMessage `json:"data"`
		} `json:"datasets"`
	} `json:"tensionData"`
	Acts   []float64 `json:"acts"`
	Events []struct {
		X           json.RawMessage `json:"x"`
		Y           json.RawMessage `json:"y"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Act         json.RawMessage `json:"act"`
	} `json:"events"`
}

const legacyMatchTolerance = 0.005

func decodeLegacy(data []byte) (*engine.Campaign, error) {
	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(engine.ErrInvalidInput, "legacy campaign: %v", err)
	}
	if doc.TensionData == nil || len(doc.TensionData.Datasets) == 0 {
		return nil, errors.Wrap(engine.ErrInvalidInput, "legacy campaign: no tension dataset")
	}
	ys := doc.TensionData.Datasets[0].Data
	if len(ys) != len(doc.TensionData.Labels) {
		return nil, errors.Wrapf(engine.ErrInvalidInput, "legacy campaign: %d labels for %d values", len(doc.TensionData.Labels), len(ys))
	}
	c := engine.NewCampaign()
	for i := range ys {
		x, err := looseNumber(doc.TensionData.Labels[i])
		if err != nil {
			return nil, errors.Wrapf(engine.ErrInvalidInput, "legacy label %d: %v", i, err)
		}
		y, err := looseNumber(ys[i])
		if err != nil {
			return nil, errors.Wrapf(engine.ErrInvalidInput, "legacy value %d: %v", i, err)
		}
		c.AddPoint(x, y)
	}
	// Old events were appended separately, one record per save. Each record
	// takes the first unannotated point at its coordinates; a record with no
	// such point is a re-save and replaces the latest claim there.
	claimedAt := make([]int, c.Len()) // claim sequence, 0 when unclaimed
	seq := 0
	for _, ev := range doc.Events {
		x, errX := looseNumber(ev.X)
		y, errY := looseNumber(ev.Y)
		if errX != nil || errY != nil || strings.TrimSpace(ev.Name) == "" {
			continue
		}
		target, latest := -1, -1
		for i, pe := range c.Events() {
			if math.Abs(pe.Progress-x) > legacyMatchTolerance || math.Abs(pe.Tension-y) > legacyMatchTolerance {
				continue
			}
			if claimedAt[i] == 0 {
				target = i
				break
			}
			if latest < 0 || claimedAt[i] > claimedAt[latest] {
				latest = i
			}
		}
		if target < 0 {
			target = latest
		}
		if target < 0 {
			continue
		}
		if err := c.UpdateEvent(target, ev.Name, ev.Description, looseString(ev.Act)); err == nil {
			seq++
			claimedAt[target] = seq
		}
	}
	return engine.FromParts(c.Events(), doc.Acts), nil
}

// looseNumber accepts 12.5 as well as "12.50".
func looseNumber(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
