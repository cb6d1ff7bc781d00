package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DaanHessen/tensioncurve/internal/engine"
)

type fakeChart struct {
	size   image.Point
	points []engine.Point
	acts   []float64
	err    error
}

func (f *fakeChart) SetSeries(points []engine.Point, acts []float64) {
	f.points, f.acts = points, acts
}

func (f *fakeChart) PointToPixel(i int) (image.Point, bool) {
	if i < 0 || i >= len(f.points) {
		return image.Point{}, false
	}
	return image.Pt(20+i*40, 60), true
}

func (f *fakeChart) Render() (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, f.size.X, f.size.Y))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}

func sampleCampaign() *engine.Campaign {
	c := engine.NewCampaign()
	c.AddPoint(10, 20)
	c.AddPoint(30, 60)
	c.AddPoint(55, 35)
	_ = c.UpdateEvent(0, "Ambush", "Goblins on the road", "1")
	_ = c.UpdateEvent(1, "Betrayal", "The guide turns", "1")
	_ = c.UpdateEvent(2, "Rest", "", "2")
	c.AddAct()
	return c
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"":                       DefaultFilename,
		"   ":                    DefaultFilename,
		"!!!":                    DefaultFilename,
		"Curse of Strahd":        "curse-of-strahd.png",
		"  Lost Mine -- Part 2 ": "lost-mine-part-2.png",
		"Émile's Tale!":          "émile-s-tale.png",
	}
	for title, want := range cases {
		if got := Filename(title); got != want {
			t.Fatalf("Filename(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestComposeBareIsChartOnly(t *testing.T) {
	ch := &fakeChart{size: image.Pt(300, 200)}
	img, err := NewComposer(ch).Compose(sampleCampaign(), "", LayoutBare)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if img.Bounds().Size() != image.Pt(300, 200) {
		t.Fatalf("bare size = %v", img.Bounds().Size())
	}
	if len(ch.points) != 3 || len(ch.acts) != 1 {
		t.Fatalf("chart got %d points, %d acts", len(ch.points), len(ch.acts))
	}
}

func TestComposeAnnotatedAddsLegendAndMarkers(t *testing.T) {
	ch := &fakeChart{size: image.Pt(300, 200)}
	comp := NewComposer(ch)
	img, err := comp.Compose(sampleCampaign(), "Curse of Strahd", LayoutAnnotated)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= 300 || b.Dy() <= 200 {
		t.Fatalf("annotated image should be larger than the chart, got %v", b.Size())
	}
	// Marker discs are drawn around each mapped point; sample the rim, away
	// from the digit in the middle.
	lineH := comp.Face.Metrics().Height.Ceil()
	titleH := comp.Padding + lineH + comp.Padding/2
	at := image.Pt(20, 60+titleH).Add(image.Pt(0, comp.MarkerRadius-1))
	r, g, bl, _ := img.At(at.X, at.Y).RGBA()
	mr, mg, mb, _ := comp.Colors.Marker.RGBA()
	if r != mr || g != mg || bl != mb {
		t.Fatalf("expected marker colour at %v", at)
	}
}

func TestComposePropagatesChartError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewComposer(&fakeChart{err: boom}).Compose(sampleCampaign(), "x", LayoutAnnotated)
	if !errors.Is(err, boom) {
		t.Fatalf("expected chart error, got %v", err)
	}
}

func TestExportAbortedWithoutTitle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	camp := sampleCampaign()
	before := camp.Clone()
	ex := NewExporter(dir, nil)
	ex.Composer = NewComposer(&fakeChart{size: image.Pt(100, 100)})
	for _, title := range []string{"", "   "} {
		_, err := ex.Export(context.Background(), camp, LayoutAnnotated, title)
		if !errors.Is(err, engine.ErrAborted) {
			t.Fatalf("title %q: expected ErrAborted, got %v", title, err)
		}
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Fatalf("aborted export left files: %v", names)
	}
	if camp.Len() != before.Len() || camp.ActCount() != before.ActCount() {
		t.Fatalf("aborted export changed the campaign")
	}
	for i, ev := range camp.Events() {
		if ev != before.Events()[i] {
			t.Fatalf("event %d changed: %+v", i, ev)
		}
	}
}

func TestExportWritesPNG(t *testing.T) {
	dir := t.TempDir()
	ex := NewExporter(dir, nil)
	ex.Composer = NewComposer(&fakeChart{size: image.Pt(120, 80)})

	path, err := ex.Export(context.Background(), sampleCampaign(), LayoutBare, "")
	if err != nil {
		t.Fatalf("Export bare: %v", err)
	}
	if filepath.Base(path) != DefaultFilename {
		t.Fatalf("bare export path = %s", path)
	}
	path, err = ex.Export(context.Background(), sampleCampaign(), LayoutAnnotated, "Curse of Strahd")
	if err != nil {
		t.Fatalf("Export annotated: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("export is not a png: %v", err)
	}
	for _, name := range dirEntries(t, dir) {
		if strings.HasSuffix(name, ".tmp") {
			t.Fatalf("temp file left behind: %s", name)
		}
	}
}

func TestSetColorsDoesNotWaitForExport(t *testing.T) {
	ex := NewExporter(t.TempDir(), nil)
	ex.Composer = NewComposer(&fakeChart{size: image.Pt(40, 40)})
	want := DefaultColors
	want.Marker = color.RGBA{R: 1, G: 2, B: 3, A: 255}

	ex.mu.Lock() // an export in progress
	done := make(chan struct{})
	go func() {
		ex.SetColors(want)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		ex.mu.Unlock()
		t.Fatalf("SetColors blocked behind a running export")
	}
	ex.mu.Unlock()

	if got := ex.Colors(); got != want {
		t.Fatalf("Colors() = %+v, want %+v", got, want)
	}
	if _, err := ex.Export(context.Background(), sampleCampaign(), LayoutBare, ""); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if ex.Composer.Colors != want {
		t.Fatalf("export used %+v, want %+v", ex.Composer.Colors, want)
	}
}

func TestExportHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	ex := NewExporter(dir, nil)
	ex.Composer = NewComposer(&fakeChart{size: image.Pt(50, 50)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ex.Export(ctx, sampleCampaign(), LayoutBare, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Fatalf("cancelled export left files: %v", names)
	}
}

func TestWritePNGCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()
	// Encoding an empty image fails.
	if _, err := WritePNG(dir, "empty.png", image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Fatalf("expected encode error")
	}
	// A non-empty directory in the way makes the rename fail.
	blocker := filepath.Join(dir, "blocked.png")
	if err := os.MkdirAll(filepath.Join(blocker, "child"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := WritePNG(dir, "blocked.png", image.NewRGBA(image.Rect(0, 0, 4, 4))); err == nil {
		t.Fatalf("expected rename error")
	}
	for _, name := range dirEntries(t, dir) {
		if name != "blocked.png" {
			t.Fatalf("unexpected leftover %s", name)
		}
	}
}

func TestGoChartPointToPixel(t *testing.T) {
	ch := NewGoChart(400, 300)
	ch.SetSeries([]engine.Point{{Progress: 10, Tension: 20}, {Progress: 50, Tension: 80}, {Progress: 90, Tension: 40}}, []float64{50})
	if _, ok := ch.PointToPixel(0); ok {
		t.Fatalf("no pixels before the first render")
	}
	img, err := ch.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
		t.Fatalf("size = %v", img.Bounds().Size())
	}
	var px []image.Point
	for i := 0; i < 3; i++ {
		p, ok := ch.PointToPixel(i)
		if !ok || !p.In(img.Bounds()) {
			t.Fatalf("point %d mapped to %v (ok=%v)", i, p, ok)
		}
		px = append(px, p)
	}
	if !(px[0].X < px[1].X && px[1].X < px[2].X) {
		t.Fatalf("x should grow with progress: %v", px)
	}
	if !(px[1].Y < px[2].Y && px[2].Y < px[0].Y) {
		t.Fatalf("y should shrink as tension rises: %v", px)
	}
	if _, ok := ch.PointToPixel(3); ok {
		t.Fatalf("index 3 should be out of range")
	}
}

func TestGoChartRendersEmptyCampaign(t *testing.T) {
	ch := NewGoChart(200, 150)
	ch.SetSeries(nil, nil)
	if _, err := ch.Render(); err != nil {
		t.Fatalf("Render empty: %v", err)
	}
}

func TestLegendText(t *testing.T) {
	got := LegendText(sampleCampaign())
	want := "Act 1\n1. Ambush\n   Goblins on the road\n2. Betrayal\n   The guide turns\n\nAct 2\n3. Rest\n"
	if got != want {
		t.Fatalf("LegendText =\n%q\nwant\n%q", got, want)
	}
}
