package export

import (
	"context"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/DaanHessen/tensioncurve/internal/engine"
)

// DefaultFilename is used when there is no title to name the file after.
const DefaultFilename = "tension_curve.png"

// Filename derives the export file name from a campaign title.
func Filename(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return DefaultFilename
	}
	return slug + ".png"
}

// WritePNG encodes img into dir/name through a temporary file. The
// temporary file is gone on return whatever the outcome.
func WritePNG(dir, name string, img image.Image) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create export dir")
	}
	tmpPath := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create temp export")
	}
	closed := false
	defer func() {
		if !closed {
			f.Close()
		}
		if err != nil {
			os.Remove(tmpPath)
		}
	}()
	if err = png.Encode(f, img); err != nil {
		return "", errors.Wrap(err, "encode png")
	}
	closed = true
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "close temp export")
	}
	path = filepath.Join(dir, name)
	if err = os.Rename(tmpPath, path); err != nil {
		return "", errors.Wrap(err, "move export into place")
	}
	return path, nil
}

// Exporter turns a campaign into a PNG under Dir. Exports are serialised
// because the composer's chart holds per-render state.
type Exporter struct {
	Dir      string
	Composer *Composer
	Logger   *slog.Logger

	mu     sync.Mutex
	colors atomic.Pointer[Colors]
}

// NewExporter wires a go-chart backed composer.
func NewExporter(dir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{Dir: dir, Composer: NewComposer(NewGoChart(900, 540)), Logger: logger}
}

// SetColors changes the palette used by later exports. It never waits for
// an export in progress.
func (e *Exporter) SetColors(c Colors) { e.colors.Store(&c) }

// Colors is the palette the next export will use.
func (e *Exporter) Colors() Colors {
	if c := e.colors.Load(); c != nil {
		return *c
	}
	return e.Composer.Colors
}

// Export writes the image and returns its path. The annotated layout needs
// a title; without one the export is aborted before anything is written.
// The campaign is only read.
func (e *Exporter) Export(ctx context.Context, camp *engine.Campaign, layout Layout, title string) (string, error) {
	title = strings.TrimSpace(title)
	if layout == LayoutAnnotated && title == "" {
		return "", errors.Wrap(engine.ErrAborted, "export needs a campaign title")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Composer.Colors = e.Colors()
	img, err := e.Composer.Compose(camp, title, layout)
	if err != nil {
		e.Logger.Error("export render failed", "layout", layout.String(), "err", err)
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := WritePNG(e.Dir, Filename(title), img)
	if err != nil {
		e.Logger.Error("export write failed", "dir", e.Dir, "err", err)
		return "", err
	}
	e.Logger.Info("exported campaign", "path", path, "layout", layout.String(), "points", camp.Len())
	return path, nil
}
