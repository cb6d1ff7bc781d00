package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// FileStore keeps each key as <dir>/<key>.json.
type FileStore struct {
	dir       string
	lastWrite atomic.Int64 // unix millis of our own last write
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("file store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap(err, "file store: create dir")
	}
	return &FileStore{dir: dir}, nil
}

// Dir is the directory holding the documents.
func (f *FileStore) Dir() string { return f.dir }

// Path is the file backing key.
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

// LastWrite reports when this process last wrote a document.
func (f *FileStore) LastWrite() time.Time { return time.UnixMilli(f.lastWrite.Load()) }

func (f *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, wrap(err, "file store: read")
	}
	return data, true, nil
}

// Put writes through a temp file and rename so a crash cannot leave a
// truncated document behind.
func (f *FileStore) Put(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".campaign-*.tmp")
	if err != nil {
		return wrap(err, "file store: create temp")
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return wrap(err, "file store: write")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return wrap(err, "file store: close")
	}
	f.lastWrite.Store(time.Now().UnixMilli())
	if err := os.Rename(tmpPath, f.Path(key)); err != nil {
		os.Remove(tmpPath)
		return wrap(err, "file store: rename")
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "campaign"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}
