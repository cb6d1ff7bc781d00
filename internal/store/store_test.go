package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/DaanHessen/tensioncurve/internal/engine"
	"github.com/DaanHessen/tensioncurve/internal/util"
)

func sampleCampaign(n, acts int) *engine.Campaign {
	c := engine.NewCampaign()
	for i := 0; i < n; i++ {
		idx := c.AddPoint(float64(i)*7.5, float64(i*13%100))
		if i%2 == 0 {
			_ = c.UpdateEvent(idx, "Scene "+string(rune('A'+i)), "A description with \"quotes\" and, commas", "2")
		}
	}
	for i := 0; i < acts; i++ {
		c.AddAct()
	}
	return c
}

func assertSameCampaign(t *testing.T, got, want *engine.Campaign) {
	t.Helper()
	if !reflect.DeepEqual(got.Events(), want.Events()) {
		t.Fatalf("events differ:\n got %+v\nwant %+v", got.Events(), want.Events())
	}
	if !reflect.DeepEqual(got.Acts(), want.Acts()) {
		t.Fatalf("acts differ: got %v want %v", got.Acts(), want.Acts())
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, tc := range []struct{ points, acts int }{{0, 0}, {1, 0}, {0, 2}, {5, 3}, {12, 1}} {
		want := sampleCampaign(tc.points, tc.acts)
		if err := Save(ctx, fs, "dndCampaign", want); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := Load(ctx, fs, "dndCampaign")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		assertSameCampaign(t, got, want)
	}
}

func TestFileStorePutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewFileStore(dir)
	if err := fs.Put(context.Background(), "../weird key", []byte("{}")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Fatalf("unexpected files: %v", entries)
	}
	if filepath.Dir(fs.Path("../weird key")) != dir {
		t.Fatalf("key escaped the store directory: %s", fs.Path("../weird key"))
	}
	if fs.LastWrite().IsZero() {
		t.Fatalf("last write not recorded")
	}
}

func TestLoadNotFound(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	_, err := Load(context.Background(), fs, "missing")
	if !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "campaigns.db")
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	if _, err := Load(ctx, s, "dndCampaign"); !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty db, got %v", err)
	}
	first := sampleCampaign(3, 1)
	if err := Save(ctx, s, "dndCampaign", first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := sampleCampaign(6, 2)
	if err := Save(ctx, s, "dndCampaign", second); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	got, err := Load(ctx, s, "dndCampaign")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertSameCampaign(t, got, second)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "campaigns.db")
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Put(ctx, "k", []byte(`{"points":[],"acts":[],"events":[]}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.Close()
	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, ok, err := s.Get(ctx, "k"); err != nil || !ok {
		t.Fatalf("Get after reopen = %v, %v", ok, err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv, err := Open(ctx, util.Config{Backend: util.BackendFile, DataDir: dir}, nil)
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	if _, ok := kv.(*FileStore); !ok {
		t.Fatalf("file backend returned %T", kv)
	}
	kv, err = Open(ctx, util.Config{Backend: util.BackendSQLite, DataDir: dir}, nil)
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer kv.Close()
	if _, ok := kv.(*SQLiteStore); !ok {
		t.Fatalf("sqlite backend returned %T", kv)
	}
	if _, err := Open(ctx, util.Config{Backend: util.BackendPostgres}, nil); err == nil {
		t.Fatalf("postgres without DSN should fail")
	}
}

func TestNewMigrator(t *testing.T) {
	if _, err := NewMigrator(util.Config{Backend: util.BackendFile}); err == nil {
		t.Fatalf("file backend should have nothing to migrate")
	}
	if _, err := NewMigrator(util.Config{Backend: util.BackendPostgres}); err == nil {
		t.Fatalf("postgres without DSN should fail")
	}
	m, err := NewMigrator(util.Config{Backend: util.BackendSQLite, DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewMigrator: %v", err)
	}
	ctx := context.Background()
	if err := m.Up(ctx); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := m.Up(ctx); err != ErrNoChange {
		t.Fatalf("second Up = %v, want ErrNoChange", err)
	}
	if err := m.Down(ctx); err != nil {
		t.Fatalf("Down: %v", err)
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
