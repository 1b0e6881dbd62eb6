package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()
	payload := []byte("snapshot-bytes")

	if err := store.Save(ctx, RegionManifest, payload); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx, RegionManifest)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestFileStoreLoadMissingRegion(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if _, err := store.Load(context.Background(), RegionAdmissions); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, RegionManifest, []byte("old")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, RegionManifest, []byte("new")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx, RegionManifest)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestFileStoreDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, RegionAdmissions, []byte("x")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx, RegionAdmissions); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, RegionAdmissions); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Absent region, still no error.
	if err := store.Delete(ctx, RegionAdmissions); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestFileStoreRejectsBadRegionNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	for _, region := range []string{"", "../escape", "a/b", `a\b`} {
		if err := store.Save(ctx, region, []byte("x")); !errors.Is(err, ErrBadRegion) {
			t.Fatalf("region %q: expected ErrBadRegion, got %v", region, err)
		}
	}
}
