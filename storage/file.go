package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// ErrBadRegion is returned when a region name would escape the data
// directory.
var ErrBadRegion = errors.New("invalid storage region name")

// FileStore persists regions as gzip-compressed files under a single data
// directory. Writes go through a temp file plus rename so a crash mid-save
// leaves the previous snapshot intact.
//
// FileStore instances are safe for concurrent use.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the data directory if needed and returns a [FileStore]
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(region string) (string, error) {
	if region == "" || strings.ContainsAny(region, "/\\") || strings.Contains(region, "..") {
		return "", fmt.Errorf("%w: %q", ErrBadRegion, region)
	}
	return filepath.Join(f.dir, region+".snap.gz"), nil
}

// Save atomically replaces the region contents.
func (f *FileStore) Save(ctx context.Context, region string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(region)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, region+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw := gzip.NewWriter(tmp)
	if _, err := zw.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Load returns the region contents, or [ErrNotFound] when the region has
// never been saved.
func (f *FileStore) Load(ctx context.Context, region string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.path(region)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Delete removes the region. Deleting an absent region is not an error.
func (f *FileStore) Delete(ctx context.Context, region string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(region)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
