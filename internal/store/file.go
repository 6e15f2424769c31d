package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rickgao/pricesync/internal/table"
)

// File stores the history as a CSV file on local disk.
type File struct {
	Path string
}

// NewFile creates a file store.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Name() string { return "file:" + f.Path }

func (f *File) Read(ctx context.Context) (*table.Table, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNotFound
	}
	return decodeCSV(bytes.NewReader(data))
}

// Replace writes to a temporary file in the same directory, syncs it and
// renames it over the target, so readers see either the old or the new
// file in full.
func (f *File) Replace(ctx context.Context, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeCSV(t)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return transient(fmt.Errorf("create temp file: %w", err), !errors.Is(err, os.ErrPermission))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return transient(fmt.Errorf("write %s: %w", tmpName, err), true)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return transient(fmt.Errorf("sync %s: %w", tmpName, err), true)
	}
	if err := tmp.Close(); err != nil {
		return transient(fmt.Errorf("close %s: %w", tmpName, err), true)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return transient(fmt.Errorf("rename to %s: %w", f.Path, err), !errors.Is(err, os.ErrPermission))
	}
	return nil
}
