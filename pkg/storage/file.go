package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File stores each key as `<key>.json` under a root directory. Writes go to a
// temporary file first and are renamed into place.
type File struct {
	mu   sync.Mutex
	root string
}

// NewFile returns a file-backed store rooted at root, creating it if needed.
func NewFile(root string) (*File, error) {
	if strings.TrimSpace(root) == "" {
		root = "./formbuilder-data"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %q: %w", root, err)
	}
	return &File{root: root}, nil
}

func (f *File) Driver() Driver { return DriverFile }

// Root returns the directory holding the stored files.
func (f *File) Root() string { return f.root }

func (f *File) pathFor(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(f.root, key+".json"), nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.pathFor(key)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %q: %w", key, err)
	}
	return data, nil
}

func (f *File) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.root, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp for %q: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: close %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: replace %q: %w", key, err)
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

func (f *File) Close() error { return nil }
