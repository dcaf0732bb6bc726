package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// FileSystem is the file access a reset needs.
type FileSystem interface {
	Exists(ctx context.Context, path string) (bool, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	MkdirAll(ctx context.Context, path string) error
	// List returns the names of the regular files in dir, sorted.
	List(ctx context.Context, dir string) ([]string, error)
}

// AFS is a FileSystem backed by an afs.Service. Plain paths are treated
// as local files; URLs with a scheme (mem://, file://) are passed through.
type AFS struct {
	fs afs.Service
}

// NewFileSystem returns the local FileSystem.
func NewFileSystem() *AFS {
	return &AFS{fs: afs.New()}
}

// NewAFS wraps an existing afs.Service.
func NewAFS(service afs.Service) *AFS {
	return &AFS{fs: service}
}

func location(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return url.Normalize(filepath.ToSlash(path), file.Scheme)
}

// Exists reports whether path exists.
func (a *AFS) Exists(ctx context.Context, path string) (bool, error) {
	return a.fs.Exists(ctx, location(path))
}

// ReadFile returns the content of path.
func (a *AFS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := a.fs.DownloadWithURL(ctx, location(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// WriteFile replaces the content of path with data.
func (a *AFS) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := a.fs.Upload(ctx, location(path), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// MkdirAll creates dir and any missing parents.
func (a *AFS) MkdirAll(ctx context.Context, dir string) error {
	loc := location(dir)
	if ok, _ := a.fs.Exists(ctx, loc); ok {
		return nil
	}
	if err := a.fs.Create(ctx, loc, file.DefaultDirOsMode, true); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// List returns the regular file names in dir.
func (a *AFS) List(ctx context.Context, dir string) ([]string, error) {
	objects, err := a.fs.List(ctx, location(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		names = append(names, filepath.Base(object.Name()))
	}
	sort.Strings(names)
	return names, nil
}
