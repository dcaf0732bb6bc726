package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/tidwall/jsonc"

	"github.com/idreset/idreset/internal/id"
)

// TimestampLayout is the suffix layout of backup artifact names.
const TimestampLayout = "20060102_150405"

// BackupName returns "<base>.backup_<YYYYMMDD_HHMMSS>" for the file at path.
func BackupName(path string, at time.Time) string {
	return filepath.Base(path) + ".backup_" + at.Format(TimestampLayout)
}

// UniquePath returns path, or path with "_1", "_2", ... inserted before the
// extension when earlier artifacts already use the name. Backups never
// overwrite each other, even for two runs within the same second.
func UniquePath(ctx context.Context, fs FileSystem, path string) (string, error) {
	ext := ""
	base := path
	if e := filepath.Ext(path); e != "" && !strings.Contains(e, "backup_") {
		ext = e
		base = strings.TrimSuffix(path, e)
	}
	candidate := path
	for n := 1; ; n++ {
		exists, err := fs.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "_" + strconv.Itoa(n) + ext
	}
}

// Backup copies src into dir as a timestamped artifact and returns its path.
func Backup(ctx context.Context, fs FileSystem, src, dir string, at time.Time) (string, error) {
	data, err := fs.ReadFile(ctx, src)
	if err != nil {
		return "", err
	}
	if err := fs.MkdirAll(ctx, dir); err != nil {
		return "", err
	}
	dest, err := UniquePath(ctx, fs, filepath.Join(dir, BackupName(src, at)))
	if err != nil {
		return "", err
	}
	if err := fs.WriteFile(ctx, dest, data); err != nil {
		return "", err
	}
	return dest, nil
}

// ListBackups returns the artifact names in dir. A missing directory yields
// an empty list.
func ListBackups(ctx context.Context, fs FileSystem, dir string) ([]string, error) {
	exists, err := fs.Exists(ctx, dir)
	if err != nil || !exists {
		return nil, err
	}
	return fs.List(ctx, dir)
}

// Restore writes the backup artifact at backup over path. The artifact must
// hold a JSON object with the storage file layout, otherwise path is left
// untouched.
func Restore(ctx context.Context, fs FileSystem, backup, path string) error {
	data, err := fs.ReadFile(ctx, backup)
	if err != nil {
		return err
	}
	doc, err := oj.Parse(jsonc.ToJSON(data))
	if err != nil {
		return &ParseError{Path: backup, Err: err}
	}
	if _, ok := doc.(map[string]any); !ok {
		return fmt.Errorf("%s: %w", backup, ErrRootNotObject)
	}
	if err := Validate(backup, data); err != nil {
		return err
	}
	return fs.WriteFile(ctx, path, data)
}

// ReadIdentity returns the identity fields currently stored at path. Absent
// or non-string fields are omitted.
func ReadIdentity(ctx context.Context, fs FileSystem, path string) (map[string]string, error) {
	exists, err := fs.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	data, err := fs.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	doc, err := oj.Parse(jsonc.ToJSON(data))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	out := make(map[string]string, 4)
	for _, field := range id.FieldNames() {
		if v, ok := jp.C(TelemetryKey).C(field).First(doc).(string); ok {
			out[field] = v
		}
	}
	return out, nil
}
