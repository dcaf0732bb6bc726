package identitystore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/idreset/idreset/internal/clock"
	"github.com/idreset/idreset/internal/id"
	"github.com/idreset/idreset/pkg/logging"
	"github.com/idreset/idreset/pkg/storage"
)

// ErrVerifyFailed is returned when the value read back after a successful
// write differs from the value written.
var ErrVerifyFailed = errors.New("identity value verification failed")

// WriteError is returned when the new value could not be written.
type WriteError struct {
	Err error
	// Restored reports whether the backup was imported again.
	Restored bool
	// Backup is the export taken before the write, if any.
	Backup string
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write identity value: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Rotation describes a successful rotation.
type Rotation struct {
	Previous string
	Value    string
	// Backup is the export path, empty when the export failed.
	Backup string
}

// Rotator replaces the value of a Store.
type Rotator struct {
	Store  Store
	FS     storage.FileSystem
	Clock  clock.Clock
	Logger *slog.Logger
	// NewValue generates the replacement value. Defaults to id.UUID.
	NewValue func() string
}

// NewRotator returns a Rotator with a real clock and UUID values.
func NewRotator(store Store, fs storage.FileSystem, logger *slog.Logger) *Rotator {
	return &Rotator{
		Store:    store,
		FS:       fs,
		Clock:    clock.Real(),
		Logger:   logging.OrNop(logger),
		NewValue: id.UUID,
	}
}

// BackupName returns "<ValueName>_<YYYYMMDD_HHMMSS>.<ext>".
func BackupName(info Info, at time.Time) string {
	return info.ValueName + "_" + at.Format(storage.TimestampLayout) + "." + info.BackupExt
}

// Rotate backs up, replaces and verifies the store value. It returns the
// new value on success.
func (r *Rotator) Rotate(ctx context.Context, backupDir string) (*Rotation, error) {
	logger := logging.OrNop(r.Logger)
	info := r.Store.Info()
	clk := r.Clock
	if clk == nil {
		clk = clock.Real()
	}
	newValue := r.NewValue
	if newValue == nil {
		newValue = id.UUID
	}

	logger.Info(fmt.Sprintf("Updating %s...", info.ValueName), "location", info.Location)

	key, err := r.Store.Open(ctx)
	if err != nil {
		logger.Error("Failed to open identity store, ensure you have admin rights", "location", info.Location, "error", err)
		return nil, err
	}
	defer key.Close()

	original, err := key.Read()
	switch {
	case errors.Is(err, ErrValueNotFound):
		logger.Warn(fmt.Sprintf("%s does not exist yet, a new value will be created", info.ValueName))
		original = ""
	case err != nil:
		logger.Error(fmt.Sprintf("Unable to get current %s", info.ValueName), "error", err)
		original = ""
	default:
		logger.Info("Current value", "location", info.Location, info.ValueName, original)
	}

	if err := r.FS.MkdirAll(ctx, backupDir); err != nil {
		logger.Warn("Failed to create backup directory, proceeding without backup", "dir", backupDir, "error", err)
	}

	backup := filepath.Join(backupDir, BackupName(info, clk.Now()))
	if unique, err := storage.UniquePath(ctx, r.FS, backup); err == nil {
		backup = unique
	}
	logger.Info("Backing up identity store", "backup", backup)
	if err := key.Export(ctx, backup); err != nil {
		logger.Warn("Identity store backup failed, proceeding with caution", "error", err)
	} else {
		logger.Info("Identity store backed up successfully")
	}

	value := newValue()
	if err := key.Write(value); err != nil {
		logger.Error(fmt.Sprintf("Failed to set %s", info.ValueName), "error", err)
		werr := &WriteError{Err: err}
		if original != "" {
			if ok, _ := r.FS.Exists(ctx, backup); ok {
				werr.Backup = backup
				werr.Restored = r.restore(ctx, key, backup)
			}
		}
		return nil, werr
	}
	logger.Info(fmt.Sprintf("%s set", info.ValueName), "value", value)

	got, err := key.Read()
	if err != nil {
		logger.Error("Failed to verify identity store update", "error", err, "backup", backup)
		return nil, fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}
	if got != value {
		logger.Error("Identity store verification failed: value does not match",
			"got", got, "want", value, "backup", backup)
		return nil, fmt.Errorf("%w: read %q, wrote %q", ErrVerifyFailed, got, value)
	}

	logger.Info("Identity store update verified", "location", info.Location, info.ValueName, value)

	rot := &Rotation{Previous: original, Value: value}
	if ok, _ := r.FS.Exists(ctx, backup); ok {
		rot.Backup = backup
	}
	return rot, nil
}

func (r *Rotator) restore(ctx context.Context, key Key, backup string) bool {
	logger := logging.OrNop(r.Logger)
	logger.Warn("Attempting to restore identity store from backup", "backup", backup)
	if err := key.Import(ctx, backup); err != nil {
		logger.Error("Identity store restore failed, manual restore needed", "backup", backup, "error", err)
		return false
	}
	logger.Info("Identity store restored from backup")
	return true
}
