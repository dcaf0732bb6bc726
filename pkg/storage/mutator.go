package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/tidwall/jsonc"

	"github.com/idreset/idreset/internal/id"
	"github.com/idreset/idreset/pkg/logging"
)

// TelemetryKey is the root object holding the identity fields.
const TelemetryKey = "telemetry"

// writeOptions matches the layout the application writes: two-space
// indent, sorted keys, no HTML escaping.
var writeOptions = &ojg.Options{Indent: 2, Sort: true, HTMLUnsafe: true}

// Mutator updates the identity fields of a storage file.
type Mutator struct {
	FS     FileSystem
	Logger *slog.Logger
}

// NewMutator returns a Mutator over fs.
func NewMutator(fs FileSystem, logger *slog.Logger) *Mutator {
	return &Mutator{FS: fs, Logger: logging.OrNop(logger)}
}

// Update writes ids into the telemetry object of the JSON document at path.
//
// The file is either fully updated or left with its original bytes; the
// returned error tells which failure happened. A *CriticalError means the
// rollback failed too.
func (m *Mutator) Update(ctx context.Context, path string, ids id.IdentitySet) error {
	logger := logging.OrNop(m.Logger)

	exists, err := m.FS.Exists(ctx, path)
	if err != nil {
		logger.Error("Failed to check configuration file", "path", path, "error", err)
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !exists {
		logger.Error("Configuration file not found", "path", path)
		logger.Warn("Please install and run Cursor once before using this tool")
		return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	original, err := m.FS.ReadFile(ctx, path)
	if err != nil {
		logger.Error("Failed to read configuration file", "path", path, "error", err)
		return err
	}

	updated, err := rewrite(path, original, ids)
	if err != nil {
		logger.Error("Failed to update configuration JSON", "path", path, "error", err)
		return err
	}

	if err := m.FS.WriteFile(ctx, path, updated); err != nil {
		logger.Error("Failed to write updated configuration", "path", path, "error", err)
		if rbErr := m.FS.WriteFile(ctx, path, original); rbErr != nil {
			logger.Log(ctx, logging.LevelCritical, "Failed to restore original content after write error, restore it manually from the backup",
				"path", path, "error", rbErr)
			return &CriticalError{Path: path, WriteErr: err, RollbackErr: rbErr}
		}
		logger.Warn("Original configuration content restored", "path", path)
		return &WriteError{Path: path, Err: err}
	}

	logger.Info("Configuration file updated successfully", "path", path)
	return nil
}

// rewrite returns data with the identity fields replaced. It never touches
// the file; errors leave the caller free to keep the original bytes.
func rewrite(path string, data []byte, ids id.IdentitySet) ([]byte, error) {
	doc, err := oj.Parse(jsonc.ToJSON(data))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrRootNotObject
	}

	telemetry, ok := root[TelemetryKey].(map[string]any)
	if !ok {
		telemetry = map[string]any{}
		root[TelemetryKey] = telemetry
	}
	for field, value := range ids.Fields() {
		telemetry[field] = value
	}

	return []byte(oj.JSON(root, writeOptions)), nil
}
