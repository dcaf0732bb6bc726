package reset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/idreset/idreset/internal/clock"
	"github.com/idreset/idreset/internal/id"
	"github.com/idreset/idreset/pkg/identitystore"
	"github.com/idreset/idreset/pkg/logging"
	"github.com/idreset/idreset/pkg/storage"
)

// ErrPrimaryUpdate is returned when the storage file could not be updated.
var ErrPrimaryUpdate = errors.New("failed to update storage file")

// Step names in run order.
const (
	StepTerminate     = "terminate"
	StepBackup        = "backup"
	StepIdentityStore = "identity-store"
	StepConfig        = "config"
)

// Status of a Step.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Step records the outcome of one phase.
type Step struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Err    error  `json:"-"`
	Detail string `json:"detail,omitempty"`
}

// Terminator closes running instances of the application.
type Terminator interface {
	TerminateNames(ctx context.Context, names []string) error
}

// Options select what a run touches.
type Options struct {
	ProcessNames      []string
	StorageFile       string
	BackupDir         string
	SkipIdentityStore bool
}

// Result is the outcome of a run.
type Result struct {
	Identity     id.IdentitySet `json:"identity"`
	ConfigBackup string         `json:"configBackup,omitempty"`
	StoreBackup  string         `json:"storeBackup,omitempty"`
	StoreValue   string         `json:"storeValue,omitempty"`
	Steps        []Step         `json:"steps"`
}

// Step returns the step with the given name.
func (r *Result) Step(name string) (Step, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Warnings returns the steps that did not succeed cleanly and were not
// skipped.
func (r *Result) Warnings() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Status == StatusWarning || s.Status == StatusFailed {
			out = append(out, s)
		}
	}
	return out
}

func (r *Result) record(name string, status Status, err error) {
	s := Step{Name: name, Status: status, Err: err}
	if err != nil {
		s.Detail = err.Error()
	}
	r.Steps = append(r.Steps, s)
}

// Engine runs resets.
type Engine struct {
	Logger     *slog.Logger
	FS         storage.FileSystem
	Terminator Terminator
	// Store is the platform identity store, nil when the platform has none.
	Store identitystore.Store
	Clock clock.Clock
	// NewIdentity generates the identity set. Defaults to id.NewIdentitySet.
	NewIdentity func() id.IdentitySet
	// NewStoreValue generates the identity store value. Defaults to id.UUID.
	NewStoreValue func() string
}

// Run performs one reset. A non-nil Result is returned even on failure so
// callers can report the completed steps.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.OrNop(e.Logger)
	clk := e.Clock
	if clk == nil {
		clk = clock.Real()
	}
	res := &Result{}

	if err := e.Terminator.TerminateNames(ctx, opts.ProcessNames); err != nil {
		res.record(StepTerminate, StatusFailed, err)
		return res, err
	}
	res.record(StepTerminate, StatusOK, nil)

	if err := e.FS.MkdirAll(ctx, opts.BackupDir); err != nil {
		logger.Warn("Failed to create backup directory", "dir", opts.BackupDir, "error", err)
	}

	exists, err := e.FS.Exists(ctx, opts.StorageFile)
	switch {
	case err != nil:
		logger.Warn("Failed to check configuration file", "path", opts.StorageFile, "error", err)
		res.record(StepBackup, StatusWarning, err)
	case !exists:
		logger.Info("Configuration file does not exist, skipping backup", "path", opts.StorageFile)
		res.record(StepBackup, StatusSkipped, nil)
	default:
		logger.Info("Backing up configuration file...")
		backup, err := storage.Backup(ctx, e.FS, opts.StorageFile, opts.BackupDir, clk.Now())
		if err != nil {
			logger.Warn("Configuration backup failed, proceeding without backup", "error", err)
			res.record(StepBackup, StatusWarning, err)
		} else {
			logger.Info("Configuration backed up", "backup", backup)
			res.ConfigBackup = backup
			res.record(StepBackup, StatusOK, nil)
		}
	}

	logger.Info("Generating new machine identifiers...")
	newIdentity := e.NewIdentity
	if newIdentity == nil {
		newIdentity = id.NewIdentitySet
	}
	res.Identity = newIdentity()

	switch {
	case e.Store == nil:
		logger.Info("No platform identity store on this system, skipping")
		res.record(StepIdentityStore, StatusSkipped, nil)
	case opts.SkipIdentityStore:
		logger.Info("Identity store rotation disabled, skipping")
		res.record(StepIdentityStore, StatusSkipped, nil)
	default:
		rot := identitystore.NewRotator(e.Store, e.FS, logger)
		rot.Clock = clk
		if e.NewStoreValue != nil {
			rot.NewValue = e.NewStoreValue
		}
		rotation, err := rot.Rotate(ctx, opts.BackupDir)
		if err != nil {
			logger.Warn("Identity store update failed, continuing with configuration update", "error", err)
			res.record(StepIdentityStore, StatusFailed, err)
		} else {
			res.StoreValue = rotation.Value
			res.StoreBackup = rotation.Backup
			res.record(StepIdentityStore, StatusOK, nil)
		}
	}

	logger.Info("Updating configuration...")
	if err := storage.NewMutator(e.FS, logger).Update(ctx, opts.StorageFile, res.Identity); err != nil {
		res.record(StepConfig, StatusFailed, err)
		return res, fmt.Errorf("%w: %w", ErrPrimaryUpdate, err)
	}
	res.record(StepConfig, StatusOK, nil)

	logger.Info("Machine identifiers updated")
	for _, field := range id.FieldNames() {
		logger.Debug(field, "value", res.Identity.Fields()[field])
	}
	return res, nil
}
