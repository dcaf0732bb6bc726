package proc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/idreset/idreset/internal/clock"
	"github.com/idreset/idreset/pkg/logging"
)

// Default retry budget: poll up to DefaultMaxRetries times, waiting
// DefaultWait between polls.
const (
	DefaultMaxRetries = 5
	DefaultWait       = time.Second
)

// ErrStillRunning matches a *StillRunningError.
var ErrStillRunning = errors.New("process still running")

// StillRunningError is returned when matches survive the retry budget.
type StillRunningError struct {
	Name      string
	Attempts  int
	Survivors []Process
}

func (e *StillRunningError) Error() string {
	pids := make([]string, len(e.Survivors))
	for i, p := range e.Survivors {
		pids[i] = fmt.Sprint(p.PID)
	}
	return fmt.Sprintf("unable to close %s after %d attempts (still running: %s)",
		e.Name, e.Attempts, strings.Join(pids, ", "))
}

// Is reports whether target is ErrStillRunning.
func (e *StillRunningError) Is(target error) bool {
	return target == ErrStillRunning
}

// Terminator stops all instances of a named process.
type Terminator struct {
	Table      Table
	Clock      clock.Clock
	Logger     *slog.Logger
	MaxRetries int
	Wait       time.Duration
}

// NewTerminator returns a Terminator over the system process table with the
// default retry budget.
func NewTerminator(logger *slog.Logger) *Terminator {
	return &Terminator{
		Table:      SystemTable{},
		Clock:      clock.Real(),
		Logger:     logging.OrNop(logger),
		MaxRetries: DefaultMaxRetries,
		Wait:       DefaultWait,
	}
}

// TerminateNames runs TerminateAll for each name, skipping names that only
// differ in case from an earlier one. It stops at the first error.
func (t *Terminator) TerminateNames(ctx context.Context, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		if err := t.TerminateAll(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// TerminateAll kills every process matching name and waits for them to go
// away. It returns nil at once when nothing matches.
func (t *Terminator) TerminateAll(ctx context.Context, name string) error {
	logger := logging.OrNop(t.Logger)
	clk := t.Clock
	if clk == nil {
		clk = clock.Real()
	}
	maxRetries := t.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	matches, err := t.Table.Find(ctx, name)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}

	logger.Warn(fmt.Sprintf("Found %s running", name), "count", len(matches))
	for _, p := range matches {
		logger.Warn("running process", "pid", p.PID, "name", p.Name, "path", p.Path)
	}

	logger.Warn(fmt.Sprintf("Attempting to close %s...", name))
	for _, p := range matches {
		if err := t.Table.Kill(ctx, p.PID); err != nil {
			logger.Error("failed to send termination signal, waiting anyway", "pid", p.PID, "error", err)
		}
	}

	for attempt := 1; ; attempt++ {
		remaining, err := t.Table.Find(ctx, name)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			break
		}
		if attempt >= maxRetries {
			logger.Error(fmt.Sprintf("Unable to close %s after %d attempts", name, maxRetries))
			for _, p := range remaining {
				logger.Error("still running", "pid", p.PID, "name", p.Name, "path", p.Path)
			}
			logger.Error("Please close the process manually and try again")
			return &StillRunningError{Name: name, Attempts: maxRetries, Survivors: remaining}
		}

		logger.Warn(fmt.Sprintf("Waiting for process to close, attempt %d/%d...", attempt, maxRetries))
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(t.Wait):
		}
	}

	logger.Info(fmt.Sprintf("%s successfully closed", name))
	return nil
}
