package proc

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Process is a snapshot of one process table entry.
type Process struct {
	PID  int32
	Name string
	Path string
}

// Table enumerates and terminates processes.
type Table interface {
	// Find returns the live processes whose name matches name.
	Find(ctx context.Context, name string) ([]Process, error)

	// Kill forcefully terminates the process with the given pid.
	Kill(ctx context.Context, pid int32) error
}

// MatchName reports whether a process name refers to the executable name,
// ignoring case and a trailing ".exe".
func MatchName(processName, name string) bool {
	if strings.EqualFold(processName, name) {
		return true
	}
	ext := filepath.Ext(processName)
	return strings.EqualFold(ext, ".exe") && strings.EqualFold(strings.TrimSuffix(processName, ext), name)
}

// SystemTable is the Table of the running operating system.
type SystemTable struct{}

// Find scans the process table. Processes whose name cannot be read
// (exited mid-scan, access denied) are skipped.
func (SystemTable) Find(ctx context.Context, name string) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var matches []Process
	for _, p := range procs {
		pname, err := p.NameWithContext(ctx)
		if err != nil || !MatchName(pname, name) {
			continue
		}
		exe, _ := p.ExeWithContext(ctx)
		matches = append(matches, Process{PID: p.Pid, Name: pname, Path: exe})
	}
	return matches, nil
}

// Kill sends SIGKILL (TerminateProcess on Windows) to pid.
func (SystemTable) Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil
		}
		return fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("failed to kill process %d: %w", pid, err)
	}
	return nil
}
