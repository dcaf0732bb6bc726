package proc

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idreset/idreset/internal/clock"
	"github.com/idreset/idreset/pkg/logging"
)

// fakeTable reports its processes for the first visibleFor Find calls and
// nothing afterwards. visibleFor < 0 keeps them forever.
type fakeTable struct {
	procs      []Process
	visibleFor int
	findErr    error
	killErr    error

	finds  int
	killed []int32
}

func (f *fakeTable) Find(_ context.Context, name string) ([]Process, error) {
	f.finds++
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.visibleFor >= 0 && f.finds > f.visibleFor {
		return nil, nil
	}
	var out []Process
	for _, p := range f.procs {
		if MatchName(p.Name, name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeTable) Kill(_ context.Context, pid int32) error {
	f.killed = append(f.killed, pid)
	return f.killErr
}

func newTestTerminator(table Table) (*Terminator, *clock.Fake, *bytes.Buffer) {
	var buf bytes.Buffer
	clk := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return &Terminator{
		Table:      table,
		Clock:      clk,
		Logger:     logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf}),
		MaxRetries: DefaultMaxRetries,
		Wait:       DefaultWait,
	}, clk, &buf
}

func TestTerminateAll_NoMatches(t *testing.T) {
	table := &fakeTable{procs: []Process{{PID: 1, Name: "explorer.exe"}}, visibleFor: -1}
	term, clk, _ := newTestTerminator(table)

	require.NoError(t, term.TerminateAll(context.Background(), "Cursor"))

	assert.Empty(t, clk.Waits(), "must not sleep when nothing matches")
	assert.Empty(t, table.killed)
	assert.Equal(t, 1, table.finds)
}

func TestTerminateAll_GoneAfterSecondPoll(t *testing.T) {
	// Visible for the initial scan and the first two polls.
	table := &fakeTable{procs: []Process{{PID: 42, Name: "Cursor.exe", Path: `C:\Cursor\Cursor.exe`}}, visibleFor: 3}
	term, clk, out := newTestTerminator(table)

	require.NoError(t, term.TerminateAll(context.Background(), "cursor"))

	assert.Equal(t, []time.Duration{time.Second, time.Second}, clk.Waits())
	assert.Equal(t, []int32{42}, table.killed)
	assert.Contains(t, out.String(), "[WARNING] running process pid=42 name=Cursor.exe")
	assert.Contains(t, out.String(), "[INFO] cursor successfully closed")
}

func TestTerminateAll_GoneImmediately(t *testing.T) {
	table := &fakeTable{procs: []Process{{PID: 7, Name: "Cursor"}}, visibleFor: 1}
	term, clk, _ := newTestTerminator(table)

	require.NoError(t, term.TerminateAll(context.Background(), "Cursor"))
	assert.Empty(t, clk.Waits())
}

func TestTerminateAll_StillRunning(t *testing.T) {
	table := &fakeTable{procs: []Process{{PID: 9, Name: "Cursor"}, {PID: 10, Name: "cursor"}}, visibleFor: -1}
	term, clk, out := newTestTerminator(table)

	err := term.TerminateAll(context.Background(), "Cursor")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStillRunning)

	var sre *StillRunningError
	require.ErrorAs(t, err, &sre)
	assert.Len(t, sre.Survivors, 2)
	assert.Equal(t, DefaultMaxRetries, sre.Attempts)

	// Five polls after the initial scan, a wait between each.
	assert.Equal(t, 1+DefaultMaxRetries, table.finds)
	assert.Len(t, clk.Waits(), DefaultMaxRetries-1)
	assert.Contains(t, out.String(), "[ERROR] Unable to close Cursor after 5 attempts")
}

func TestTerminateAll_KillFailureContinues(t *testing.T) {
	table := &fakeTable{
		procs:      []Process{{PID: 1, Name: "Cursor"}, {PID: 2, Name: "Cursor"}},
		visibleFor: 2,
		killErr:    errors.New("access denied"),
	}
	term, _, out := newTestTerminator(table)

	require.NoError(t, term.TerminateAll(context.Background(), "Cursor"))
	assert.Equal(t, []int32{1, 2}, table.killed)
	assert.Contains(t, out.String(), `error="access denied"`)
}

func TestTerminateAll_FindError(t *testing.T) {
	boom := errors.New("no /proc")
	term, _, _ := newTestTerminator(&fakeTable{findErr: boom})

	assert.ErrorIs(t, term.TerminateAll(context.Background(), "Cursor"), boom)
}

func TestTerminateAll_ContextCanceled(t *testing.T) {
	table := &fakeTable{procs: []Process{{PID: 1, Name: "Cursor"}}, visibleFor: -1}
	term, _, _ := newTestTerminator(table)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := term.TerminateAll(ctx, "Cursor")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminateNames_DeduplicatesCase(t *testing.T) {
	table := &fakeTable{visibleFor: -1}
	term, _, _ := newTestTerminator(table)

	require.NoError(t, term.TerminateNames(context.Background(), []string{"Cursor", "cursor", "", "CURSOR"}))
	assert.Equal(t, 1, table.finds)
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		process, name string
		want          bool
	}{
		{"Cursor", "cursor", true},
		{"Cursor.exe", "Cursor", true},
		{"CURSOR.EXE", "cursor", true},
		{"Cursor Helper", "Cursor", false},
		{"cursor.sh", "cursor", false},
		{"Cursor.exe", "Cursor.exe", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchName(tt.process, tt.name), "%s vs %s", tt.process, tt.name)
	}
}

func TestStillRunningError_Message(t *testing.T) {
	err := &StillRunningError{Name: "Cursor", Attempts: 5, Survivors: []Process{{PID: 3}, {PID: 4}}}
	assert.Equal(t, "unable to close Cursor after 5 attempts (still running: 3, 4)", err.Error())
}
