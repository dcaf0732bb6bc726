package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idreset/idreset/internal/id"
	"github.com/idreset/idreset/pkg/logging"
)

// failingFS fails the first failWrites WriteFile calls.
type failingFS struct {
	FileSystem
	failWrites int
	writes     int
}

func (f *failingFS) WriteFile(ctx context.Context, path string, data []byte) error {
	f.writes++
	if f.writes <= f.failWrites {
		return errors.New("disk full")
	}
	return f.FileSystem.WriteFile(ctx, path, data)
}

var testIDs = id.IdentitySet{
	MachineID:    "61757468307c757365725f0123456789abcdefghijklmnopqrstuv",
	MacMachineID: "01234567-89ab-4cde-8f01-23456789abcd",
	DevDeviceID:  "6f9619ff-8b86-4011-b42d-00c04fc964ff",
	SQMID:        "{6F9619FF-8B86-4011-B42D-00C04FC964FF}",
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := oj.Parse(data)
	require.NoError(t, err)
	root, ok := doc.(map[string]any)
	require.True(t, ok, "root should be an object")
	return root
}

func newTestMutator(fs FileSystem) (*Mutator, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewMutator(fs, logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})), &buf
}

func TestUpdate_CreatesTelemetry(t *testing.T) {
	path := writeConfig(t, `{"theme": "dark", "window": {"zoom": 1}, "recent": ["a", "b"]}`)
	m, _ := newTestMutator(NewFileSystem())

	require.NoError(t, m.Update(context.Background(), path, testIDs))

	root := readJSON(t, path)
	assert.Equal(t, "dark", root["theme"])
	assert.Equal(t, map[string]any{"zoom": int64(1)}, root["window"])
	assert.Equal(t, []any{"a", "b"}, root["recent"])

	telemetry, ok := root["telemetry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"machineId":    testIDs.MachineID,
		"macMachineId": testIDs.MacMachineID,
		"devDeviceId":  testIDs.DevDeviceID,
		"sqmId":        testIDs.SQMID,
	}, telemetry)
}

func TestUpdate_OverwritesAndKeepsOtherTelemetryFields(t *testing.T) {
	path := writeConfig(t, `{"telemetry": {"machineId": "old", "firstSessionDate": "Mon"}}`)
	m, _ := newTestMutator(NewFileSystem())

	require.NoError(t, m.Update(context.Background(), path, testIDs))

	telemetry := readJSON(t, path)["telemetry"].(map[string]any)
	assert.Equal(t, testIDs.MachineID, telemetry["machineId"])
	assert.Equal(t, "Mon", telemetry["firstSessionDate"])
	assert.Len(t, telemetry, 5)
}

func TestUpdate_ReplacesNonObjectTelemetry(t *testing.T) {
	path := writeConfig(t, `{"telemetry": "disabled"}`)
	m, _ := newTestMutator(NewFileSystem())

	require.NoError(t, m.Update(context.Background(), path, testIDs))

	telemetry, ok := readJSON(t, path)["telemetry"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, telemetry, 4)
}

func TestUpdate_ToleratesComments(t *testing.T) {
	path := writeConfig(t, "{\n  // user state\n  \"theme\": \"dark\",\n}\n")
	m, _ := newTestMutator(NewFileSystem())

	require.NoError(t, m.Update(context.Background(), path, testIDs))
	assert.Equal(t, "dark", readJSON(t, path)["theme"])
}

func TestUpdate_RootNotObject(t *testing.T) {
	const content = `["not", "an", "object"]`
	path := writeConfig(t, content)
	m, _ := newTestMutator(NewFileSystem())

	err := m.Update(context.Background(), path, testIDs)
	assert.ErrorIs(t, err, ErrRootNotObject)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, content, string(data), "file must be byte-for-byte unchanged")
}

func TestUpdate_ParseError(t *testing.T) {
	const content = `{"theme": `
	path := writeConfig(t, content)
	m, out := newTestMutator(NewFileSystem())

	err := m.Update(context.Background(), path, testIDs)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, path, pe.Path)

	data, _ := os.ReadFile(path)
	assert.Equal(t, content, string(data))
	assert.Contains(t, out.String(), "[ERROR] Failed to update configuration JSON")
}

func TestUpdate_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	m, out := newTestMutator(NewFileSystem())

	err := m.Update(context.Background(), path, testIDs)
	assert.ErrorIs(t, err, ErrConfigNotFound)
	assert.Contains(t, out.String(), "Please install and run Cursor once")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "Update must not create the file")
}

func TestUpdate_WriteFailureRestoresOriginal(t *testing.T) {
	const content = "{\n    \"theme\":   \"dark\"\n}"
	path := writeConfig(t, content)
	fs := &failingFS{FileSystem: NewFileSystem(), failWrites: 1}
	m, out := newTestMutator(fs)

	err := m.Update(context.Background(), path, testIDs)
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.NotErrorIs(t, err, ErrCritical)
	assert.Equal(t, 2, fs.writes)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, content, string(data), "original content must be restored byte-for-byte")
	assert.Contains(t, out.String(), "[WARNING] Original configuration content restored")
}

func TestUpdate_RollbackFailureIsCritical(t *testing.T) {
	path := writeConfig(t, `{"theme": "dark"}`)
	fs := &failingFS{FileSystem: NewFileSystem(), failWrites: 2}
	m, out := newTestMutator(fs)

	err := m.Update(context.Background(), path, testIDs)
	assert.ErrorIs(t, err, ErrCritical)

	var ce *CriticalError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, path, ce.Path)
	assert.Contains(t, out.String(), "[CRITICAL] Failed to restore original content")
}

func TestRewrite_SortedIndentedOutput(t *testing.T) {
	out, err := rewrite("storage.json", []byte(`{"b": 1, "a": "x<y&z"}`), testIDs)
	require.NoError(t, err)

	s := string(out)
	assert.Less(t, bytes.Index(out, []byte(`"a"`)), bytes.Index(out, []byte(`"b"`)))
	assert.Contains(t, s, "\n  \"a\": \"x<y&z\"")
}
