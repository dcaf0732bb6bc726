package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var backupTime = time.Date(2026, 10, 18, 9, 5, 7, 0, time.Local)

func TestBackupName(t *testing.T) {
	assert.Equal(t, "storage.json.backup_20261018_090507",
		BackupName(filepath.Join("x", "storage.json"), backupTime))
}

func TestBackup_CopiesBytes(t *testing.T) {
	ctx := context.Background()
	src := writeConfig(t, `{"theme":"dark"}`)
	dir := filepath.Join(t.TempDir(), "backups")
	fs := NewFileSystem()

	dest, err := Backup(ctx, fs, src, dir, backupTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "storage.json.backup_20261018_090507"), dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"dark"}`, string(data))
}

func TestBackup_SameSecondDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	src := writeConfig(t, `{"run":1}`)
	dir := t.TempDir()
	fs := NewFileSystem()

	first, err := Backup(ctx, fs, src, dir, backupTime)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, []byte(`{"run":2}`), 0o644))
	second, err := Backup(ctx, fs, src, dir, backupTime)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, first+"_1", second)

	names, err := ListBackups(ctx, fs, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"storage.json.backup_20261018_090507", "storage.json.backup_20261018_090507_1"}, names)
}

func TestUniquePath_KeepsExtension(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "MachineGuid_20261018_090507.reg")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := UniquePath(ctx, NewFileSystem(), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "MachineGuid_20261018_090507_1.reg"), got)
}

func TestListBackups_MissingDir(t *testing.T) {
	names, err := ListBackups(context.Background(), NewFileSystem(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	fs := NewFileSystem()
	target := writeConfig(t, `{"telemetry":{"machineId":"new"}}`)
	backup := filepath.Join(t.TempDir(), "storage.json.backup_20261018_090507")
	require.NoError(t, os.WriteFile(backup, []byte(`{"telemetry":{"machineId":"old"}}`), 0o644))

	require.NoError(t, Restore(ctx, fs, backup, target))

	ids, err := ReadIdentity(ctx, fs, target)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"machineId": "old"}, ids)
}

func TestRestore_RejectsNonObject(t *testing.T) {
	ctx := context.Background()
	target := writeConfig(t, `{"keep":true}`)
	backup := filepath.Join(t.TempDir(), "bad")
	require.NoError(t, os.WriteFile(backup, []byte(`[1,2]`), 0o644))

	assert.ErrorIs(t, Restore(ctx, NewFileSystem(), backup, target), ErrRootNotObject)
	data, _ := os.ReadFile(target)
	assert.Equal(t, `{"keep":true}`, string(data))
}

func TestReadIdentity(t *testing.T) {
	ctx := context.Background()
	path := writeConfig(t, `{"telemetry":{"machineId":"m","sqmId":"{S}","devDeviceId":7}}`)

	ids, err := ReadIdentity(ctx, NewFileSystem(), path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"machineId": "m", "sqmId": "{S}"}, ids)

	_, err = ReadIdentity(ctx, NewFileSystem(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}
