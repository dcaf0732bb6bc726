package identitystore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idreset/idreset/internal/clock"
	"github.com/idreset/idreset/pkg/logging"
	"github.com/idreset/idreset/pkg/storage"
)

// memStore is an in-memory Store. Export writes the current value to the
// backup file so Exists checks see it.
type memStore struct {
	value     string
	exists    bool
	openErr   error
	writeErr  error
	exportErr error
	importErr error
	// readBack overrides the value returned after a write.
	readBack *string

	written  []string
	imported []string
	exported []string
	closed   bool
}

func (s *memStore) Info() Info {
	return Info{Location: `HKLM\Test`, ValueName: "MachineGuid", BackupExt: "reg"}
}

func (s *memStore) Open(context.Context) (Key, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return (*memKey)(s), nil
}

type memKey memStore

func (k *memKey) Read() (string, error) {
	if len(k.written) > 0 && k.readBack != nil {
		return *k.readBack, nil
	}
	if !k.exists {
		return "", ErrValueNotFound
	}
	return k.value, nil
}

func (k *memKey) Write(v string) error {
	if k.writeErr != nil {
		return k.writeErr
	}
	k.written = append(k.written, v)
	k.value = v
	k.exists = true
	return nil
}

func (k *memKey) Export(_ context.Context, path string) error {
	if k.exportErr != nil {
		return k.exportErr
	}
	k.exported = append(k.exported, path)
	return os.WriteFile(path, []byte(k.value), 0o644)
}

func (k *memKey) Import(_ context.Context, path string) error {
	if k.importErr != nil {
		return k.importErr
	}
	k.imported = append(k.imported, path)
	return nil
}

func (k *memKey) Close() error {
	k.closed = true
	return nil
}

var testTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func newTestRotator(store Store) (*Rotator, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewRotator(store, storage.NewFileSystem(), logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf}))
	r.Clock = clock.NewFake(testTime)
	r.NewValue = func() string { return "6f9619ff-8b86-4011-b42d-00c04fc964ff" }
	return r, &buf
}

func TestBackupName(t *testing.T) {
	info := Info{ValueName: "MachineGuid", BackupExt: "reg"}
	assert.Equal(t, "MachineGuid_20240309_140507.reg", BackupName(info, testTime))
}

func TestRotate_Success(t *testing.T) {
	store := &memStore{value: "old-guid", exists: true}
	r, _ := newTestRotator(store)
	dir := filepath.Join(t.TempDir(), "backups")

	rot, err := r.Rotate(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "old-guid", rot.Previous)
	assert.Equal(t, "6f9619ff-8b86-4011-b42d-00c04fc964ff", rot.Value)
	assert.Equal(t, filepath.Join(dir, "MachineGuid_20240309_140507.reg"), rot.Backup)
	assert.FileExists(t, rot.Backup)
	assert.True(t, store.closed)
	assert.Empty(t, store.imported)
}

func TestRotate_BackupsDoNotOverwrite(t *testing.T) {
	store := &memStore{value: "old-guid", exists: true}
	r, _ := newTestRotator(store)
	dir := t.TempDir()

	first, err := r.Rotate(context.Background(), dir)
	require.NoError(t, err)
	second, err := r.Rotate(context.Background(), dir)
	require.NoError(t, err)

	assert.NotEqual(t, first.Backup, second.Backup)
	assert.Equal(t, filepath.Join(dir, "MachineGuid_20240309_140507_1.reg"), second.Backup)
}

func TestRotate_MissingValueIsCreated(t *testing.T) {
	store := &memStore{}
	r, buf := newTestRotator(store)

	rot, err := r.Rotate(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rot.Previous)
	assert.Equal(t, []string{rot.Value}, store.written)
	assert.Contains(t, buf.String(), "does not exist yet")
}

func TestRotate_OpenFailureTouchesNothing(t *testing.T) {
	store := &memStore{value: "old", exists: true, openErr: errors.New("access denied")}
	r, _ := newTestRotator(store)
	dir := filepath.Join(t.TempDir(), "backups")

	_, err := r.Rotate(context.Background(), dir)
	require.EqualError(t, err, "access denied")
	assert.Empty(t, store.written)
	assert.NoDirExists(t, dir)
}

func TestRotate_ExportFailureIsWarning(t *testing.T) {
	store := &memStore{value: "old", exists: true, exportErr: errors.New("reg.exe missing")}
	r, buf := newTestRotator(store)

	rot, err := r.Rotate(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rot.Backup)
	assert.Contains(t, buf.String(), "[WARNING] Identity store backup failed")
}

func TestRotate_WriteFailureRestoresBackup(t *testing.T) {
	store := &memStore{value: "old", exists: true, writeErr: errors.New("denied")}
	r, _ := newTestRotator(store)

	_, err := r.Rotate(context.Background(), t.TempDir())
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	assert.True(t, werr.Restored)
	assert.Equal(t, []string{werr.Backup}, store.imported)
}

func TestRotate_WriteFailureWithoutOriginalSkipsRestore(t *testing.T) {
	store := &memStore{writeErr: errors.New("denied")}
	r, _ := newTestRotator(store)

	_, err := r.Rotate(context.Background(), t.TempDir())
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	assert.False(t, werr.Restored)
	assert.Empty(t, store.imported)
}

func TestRotate_WriteFailureRestoreFails(t *testing.T) {
	store := &memStore{value: "old", exists: true, writeErr: errors.New("denied"), importErr: errors.New("import failed")}
	r, buf := newTestRotator(store)

	_, err := r.Rotate(context.Background(), t.TempDir())
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	assert.False(t, werr.Restored)
	assert.Contains(t, buf.String(), "manual restore needed")
}

func TestRotate_VerifyMismatch(t *testing.T) {
	other := "something-else"
	store := &memStore{value: "old", exists: true, readBack: &other}
	r, buf := newTestRotator(store)

	_, err := r.Rotate(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.Empty(t, store.imported, "a verify mismatch must not restore automatically")
	assert.Contains(t, buf.String(), "backup=")
}
