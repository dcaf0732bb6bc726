package identitystore

import (
	"context"
	"errors"
)

// ErrValueNotFound is returned by Key.Read when the value does not exist.
var ErrValueNotFound = errors.New("identity value not found")

// Info describes where a store keeps its value.
type Info struct {
	// Location is the full key path, e.g.
	// HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Cryptography.
	Location string
	// ValueName is the value under Location, e.g. MachineGuid.
	ValueName string
	// BackupExt is the extension of exported backup files, without dot.
	BackupExt string
}

// Store is a platform identity store.
type Store interface {
	Info() Info

	// Open opens the value location with read and write access.
	Open(ctx context.Context) (Key, error)
}

// Key is an open identity store location.
type Key interface {
	// Read returns the current value, or ErrValueNotFound.
	Read() (string, error)

	// Write replaces the value.
	Write(value string) error

	// Export writes the key to a backup file at path using the
	// platform's export format.
	Export(ctx context.Context, path string) error

	// Import restores the key from a file written by Export.
	Import(ctx context.Context, path string) error

	Close() error
}
