// Package appdir resolves where the target application keeps its state.
//
// Paths are derived from an Environment so tests and alternate layouts can
// substitute their own base directories.
package appdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// StorageFileName is the JSON file holding the application's telemetry ids.
const StorageFileName = "storage.json"

// BackupDirName is the sibling directory receiving backup artifacts.
const BackupDirName = "backups"

// ErrNoBaseDir is returned when a base directory cannot be determined.
var ErrNoBaseDir = errors.New("cannot determine base directory")

// Environment exposes the per-user base directories.
type Environment interface {
	// ConfigDir is the roaming configuration directory
	// (%APPDATA%, ~/Library/Application Support, $XDG_CONFIG_HOME).
	ConfigDir() (string, error)

	// LocalDataDir is the machine-local data directory
	// (%LOCALAPPDATA%, ~/Library/Application Support, $XDG_DATA_HOME).
	LocalDataDir() (string, error)
}

// OS returns the Environment of the current user.
func OS() Environment { return osEnvironment{} }

type osEnvironment struct{}

func (osEnvironment) ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoBaseDir, err)
	}
	return dir, nil
}

func (osEnvironment) LocalDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("%w: %%LOCALAPPDATA%% is not set", ErrNoBaseDir)
	case "darwin", "ios":
		return os.UserConfigDir()
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoBaseDir, err)
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// Static is an Environment with fixed directories.
type Static struct {
	Config    string
	LocalData string
}

// ConfigDir returns s.Config or ErrNoBaseDir when empty.
func (s Static) ConfigDir() (string, error) {
	if s.Config == "" {
		return "", ErrNoBaseDir
	}
	return s.Config, nil
}

// LocalDataDir returns s.LocalData or ErrNoBaseDir when empty.
func (s Static) LocalDataDir() (string, error) {
	if s.LocalData == "" {
		return "", ErrNoBaseDir
	}
	return s.LocalData, nil
}

// Paths are the locations a reset touches.
type Paths struct {
	// UserDir is <ConfigDir>/Cursor/User.
	UserDir string
	// GlobalStorageDir contains the storage file and the backup directory.
	GlobalStorageDir string
	StorageFile      string
	BackupDir        string
	// PackageCandidates are the package.json files probed for the version.
	PackageCandidates []string
	// UpdaterDir is the application's self-updater directory.
	UpdaterDir string
}

// Resolve computes Paths for the environment. A missing local data
// directory only disables version detection.
func Resolve(env Environment) (Paths, error) {
	configDir, err := env.ConfigDir()
	if err != nil {
		return Paths{}, err
	}
	user := filepath.Join(configDir, "Cursor", "User")
	global := filepath.Join(user, "globalStorage")
	p := Paths{
		UserDir:          user,
		GlobalStorageDir: global,
		StorageFile:      filepath.Join(global, StorageFileName),
		BackupDir:        filepath.Join(global, BackupDirName),
	}
	if local, err := env.LocalDataDir(); err == nil {
		p.PackageCandidates = []string{
			filepath.Join(local, "Programs", "cursor", "resources", "app", "package.json"),
			filepath.Join(local, "cursor", "resources", "app", "package.json"),
		}
		p.UpdaterDir = filepath.Join(local, "cursor-updater")
	}
	return p, nil
}
