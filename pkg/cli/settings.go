package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idreset/idreset/internal/appdir"
	"github.com/idreset/idreset/pkg/cliconfig"
	"github.com/idreset/idreset/pkg/logging"
)

var (
	processFlag       []string
	maxRetriesFlag    int
	waitFlag          int
	storageFileFlag   string
	backupDirFlag     string
	skipIdentityStore bool
	noPauseFlag       bool
	assumeYesFlag     bool
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = []struct {
	flag  string
	key   string
	value func() string
}{
	{"process", "processNames", func() string { return strings.Join(processFlag, ",") }},
	{"max-retries", "maxRetries", func() string { return strconv.Itoa(maxRetriesFlag) }},
	{"wait", "waitSeconds", func() string { return strconv.Itoa(waitFlag) }},
	{"storage-file", "storageFile", func() string { return storageFileFlag }},
	{"backup-dir", "backupDir", func() string { return backupDirFlag }},
	{"skip-identity-store", "skipIdentityStore", func() string { return strconv.FormatBool(skipIdentityStore) }},
	{"no-pause", "noPause", func() string { return strconv.FormatBool(noPauseFlag) }},
	{"yes", "assumeYes", func() string { return strconv.FormatBool(assumeYesFlag) }},
	{"log-level", "logLevel", func() string { return logLevel }},
	{"log-format", "logFormat", func() string { return logFormat }},
	{"log-file", "logFile", func() string { return logFile }},
}

func addResetFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&processFlag, "process", "p", nil, "Process name to close before resetting (repeatable)")
	cmd.Flags().IntVar(&maxRetriesFlag, "max-retries", cliconfig.DefaultMaxRetries, "Polls before giving up on a running process")
	cmd.Flags().IntVar(&waitFlag, "wait", cliconfig.DefaultWaitSeconds, "Seconds between polls")
	cmd.Flags().BoolVar(&skipIdentityStore, "skip-identity-store", false, "Do not rotate the platform identity store")
	addPathFlags(cmd)
	addInteractionFlags(cmd)
}

func addPathFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&storageFileFlag, "storage-file", "", "Path to storage.json (default: derived from the user config directory)")
	cmd.Flags().StringVar(&backupDirFlag, "backup-dir", "", "Directory for backups (default: backups next to storage.json)")
}

func addInteractionFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noPauseFlag, "no-pause", false, "Do not wait for Enter before exiting")
	cmd.Flags().BoolVarP(&assumeYesFlag, "yes", "y", false, "Do not ask for confirmation")
}

// loadSettings resolves the configuration for cmd: files, environment,
// then the flags the user changed.
func loadSettings(cmd *cobra.Command) (*cliconfig.CLIConfig, error) {
	cfg, err := cliconfig.LoadAll(configPath)
	if err != nil {
		return nil, err
	}
	for _, fk := range flagKeys {
		f := cmd.Flags().Lookup(fk.flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := cfg.Set(fk.key, fk.value(), cliconfig.SourceFlag); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the console logger, plus a JSON audit handler when a
// log file is configured. The returned close func is never nil.
func newLogger(cfg *cliconfig.CLIConfig, w io.Writer) (*slog.Logger, func() error, error) {
	console := logging.NewHandler(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: w,
	})
	if cfg.LogFile == "" {
		return slog.New(console), func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	audit := logging.NewHandler(logging.Config{
		Level:  logging.LevelDebug,
		Format: logging.FormatJSON,
		Output: f,
	})
	return slog.New(logging.NewMultiHandler(console, audit)), f.Close, nil
}

// logWriter is where status lines go: stderr when stdout carries JSON.
func logWriter(cmd *cobra.Command) io.Writer {
	if jsonOutput {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// resolvePaths applies configured overrides on top of the platform paths.
// An explicit storage file moves the default backup directory next to it.
func resolvePaths(cfg *cliconfig.CLIConfig) (appdir.Paths, error) {
	paths, err := appdir.Resolve(appEnv)
	if err != nil && cfg.StorageFile == "" {
		return appdir.Paths{}, err
	}
	if cfg.StorageFile != "" {
		paths.StorageFile = cfg.StorageFile
		paths.GlobalStorageDir = filepath.Dir(cfg.StorageFile)
		paths.BackupDir = filepath.Join(paths.GlobalStorageDir, appdir.BackupDirName)
	}
	if cfg.BackupDir != "" {
		paths.BackupDir = cfg.BackupDir
	}
	return paths, nil
}
