package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/idreset/idreset/internal/appdir"
	"github.com/idreset/idreset/internal/clock"
	"github.com/idreset/idreset/internal/elevation"
	"github.com/idreset/idreset/pkg/cliconfig"
	"github.com/idreset/idreset/pkg/proc"
	"github.com/idreset/idreset/pkg/storage"
)

// ErrNoIdentityStore is returned by restore --registry on platforms without
// an identity store.
var ErrNoIdentityStore = errors.New("no identity store on this platform")

var restoreRegistryFile string

var restoreCmd = &cobra.Command{
	Use:   "restore [backup]",
	Short: "Restore storage.json or the identity store from a backup",
	Long: `Restore storage.json from a backup artifact written by a previous reset.

The backup can be a path, a file name inside the backup directory, or a glob
pattern; a pattern selects the newest matching backup. Without arguments the
available backups are listed. With --registry an identity store
export (MachineGuid_*.reg) is imported again.`,
	Example: `  # List backups
  idreset restore

  # Restore the storage file
  idreset restore storage.json.backup_20240309_140507

  # Restore the newest backup taken in March 2024
  idreset restore 'storage.json.backup_202403*'

  # Restore MachineGuid from its export
  idreset restore --registry MachineGuid_20240309_140507.reg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringVar(&restoreRegistryFile, "registry", "", "Identity store export to import")
	addPathFlags(restoreCmd)
	addInteractionFlags(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	paths, err := resolvePaths(cfg)
	if err != nil {
		return err
	}
	fs := storage.NewFileSystem()

	if len(args) == 0 && restoreRegistryFile == "" {
		names, err := storage.ListBackups(cmd.Context(), fs, paths.BackupDir)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		return printResult(w, map[string]any{"backupDir": paths.BackupDir, "backups": names}, func() {
			if len(names) == 0 {
				fmt.Fprintf(w, "No backups in %s\n", paths.BackupDir)
				return
			}
			fmt.Fprintf(w, "Backups in %s:\n", paths.BackupDir)
			for _, name := range names {
				fmt.Fprintf(w, "  %s\n", name)
			}
		})
	}

	logger, closeLog, err := newLogger(cfg, logWriter(cmd))
	if err != nil {
		return err
	}
	defer closeLog()

	err = doRestore(cmd, cfg, logger, fs, paths, args)
	pause(cmd, cfg)
	return err
}

func doRestore(cmd *cobra.Command, cfg *cliconfig.CLIConfig, logger *slog.Logger, fs storage.FileSystem, paths appdir.Paths, args []string) error {
	if err := elevation.Require(checkElevation); err != nil {
		logger.Error("Please run this tool with administrator privileges", "error", err, "hint", elevation.Hint())
		return reported(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var backup string
	if len(args) == 1 {
		var err error
		backup, err = locateBackup(ctx, fs, paths.BackupDir, args[0])
		if err != nil {
			logger.Error("Backup not found", "backup", args[0], "error", err)
			return reported(err)
		}
	}

	ok, err := confirm(cmd, cfg, "Restore from backup?", "Cursor will be closed and its current identifiers overwritten.")
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("Restore cancelled")
		return nil
	}

	term := &proc.Terminator{
		Table:      processTable,
		Clock:      clock.Real(),
		Logger:     logger,
		MaxRetries: cfg.MaxRetries,
		Wait:       cfg.Wait(),
	}
	if err := term.TerminateNames(ctx, cfg.ProcessNames); err != nil {
		return reported(err)
	}

	if backup != "" {
		if err := storage.Restore(ctx, fs, backup, paths.StorageFile); err != nil {
			logger.Error("Failed to restore storage file", "backup", backup, "error", err)
			return reported(err)
		}
		logger.Info("Storage file restored", "backup", backup, "path", paths.StorageFile)
	}

	if restoreRegistryFile != "" {
		if err := restoreIdentityStore(ctx, logger, fs, paths.BackupDir, restoreRegistryFile); err != nil {
			return reported(err)
		}
	}
	return nil
}

func restoreIdentityStore(ctx context.Context, logger *slog.Logger, fs storage.FileSystem, backupDir, name string) error {
	store := platformStore()
	if store == nil {
		logger.Error("Identity store restore is only supported on Windows")
		return ErrNoIdentityStore
	}
	file, err := locateBackup(ctx, fs, backupDir, name)
	if err != nil {
		logger.Error("Identity store export not found", "backup", name, "error", err)
		return err
	}
	key, err := store.Open(ctx)
	if err != nil {
		logger.Error("Failed to open identity store", "error", err)
		return err
	}
	defer key.Close()
	if err := key.Import(ctx, file); err != nil {
		logger.Error("Identity store import failed", "backup", file, "error", err)
		return err
	}
	value, err := key.Read()
	if err != nil {
		logger.Warn("Identity store restored but could not be read back", "error", err)
		return nil
	}
	logger.Info("Identity store restored", store.Info().ValueName, value)
	return nil
}

// locateBackup resolves name as a path, then as a file in backupDir. A
// glob pattern picks the newest matching file in backupDir.
func locateBackup(ctx context.Context, fs storage.FileSystem, backupDir, name string) (string, error) {
	if strings.ContainsAny(name, "*?[{") {
		return matchBackup(ctx, fs, backupDir, name)
	}
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(backupDir, name))
	}
	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if ok, err := fs.Exists(ctx, abs); err == nil && ok {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, os.ErrNotExist)
}

func matchBackup(ctx context.Context, fs storage.FileSystem, backupDir, pattern string) (string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return "", fmt.Errorf("%s: %w", pattern, doublestar.ErrBadPattern)
	}
	names, err := storage.ListBackups(ctx, fs, backupDir)
	if err != nil {
		return "", err
	}
	var found string
	for _, n := range names {
		if ok, _ := doublestar.Match(pattern, n); ok {
			found = n
		}
	}
	if found == "" {
		return "", fmt.Errorf("no backup matches %s: %w", pattern, os.ErrNotExist)
	}
	return filepath.Abs(filepath.Join(backupDir, found))
}
