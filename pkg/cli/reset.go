package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/idreset/idreset/internal/appdir"
	"github.com/idreset/idreset/internal/clock"
	"github.com/idreset/idreset/internal/elevation"
	"github.com/idreset/idreset/internal/id"
	"github.com/idreset/idreset/pkg/cli/internal/output"
	"github.com/idreset/idreset/pkg/cliconfig"
	"github.com/idreset/idreset/pkg/logging"
	"github.com/idreset/idreset/pkg/proc"
	"github.com/idreset/idreset/pkg/reset"
	"github.com/idreset/idreset/pkg/storage"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the machine identifiers (default command)",
	Long: `Reset the machine identifiers of Cursor.

The run closes every Cursor process, backs up storage.json, rotates the
platform identity store (MachineGuid on Windows) and writes a fresh set of
telemetry identifiers. Administrator privileges are required.`,
	Example: `  # Reset with confirmation
  idreset

  # Unattended run
  idreset reset --yes --no-pause

  # Keep the registry untouched
  idreset reset --skip-identity-store`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	addResetFlags(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, logWriter(cmd))
	if err != nil {
		return err
	}
	defer closeLog()

	if !jsonOutput {
		printBanner(cmd.OutOrStdout())
	}

	err = doReset(cmd, cfg, logger)
	pause(cmd, cfg)
	return err
}

func doReset(cmd *cobra.Command, cfg *cliconfig.CLIConfig, logger *slog.Logger) error {
	if err := elevation.Require(checkElevation); err != nil {
		logger.Error("Please run this tool with administrator privileges", "error", err, "hint", elevation.Hint())
		return reported(err)
	}

	paths, err := resolvePaths(cfg)
	if err != nil {
		logger.Error("Unable to determine the Cursor configuration directory", "error", err)
		return reported(err)
	}

	logVersion(logger, paths)

	ok, err := confirm(cmd, cfg, "Reset Cursor machine identifiers?",
		"Cursor will be closed and its identifiers replaced. Backups are written to "+paths.BackupDir)
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("Reset cancelled")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fs := storage.NewFileSystem()
	engine := &reset.Engine{
		Logger: logger,
		FS:     fs,
		Terminator: &proc.Terminator{
			Table:      processTable,
			Clock:      clock.Real(),
			Logger:     logger,
			MaxRetries: cfg.MaxRetries,
			Wait:       cfg.Wait(),
		},
		Store: platformStore(),
		Clock: clock.Real(),
	}

	logger.Info("Checking Cursor processes...")
	res, err := engine.Run(ctx, reset.Options{
		ProcessNames:      cfg.ProcessNames,
		StorageFile:       paths.StorageFile,
		BackupDir:         paths.BackupDir,
		SkipIdentityStore: cfg.SkipIdentityStore,
	})

	if jsonOutput {
		if perr := output.JSON(cmd.OutOrStdout(), res); perr != nil {
			return perr
		}
	} else {
		printReport(ctx, cmd.OutOrStdout(), logger, fs, paths, res, err)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrCritical):
		logger.Log(ctx, logging.LevelCritical, "The storage file may be damaged, restore it from the backup directory", "backups", paths.BackupDir)
	case errors.Is(err, proc.ErrStillRunning):
		logger.Error("Cursor is still running, nothing was changed")
	case errors.Is(err, storage.ErrConfigNotFound):
		logger.Error("Cursor has never been started on this account, nothing to reset in storage.json")
	default:
		logger.Error("Reset failed", "error", err)
	}
	return reported(err)
}

// logVersion reports the installed application version when it can be
// found. Failures are warnings.
func logVersion(logger *slog.Logger, paths appdir.Paths) {
	version, path, err := appdir.DetectVersion(paths.PackageCandidates)
	switch {
	case errors.Is(err, appdir.ErrVersionNotFound):
		logger.Warn("Unable to detect the Cursor version, continuing")
	case err != nil:
		logger.Warn("Unable to read the Cursor version, continuing", "path", path, "error", err)
	default:
		logger.Info("Current Cursor version: v"+version, "path", path)
	}
}

func printReport(ctx context.Context, w io.Writer, logger *slog.Logger, fs storage.FileSystem, paths appdir.Paths, res *reset.Result, runErr error) {
	if res == nil {
		return
	}
	if runErr == nil {
		fmt.Fprintln(w)
		tw := output.Table(w)
		fmt.Fprintln(tw, "FIELD\tNEW VALUE")
		for _, field := range id.FieldNames() {
			fmt.Fprintf(tw, "%s\t%s\n", field, res.Identity.Fields()[field])
		}
		if res.StoreValue != "" {
			fmt.Fprintf(tw, "%s\t%s\n", "MachineGuid", res.StoreValue)
		}
		_ = tw.Flush()
	}

	if len(res.Steps) > 0 {
		title := cases.Title(language.English)
		fmt.Fprintln(w)
		tw := output.Table(w)
		fmt.Fprintln(tw, "STEP\tSTATUS")
		for _, s := range res.Steps {
			fmt.Fprintf(tw, "%s\t%s\n", s.Name, title.String(string(s.Status)))
		}
		_ = tw.Flush()
	}

	if tree, err := backupTree(ctx, fs, paths); err == nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "File structure:")
		fmt.Fprintln(w, tree)
	} else {
		logger.Warn("Unable to list the backup directory", "error", err)
	}

	for _, s := range res.Warnings() {
		logger.Warn(fmt.Sprintf("Step %s finished with status %s", s.Name, s.Status), "detail", s.Detail)
	}
	if runErr == nil {
		fmt.Fprintln(w)
		logger.Info("Please restart Cursor to apply the new configuration")
	}
}
