package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idreset/idreset/internal/appdir"
	"github.com/idreset/idreset/internal/elevation"
	"github.com/idreset/idreset/internal/id"
	"github.com/idreset/idreset/pkg/cliconfig"
	"github.com/idreset/idreset/pkg/storage"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common setup issues before a reset",
	Long:  `Diagnose common setup issues before a reset. Nothing is modified.`,
	Example: `  # Run all checks
  idreset doctor

  # Check a storage file in a custom location
  idreset doctor --storage-file ./storage.json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	addPathFlags(doctorCmd)
}

// doctorCheck holds the result of a single doctor check.
type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "fail", "info"
	Detail string `json:"detail"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	checks, allPassed := doctorChecks(cmd.Context(), cfg)

	w := cmd.OutOrStdout()
	return printResult(w, map[string]any{"checks": checks, "allPassed": allPassed}, func() {
		fmt.Fprintln(w, "idreset doctor")
		fmt.Fprintln(w, "==============")
		fmt.Fprintln(w)
		for _, c := range checks {
			switch c.Status {
			case "ok":
				fmt.Fprintf(w, "  ✓ %s: %s\n", c.Name, c.Detail)
			case "fail":
				fmt.Fprintf(w, "  ✗ %s: %s\n", c.Name, c.Detail)
			default:
				fmt.Fprintf(w, "  • %s: %s\n", c.Name, c.Detail)
			}
		}
		fmt.Fprintln(w)
		if allPassed {
			fmt.Fprintln(w, "All checks passed!")
		} else {
			fmt.Fprintln(w, "Some checks failed. See above for details.")
		}
	})
}

func doctorChecks(ctx context.Context, cfg *cliconfig.CLIConfig) ([]doctorCheck, bool) {
	allPassed := true
	var checks []doctorCheck
	add := func(name, status, detail string) {
		if status == "fail" {
			allPassed = false
		}
		checks = append(checks, doctorCheck{Name: name, Status: status, Detail: detail})
	}

	// Check 1: privileges
	if err := elevation.Require(checkElevation); err != nil {
		add("elevation", "fail", fmt.Sprintf("%v (%s)", err, elevation.Hint()))
	} else {
		add("elevation", "ok", "running with administrator privileges")
	}

	// Check 2: storage file and current identifiers
	paths, err := resolvePaths(cfg)
	if err != nil {
		add("storage_file", "fail", err.Error())
		return checks, allPassed
	}
	fs := storage.NewFileSystem()
	current, err := storage.ReadIdentity(ctx, fs, paths.StorageFile)
	if err != nil {
		add("storage_file", "fail", err.Error())
	} else {
		add("storage_file", "ok", paths.StorageFile)
		for _, field := range id.FieldNames() {
			value, ok := current[field]
			if !ok {
				value = "(not set)"
			}
			add("telemetry."+field, "info", value)
		}
		if data, err := fs.ReadFile(ctx, paths.StorageFile); err != nil {
			add("storage_schema", "fail", err.Error())
		} else if err := storage.Validate(paths.StorageFile, data); err != nil {
			add("storage_schema", "fail", err.Error())
		} else {
			add("storage_schema", "ok", "identity fields can be rewritten")
		}
	}

	// Check 3: backups
	backups, err := storage.ListBackups(ctx, fs, paths.BackupDir)
	switch {
	case err != nil:
		add("backup_dir", "fail", err.Error())
	case len(backups) == 0:
		add("backup_dir", "info", fmt.Sprintf("no backups in %s", paths.BackupDir))
	default:
		add("backup_dir", "ok", fmt.Sprintf("%d backups in %s, latest %s", len(backups), paths.BackupDir, backups[len(backups)-1]))
	}

	// Check 4: running application processes
	var running []string
	var findErr error
	for _, name := range cfg.ProcessNames {
		procs, err := processTable.Find(ctx, name)
		if err != nil {
			findErr = err
			break
		}
		for _, p := range procs {
			running = append(running, fmt.Sprintf("%s (pid %d)", p.Name, p.PID))
		}
	}
	switch {
	case findErr != nil:
		add("processes", "fail", findErr.Error())
	case len(running) > 0:
		add("processes", "info", "will be closed: "+strings.Join(running, ", "))
	default:
		add("processes", "ok", "no running "+strings.Join(cfg.ProcessNames, "/")+" process")
	}

	// Check 5: identity store
	if store := platformStore(); store != nil {
		info := store.Info()
		add("identity_store", "ok", info.Location+`\`+info.ValueName)
	} else {
		add("identity_store", "info", "not available on this platform")
	}

	// Check 6: application version
	version, path, err := appdir.DetectVersion(paths.PackageCandidates)
	if err != nil {
		add("app_version", "info", err.Error())
	} else {
		add("app_version", "ok", fmt.Sprintf("v%s (%s)", version, path))
	}

	// Check 7: updater directory
	if paths.UpdaterDir != "" {
		if ok, _ := fs.Exists(ctx, paths.UpdaterDir); ok {
			add("updater_dir", "info", paths.UpdaterDir)
		} else {
			add("updater_dir", "info", "not found ("+paths.UpdaterDir+")")
		}
	}

	return checks, allPassed
}
