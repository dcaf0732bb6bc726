package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idreset/idreset/pkg/cli/internal/output"
	"github.com/idreset/idreset/pkg/cliconfig"
)

// ConfigOutput is the JSON form of `idreset config`.
type ConfigOutput struct {
	Entries     []cliconfig.Entry `json:"entries"`
	SearchPaths []string          `json:"searchPaths"`
	StorageFile string            `json:"storageFile,omitempty"`
	BackupDir   string            `json:"backupDir,omitempty"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and where each value came from",
	Example: `  idreset config
  IDRESET_MAX_RETRIES=10 idreset config --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		out := ConfigOutput{
			Entries:     cfg.Entries(),
			SearchPaths: append(cliconfig.GetGlobalConfigSearchPaths(), cliconfig.LocalConfigFileNames...),
		}
		if paths, err := resolvePaths(cfg); err == nil {
			out.StorageFile = paths.StorageFile
			out.BackupDir = paths.BackupDir
		} else {
			output.Warn(cmd.ErrOrStderr(), "storage paths unavailable: %v", err)
		}

		w := cmd.OutOrStdout()
		return printResult(w, out, func() {
			tw := output.Table(w)
			fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
			for _, e := range out.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, e.Value, e.Source)
			}
			_ = tw.Flush()

			fmt.Fprintln(w)
			if out.StorageFile != "" {
				fmt.Fprintf(w, "Storage file: %s\n", out.StorageFile)
				fmt.Fprintf(w, "Backup dir:   %s\n", out.BackupDir)
			}
			fmt.Fprintln(w, "Config files searched:")
			for _, p := range out.SearchPaths {
				fmt.Fprintf(w, "  %s\n", p)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	addResetFlags(configCmd)
}
