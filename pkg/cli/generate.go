package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idreset/idreset/internal/id"
	"github.com/idreset/idreset/pkg/cli/internal/output"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print a fresh identity set without changing anything",
	Example: `  idreset generate
  idreset generate --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := id.NewIdentitySet()
		w := cmd.OutOrStdout()
		return printResult(w, ids, func() {
			tw := output.Table(w)
			for _, field := range id.FieldNames() {
				fmt.Fprintf(tw, "%s\t%s\n", field, ids.Fields()[field])
			}
			_ = tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
