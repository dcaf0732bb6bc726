package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idreset/idreset/pkg/cliconfig"
)

// isTerminal reports whether v is a terminal file.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// interactive reports whether cmd can prompt the operator.
func interactive(cmd *cobra.Command) bool {
	return !jsonOutput && isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout())
}

// confirm asks a yes/no question. It answers yes without asking when the
// operator passed --yes or nobody can answer.
func confirm(cmd *cobra.Command, cfg *cliconfig.CLIConfig, title, description string) (bool, error) {
	if cfg.AssumeYes || !interactive(cmd) {
		return true, nil
	}
	ok := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Continue").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// pause waits for Enter so a console window opened for the run stays
// visible. It does nothing for non-interactive runs or with --no-pause.
func pause(cmd *cobra.Command, cfg *cliconfig.CLIConfig) {
	if cfg == nil || cfg.NoPause || !interactive(cmd) {
		return
	}
	waitForEnter(cmd.InOrStdin(), cmd.OutOrStdout())
}

func waitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "\nPress Enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
