package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// SupportedVersions is the range of application versions known to keep
// their identifiers in storage.json.
const SupportedVersions = "0.45.x and later"

func printBanner(w io.Writer) {
	r := lipgloss.NewRenderer(w)
	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(0, 2)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Render("idreset")
	sub := r.NewStyle().Faint(true).Render("Cursor machine identifier reset")

	fmt.Fprintln(w, box.Render(title+"  "+versionString()+"\n"+sub))
	fmt.Fprintln(w, r.NewStyle().Foreground(lipgloss.Color("3")).Render("Supported Cursor versions: "+SupportedVersions))
	fmt.Fprintln(w)
}
