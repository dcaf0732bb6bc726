package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	jsonOutput bool
	configPath string
	logLevel   string
	logFormat  string
	logFile    string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
// Without a subcommand it performs a reset.
var rootCmd = &cobra.Command{
	Use:   "idreset",
	Short: "idreset resets the machine identifiers of the Cursor editor",
	Long: `idreset closes Cursor, backs up its storage file, writes a fresh set of
telemetry identifiers and, on Windows, rotates the MachineGuid registry value.

Configuration can be provided via flags, environment variables (IDRESET_*),
or a configuration file. By default, idreset looks for a configuration file at
<UserConfigDir>/idreset/config.yaml and .idresetrc.yaml in the current directory.`,
	Args:          cobra.NoArgs,
	RunE:          runReset,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Run()
}

// exitError carries an exit code for an error that was already reported to
// the operator.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 1, err: err}
}

// Run executes the root command and returns the process exit code.
func Run() int {
	return exitCode(rootCmd.Execute())
}

// Execute runs the CLI and exits the process.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(Run())
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func init() {
	// Define persistent flags that apply globally to all idreset commands
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an idreset config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, text, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")

	addResetFlags(rootCmd)
}
