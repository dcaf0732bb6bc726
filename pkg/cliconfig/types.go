// Package cliconfig provides configuration types and loading for the idreset CLI.
package cliconfig

// CLIConfig represents the complete configuration for the idreset CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.idresetrc.yaml in current directory)
// 4. Global config file (<UserConfigDir>/idreset/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// Process termination
	ProcessNames []string `yaml:"processNames" json:"processNames"`
	MaxRetries   int      `yaml:"maxRetries" json:"maxRetries"`
	WaitSeconds  int      `yaml:"waitSeconds" json:"waitSeconds"`

	// Paths. Empty means derived from the platform directories.
	StorageFile string `yaml:"storageFile,omitempty" json:"storageFile,omitempty"`
	BackupDir   string `yaml:"backupDir,omitempty" json:"backupDir,omitempty"`

	SkipIdentityStore bool `yaml:"skipIdentityStore" json:"skipIdentityStore"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LogFile   string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	// Interaction
	NoPause   bool `yaml:"noPause" json:"noPause"`
	AssumeYes bool `yaml:"assumeYes" json:"assumeYes"`

	// SetFields holds the keys present in a loaded file, so explicit false
	// values can override true ones.
	SetFields map[string]bool `yaml:"-" json:"-"`

	// Source tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFile    = "file"
	SourceFlag    = "flag"
)
