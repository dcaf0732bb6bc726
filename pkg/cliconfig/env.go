package cliconfig

import "os"

// Environment variable names
const (
	EnvProcessNames      = "IDRESET_PROCESS_NAMES"
	EnvMaxRetries        = "IDRESET_MAX_RETRIES"
	EnvWaitSeconds       = "IDRESET_WAIT_SECONDS"
	EnvStorageFile       = "IDRESET_STORAGE_FILE"
	EnvBackupDir         = "IDRESET_BACKUP_DIR"
	EnvSkipIdentityStore = "IDRESET_SKIP_IDENTITY_STORE"
	EnvLogLevel          = "IDRESET_LOG_LEVEL"
	EnvLogFormat         = "IDRESET_LOG_FORMAT"
	EnvLogFile           = "IDRESET_LOG_FILE"
	EnvNoPause           = "IDRESET_NO_PAUSE"
	EnvYes               = "IDRESET_YES"
)

// EnvKeys maps each environment variable to its configuration key.
var EnvKeys = []struct {
	Env string
	Key string
}{
	{EnvProcessNames, "processNames"},
	{EnvMaxRetries, "maxRetries"},
	{EnvWaitSeconds, "waitSeconds"},
	{EnvStorageFile, "storageFile"},
	{EnvBackupDir, "backupDir"},
	{EnvSkipIdentityStore, "skipIdentityStore"},
	{EnvLogLevel, "logLevel"},
	{EnvLogFormat, "logFormat"},
	{EnvLogFile, "logFile"},
	{EnvNoPause, "noPause"},
	{EnvYes, "assumeYes"},
}

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *CLIConfig) error {
	for _, ek := range EnvKeys {
		v := os.Getenv(ek.Env)
		if v == "" {
			continue
		}
		if err := cfg.Set(ek.Key, v, SourceEnv); err != nil {
			return err
		}
	}
	return nil
}
