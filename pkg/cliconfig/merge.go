package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if len(source.ProcessNames) > 0 {
		target.ProcessNames = append([]string(nil), source.ProcessNames...)
		target.Sources["processNames"] = sourceType
	}
	if source.MaxRetries != 0 {
		target.MaxRetries = source.MaxRetries
		target.Sources["maxRetries"] = sourceType
	}
	if source.WaitSeconds != 0 || isSet(source, "waitSeconds") {
		target.WaitSeconds = source.WaitSeconds
		target.Sources["waitSeconds"] = sourceType
	}
	if source.StorageFile != "" {
		target.StorageFile = source.StorageFile
		target.Sources["storageFile"] = sourceType
	}
	if source.BackupDir != "" {
		target.BackupDir = source.BackupDir
		target.Sources["backupDir"] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}
	if source.LogFile != "" {
		target.LogFile = source.LogFile
		target.Sources["logFile"] = sourceType
	}
	// An explicit false only overrides when the key was present in the file.
	if boolIsSet(source, "skipIdentityStore", source.SkipIdentityStore) {
		target.SkipIdentityStore = source.SkipIdentityStore
		target.Sources["skipIdentityStore"] = sourceType
	}
	if boolIsSet(source, "noPause", source.NoPause) {
		target.NoPause = source.NoPause
		target.Sources["noPause"] = sourceType
	}
	if boolIsSet(source, "assumeYes", source.AssumeYes) {
		target.AssumeYes = source.AssumeYes
		target.Sources["assumeYes"] = sourceType
	}
}

func isSet(cfg *CLIConfig, yamlKey string) bool {
	return cfg.SetFields != nil && cfg.SetFields[yamlKey]
}

// boolIsSet reports whether a boolean field was explicitly set in the
// source config. Without SetFields (programmatic configs) only true counts.
func boolIsSet(cfg *CLIConfig, yamlKey string, value bool) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	return value
}
