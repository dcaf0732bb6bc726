package cliconfig

import "time"

// DefaultProcessNames are the application processes closed before a reset.
var DefaultProcessNames = []string{"Cursor"}

// DefaultMaxRetries is the number of polls before giving up on a process.
const DefaultMaxRetries = 5

// DefaultWaitSeconds is the pause between polls.
const DefaultWaitSeconds = 1

// DefaultLogLevel is the minimum level written to the console.
const DefaultLogLevel = "info"

// DefaultLogFormat is the console log format.
const DefaultLogFormat = "console"

// Wait returns WaitSeconds as a duration.
func (c *CLIConfig) Wait() time.Duration {
	return time.Duration(c.WaitSeconds) * time.Second
}

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		ProcessNames: append([]string(nil), DefaultProcessNames...),
		MaxRetries:   DefaultMaxRetries,
		WaitSeconds:  DefaultWaitSeconds,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		Sources:      make(map[string]string),
	}

	for _, key := range Keys {
		cfg.Sources[key] = SourceDefault
	}

	return cfg
}
