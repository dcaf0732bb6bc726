package cliconfig

import (
	"strconv"
	"strings"

	"github.com/idreset/idreset/pkg/logging"
)

// Limits for the retry budget.
const (
	MaxMaxRetries  = 100
	MaxWaitSeconds = 60
)

// Validate checks the configuration for out of range values.
func (c *CLIConfig) Validate() error {
	if len(c.ProcessNames) == 0 {
		return &ValidationError{Key: "processNames", Message: "must name at least one process"}
	}
	if c.MaxRetries < 1 || c.MaxRetries > MaxMaxRetries {
		return &ValidationError{Key: "maxRetries", Message: strconv.Itoa(c.MaxRetries) + " is out of range (1-" + strconv.Itoa(MaxMaxRetries) + ")"}
	}
	if c.WaitSeconds < 0 || c.WaitSeconds > MaxWaitSeconds {
		return &ValidationError{Key: "waitSeconds", Message: strconv.Itoa(c.WaitSeconds) + " is out of range (0-" + strconv.Itoa(MaxWaitSeconds) + ")"}
	}
	if c.LogLevel != "" {
		if _, ok := logging.LookupLevel(c.LogLevel); !ok {
			return &ValidationError{Key: "logLevel", Message: strconv.Quote(c.LogLevel) + " is not a log level (debug, info, warn, error)"}
		}
	}
	switch logging.Format(strings.ToLower(c.LogFormat)) {
	case "", logging.FormatConsole, logging.FormatText, logging.FormatJSON:
	default:
		return &ValidationError{Key: "logFormat", Message: strconv.Quote(c.LogFormat) + " is not a log format (console, text, json)"}
	}
	return nil
}
