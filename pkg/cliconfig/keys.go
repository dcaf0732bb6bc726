package cliconfig

import (
	"strconv"
	"strings"
)

// Keys lists every configuration key in display order.
var Keys = []string{
	"processNames",
	"maxRetries",
	"waitSeconds",
	"storageFile",
	"backupDir",
	"skipIdentityStore",
	"logLevel",
	"logFormat",
	"logFile",
	"noPause",
	"assumeYes",
}

// Entry is one resolved configuration value.
type Entry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Entries returns every key with its value and source, in Keys order.
func (c *CLIConfig) Entries() []Entry {
	out := make([]Entry, 0, len(Keys))
	for _, key := range Keys {
		source := c.Sources[key]
		if source == "" {
			source = SourceDefault
		}
		out = append(out, Entry{Key: key, Value: c.Get(key), Source: source})
	}
	return out
}

// Get returns the string form of the value for key, or "" for unknown keys.
func (c *CLIConfig) Get(key string) string {
	switch key {
	case "processNames":
		return strings.Join(c.ProcessNames, ",")
	case "maxRetries":
		return strconv.Itoa(c.MaxRetries)
	case "waitSeconds":
		return strconv.Itoa(c.WaitSeconds)
	case "storageFile":
		return c.StorageFile
	case "backupDir":
		return c.BackupDir
	case "skipIdentityStore":
		return strconv.FormatBool(c.SkipIdentityStore)
	case "logLevel":
		return c.LogLevel
	case "logFormat":
		return c.LogFormat
	case "logFile":
		return c.LogFile
	case "noPause":
		return strconv.FormatBool(c.NoPause)
	case "assumeYes":
		return strconv.FormatBool(c.AssumeYes)
	}
	return ""
}

// Set parses value into the field for key and records source.
func (c *CLIConfig) Set(key, value, source string) error {
	switch key {
	case "processNames":
		c.ProcessNames = SplitList(value)
	case "maxRetries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &ValueError{Key: key, Value: value, Err: err}
		}
		c.MaxRetries = n
	case "waitSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &ValueError{Key: key, Value: value, Err: err}
		}
		c.WaitSeconds = n
	case "storageFile":
		c.StorageFile = value
	case "backupDir":
		c.BackupDir = value
	case "skipIdentityStore":
		c.SkipIdentityStore = parseBool(value)
	case "logLevel":
		c.LogLevel = value
	case "logFormat":
		c.LogFormat = value
	case "logFile":
		c.LogFile = value
	case "noPause":
		c.NoPause = parseBool(value)
	case "assumeYes":
		c.AssumeYes = parseBool(value)
	default:
		return &ValueError{Key: key, Value: value, Err: errUnknownKey}
	}
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
	return nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
