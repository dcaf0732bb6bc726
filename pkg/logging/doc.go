// Package logging provides structured logging configuration for idreset.
//
// This package wraps log/slog so every component reports through a
// *slog.Logger. The CLI renders records as severity-tagged status lines
// ("[INFO] ...", "[WARNING] ...") on the console and can fan the same
// records out to a JSON audit file.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatConsole,
//	})
//
//	logger.Info("configuration updated", "path", path)
//	logger.Log(ctx, logging.LevelCritical, "rollback failed", "path", path)
//
// # Log Levels
//
//   - Debug: generated values and other detail
//   - Info: progress of each step
//   - Warn: recoverable conditions (backup failures, version detection)
//   - Error: a component failed; the run decides whether to stop
//   - Critical: state may be inconsistent and needs manual recovery
//
// # Output Formats
//
//   - Console: severity-tagged lines with colored tags (default)
//   - Text: slog key=value lines
//   - JSON: structured records for audit files
//
// Components accept a *slog.Logger; when none is given they use Nop().
package logging
