// Package storage rewrites the identity fields of the application's JSON
// storage file and manages its backup artifacts.
//
// The Mutator parses the whole document, replaces the four telemetry fields
// in memory and writes the result over the original. If that write fails
// the original bytes are written back; if the rollback fails as well the
// error is a *CriticalError and the backup artifact is the only copy left.
//
// All file access goes through a FileSystem so tests can inject failures.
package storage
