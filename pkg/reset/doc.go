// Package reset runs the identity reset: close the application, back up
// its storage file, rotate the platform identity store and write a fresh
// identity set into the storage file.
//
// The Engine only reports what happened through its Result and error.
// Prompts, pauses and exit codes belong to the caller.
package reset
