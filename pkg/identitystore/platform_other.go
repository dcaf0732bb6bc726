//go:build !windows

package identitystore

// Platform returns nil: only Windows exposes a machine-wide identity value
// that the target application reads.
func Platform() Store { return nil }
