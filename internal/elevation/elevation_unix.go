//go:build !windows

package elevation

import "golang.org/x/sys/unix"

// IsElevated reports whether the effective user is root.
func IsElevated() (bool, error) {
	return unix.Geteuid() == 0, nil
}

// Hint describes how to obtain elevation on this platform.
func Hint() string {
	return "Re-run the command with sudo"
}
