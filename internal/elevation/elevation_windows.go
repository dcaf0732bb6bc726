//go:build windows

package elevation

import "golang.org/x/sys/windows"

// IsElevated reports whether the process token is elevated
// (running as Administrator with UAC consent).
func IsElevated() (bool, error) {
	return windows.GetCurrentProcessToken().IsElevated(), nil
}

// Hint describes how to obtain elevation on this platform.
func Hint() string {
	return "Right-click the executable and select 'Run as administrator'"
}
