// Package elevation reports whether the current process holds
// administrative privileges.
package elevation

import "errors"

// ErrNotElevated is returned by Require when the process is not elevated.
var ErrNotElevated = errors.New("administrator privileges required")

// Checker reports whether the process is elevated.
type Checker func() (bool, error)

// Require returns nil when check reports elevation, ErrNotElevated when it
// does not, and check's own error otherwise.
func Require(check Checker) error {
	if check == nil {
		check = IsElevated
	}
	ok, err := check()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotElevated
	}
	return nil
}
