// Package identitystore rotates the machine-wide identity value kept by the
// operating system (the MachineGuid registry value on Windows).
//
// A Rotator exports the current value to a backup artifact, writes a new
// random UUID and reads it back to verify. When the write itself fails and a
// backup exists, the backup is imported again. A verification mismatch is
// reported without an automatic restore; the backup path is logged so the
// value can be restored by hand.
//
// Platform returns nil where no such store exists.
package identitystore
