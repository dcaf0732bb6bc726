// Package id generates the identity values written by a reset.
//
// It provides the four identifier formats the target application stores
// under its telemetry section:
//
//   - MachineID: hex-encoded "auth0|user_" prefix followed by RandomHex(32)
//   - TemplatedID: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx with y in {8,9,a,b}
//   - UUID: standard random (v4) UUID, lowercase
//   - BracedUpperUUID: random UUID uppercased and wrapped in braces
//
// All generators read from crypto/rand and never fail.
package id
