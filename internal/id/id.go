package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Telemetry field names used by the target application.
const (
	FieldMachineID    = "machineId"
	FieldMacMachineID = "macMachineId"
	FieldDevDeviceID  = "devDeviceId"
	FieldSQMID        = "sqmId"
)

// machineIDPrefix is prepended (hex-encoded) to every machine id.
const machineIDPrefix = "auth0|user_"

// templatedIDPattern is the layout of a templated id. 'x' is any hex digit,
// 'y' is one of 8, 9, a, b; everything else is copied verbatim.
const templatedIDPattern = "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const hexDigits = "0123456789abcdef"

// IdentitySet holds one generated value per telemetry field.
type IdentitySet struct {
	MachineID    string `json:"machineId"`
	MacMachineID string `json:"macMachineId"`
	DevDeviceID  string `json:"devDeviceId"`
	SQMID        string `json:"sqmId"`
}

// NewIdentitySet generates a fresh set of identity values.
func NewIdentitySet() IdentitySet {
	return IdentitySet{
		MachineID:    MachineID(),
		MacMachineID: TemplatedID(),
		DevDeviceID:  UUID(),
		SQMID:        BracedUpperUUID(),
	}
}

// Fields returns the set keyed by telemetry field name.
func (s IdentitySet) Fields() map[string]string {
	return map[string]string{
		FieldMachineID:    s.MachineID,
		FieldMacMachineID: s.MacMachineID,
		FieldDevDeviceID:  s.DevDeviceID,
		FieldSQMID:        s.SQMID,
	}
}

// FieldNames returns the telemetry field names in display order.
func FieldNames() []string {
	return []string{FieldMachineID, FieldMacMachineID, FieldDevDeviceID, FieldSQMID}
}

// MachineID returns the hex-encoded prefix followed by 32 random characters.
func MachineID() string {
	return hex.EncodeToString([]byte(machineIDPrefix)) + RandomHex(32)
}

// RandomHex returns length random characters in lowercase.
// Characters are drawn uniformly from the 62-character alphanumeric set and
// then lowercased, so the output alphabet is [0-9a-z], not strictly hex.
func RandomHex(length int) string {
	return strings.ToLower(Alphanumeric(length))
}

// Alphanumeric generates a random alphanumeric string of the specified length.
// Uses uppercase, lowercase letters and digits.
func Alphanumeric(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumeric[randIndex(len(alphanumeric))]
	}
	return string(b)
}

// TemplatedID generates an id following templatedIDPattern.
func TemplatedID() string {
	out := make([]byte, len(templatedIDPattern))
	for i := 0; i < len(templatedIDPattern); i++ {
		switch c := templatedIDPattern[i]; c {
		case 'x':
			out[i] = hexDigits[randIndex(16)]
		case 'y':
			out[i] = hexDigits[8+randIndex(4)]
		default:
			out[i] = c
		}
	}
	return string(out)
}

// UUID generates a UUID v4 (random).
// Returns a string in the format: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx
func UUID() string {
	return uuid.NewString()
}

// BracedUpperUUID returns a UUID v4 in uppercase wrapped in braces,
// e.g. {0F8FAD5B-D9CB-469F-A165-70867728950E}.
func BracedUpperUUID() string {
	return "{" + strings.ToUpper(uuid.NewString()) + "}"
}

// randIndex returns a uniform random int in [0, n) for 0 < n <= 256.
// Bytes at or above the largest multiple of n are rejected to avoid
// modulo bias.
func randIndex(n int) int {
	limit := 256 - (256 % n)
	var buf [1]byte
	for {
		_, _ = rand.Read(buf[:])
		if int(buf[0]) < limit {
			return int(buf[0]) % n
		}
	}
}
