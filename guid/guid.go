// Package guid converts between RFC 4122 UUIDs and the 16-byte mixed-endian
// GUID wire form the binary format uses: the first three fields travel
// little-endian while the final eight bytes keep their network order.
package guid

import (
	"errors"

	"github.com/google/uuid"
)

// Size is the wire width of a GUID.
const Size = 16

// ErrSize indicates a byte slice that is not exactly 16 bytes.
var ErrSize = errors.New("guid: need exactly 16 bytes")

// ToBytes returns the mixed-endian wire form of u.
func ToBytes(u uuid.UUID) []byte {
	b := make([]byte, Size)
	b[0], b[1], b[2], b[3] = u[3], u[2], u[1], u[0]
	b[4], b[5] = u[5], u[4]
	b[6], b[7] = u[7], u[6]
	copy(b[8:], u[8:])
	return b
}

// FromBytes parses the mixed-endian wire form back into a UUID.
func FromBytes(b []byte) (uuid.UUID, error) {
	if len(b) != Size {
		return uuid.Nil, ErrSize
	}
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:], b[8:])
	return u, nil
}

// New returns a random GUID.
func New() uuid.UUID { return uuid.New() }
