package binstream

import (
	"encoding/binary"
	"math"
)

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
	// Order is the default byte order for new Readers and Writers.
	Order binary.ByteOrder = LE
)

// Floating-point values are converted by reinterpreting their bits as the
// same-width unsigned integer and routing through the integer path, so the
// selected byte order applies uniformly to floats and integers. NaN and
// infinity payloads survive because only the bit pattern travels.

func putFloat32(order binary.ByteOrder, buf []byte, v float32) {
	order.PutUint32(buf, math.Float32bits(v))
}

func putFloat64(order binary.ByteOrder, buf []byte, v float64) {
	order.PutUint64(buf, math.Float64bits(v))
}

func getFloat32(order binary.ByteOrder, buf []byte) float32 {
	return math.Float32frombits(order.Uint32(buf))
}

func getFloat64(order binary.ByteOrder, buf []byte) float64 {
	return math.Float64frombits(order.Uint64(buf))
}
