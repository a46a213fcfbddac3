package binstream

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimal128 is a 128-bit fixed-point decimal: a 96-bit unsigned integer
// coefficient (Lo is least significant) scaled by a power of ten, plus a
// flags word carrying the scale and the sign.
//
// Wire form is the four components as sequential 32-bit integers in this
// declared order (Lo, Mid, Hi, Flags), each in the active byte order.
type Decimal128 struct {
	Lo    uint32
	Mid   uint32
	Hi    uint32
	Flags uint32
}

const (
	decimalSignMask  = 0x8000_0000
	decimalScaleMask = 0x00FF_0000
	decimalScaleMax  = 28
)

// NewDecimal128 builds a value from a 96-bit coefficient, a scale in
// [0, 28], and a sign.
func NewDecimal128(lo, mid, hi uint32, scale uint8, negative bool) (Decimal128, error) {
	if scale > decimalScaleMax {
		return Decimal128{}, fmt.Errorf("%w: decimal scale %d out of range", ErrInvalidArgument, scale)
	}
	flags := uint32(scale) << 16
	if negative {
		flags |= decimalSignMask
	}
	return Decimal128{Lo: lo, Mid: mid, Hi: hi, Flags: flags}, nil
}

// Decimal128FromInt64 builds an integral decimal from v.
func Decimal128FromInt64(v int64) Decimal128 {
	neg := v < 0
	u := uint64(v)
	if neg {
		u = -u
	}
	d, _ := NewDecimal128(uint32(u), uint32(u>>32), 0, 0, neg)
	return d
}

// Negative reports whether the sign bit is set.
func (d Decimal128) Negative() bool { return d.Flags&decimalSignMask != 0 }

// Scale returns the power-of-ten scale of the coefficient.
func (d Decimal128) Scale() uint8 { return uint8(d.Flags >> 16) }

// Validate rejects a flags word with reserved bits set or a scale above 28.
func (d Decimal128) Validate() error {
	if d.Flags&^(decimalSignMask|decimalScaleMask) != 0 {
		return fmt.Errorf("%w: decimal flags 0x%08x have reserved bits set", ErrInvalidData, d.Flags)
	}
	if d.Scale() > decimalScaleMax {
		return fmt.Errorf("%w: decimal scale %d out of range", ErrInvalidData, d.Scale())
	}
	return nil
}

// coefficient returns the 96-bit coefficient as a big integer.
func (d Decimal128) coefficient() *big.Int {
	c := new(big.Int).SetUint64(uint64(d.Hi))
	c.Lsh(c, 64)
	lo := new(big.Int).SetUint64(uint64(d.Mid)<<32 | uint64(d.Lo))
	return c.Or(c, lo)
}

// String renders the decimal in plain fixed-point notation.
func (d Decimal128) String() string {
	digits := d.coefficient().String()
	scale := int(d.Scale())
	var sb strings.Builder
	if d.Negative() {
		sb.WriteByte('-')
	}
	if scale == 0 {
		sb.WriteString(digits)
		return sb.String()
	}
	if len(digits) <= scale {
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", scale-len(digits)))
		sb.WriteString(digits)
		return sb.String()
	}
	sb.WriteString(digits[:len(digits)-scale])
	sb.WriteByte('.')
	sb.WriteString(digits[len(digits)-scale:])
	return sb.String()
}
