// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"strconv"
	"strings"
)

// Integer is an integer literal from
// assembly source, stored as a sign
// and a magnitude so that both the
// signed and unsigned 64-bit ranges
// can be represented.
type Integer struct {
	Neg bool
	Abs uint64
}

// Int returns the integer for the
// given signed value.
func Int(v int64) Integer {
	if v < 0 {
		return Integer{Neg: true, Abs: uint64(-(v + 1)) + 1}
	}

	return Integer{Abs: uint64(v)}
}

// ParseInteger parses an integer literal.
// A single leading minus sign is allowed,
// followed by an octal (0o), hexadecimal
// (0x), binary (0b), or decimal number.
func ParseInteger(s string) (Integer, bool) {
	var neg bool
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		neg = true
		s = rest
	}

	base := 10
	switch {
	case strings.HasPrefix(s, "0o"):
		base, s = 8, s[2:]
	case strings.HasPrefix(s, "0x"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0b"):
		base, s = 2, s[2:]
	}

	// ParseUint rejects signs, underscores,
	// and empty digit sequences for an
	// explicit base.
	abs, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return Integer{}, false
	}

	if abs == 0 {
		neg = false
	}

	return Integer{Neg: neg, Abs: abs}, true
}

// Uint64 returns the two's complement
// representation of the integer. Values
// that do not fit in 64 bits wrap.
func (i Integer) Uint64() uint64 {
	if i.Neg {
		return -i.Abs
	}

	return i.Abs
}

// Int64 returns the integer as a signed
// value, reporting whether it fits.
func (i Integer) Int64() (int64, bool) {
	if !i.FitsSigned(64) {
		return 0, false
	}

	return int64(i.Uint64()), true
}

// FitsSigned returns whether the integer
// lies in the signed range of the given
// number of bits.
func (i Integer) FitsSigned(bits int) bool {
	limit := uint64(1) << (bits - 1)
	if i.Neg {
		return i.Abs <= limit
	}

	return i.Abs < limit
}

// Fits returns whether the integer lies
// in the union of the signed and unsigned
// ranges of the given number of bits,
// which is the range of values that can
// be written into a field of that size.
func (i Integer) Fits(bits int) bool {
	if i.Neg {
		return i.Abs <= uint64(1)<<(bits-1)
	}

	if bits >= 64 {
		return true
	}

	return i.Abs < uint64(1)<<bits
}

func (i Integer) String() string {
	if i.Neg {
		return "-" + strconv.FormatUint(i.Abs, 10)
	}

	return strconv.FormatUint(i.Abs, 10)
}
