// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"math"
	"testing"
)

func TestParseInteger(t *testing.T) {
	tests := []struct {
		Text string
		Want Integer
		OK   bool
	}{
		{Text: "0", Want: Integer{}, OK: true},
		{Text: "-0", Want: Integer{}, OK: true},
		{Text: "42", Want: Integer{Abs: 42}, OK: true},
		{Text: "-42", Want: Integer{Neg: true, Abs: 42}, OK: true},
		{Text: "0x2f06", Want: Integer{Abs: 0x2f06}, OK: true},
		{Text: "-0x80", Want: Integer{Neg: true, Abs: 0x80}, OK: true},
		{Text: "0o17", Want: Integer{Abs: 15}, OK: true},
		{Text: "0b1010", Want: Integer{Abs: 10}, OK: true},
		{Text: "18446744073709551615", Want: Integer{Abs: math.MaxUint64}, OK: true},
		{Text: "-9223372036854775808", Want: Integer{Neg: true, Abs: 1 << 63}, OK: true},
		{Text: "18446744073709551616"},
		{Text: ""},
		{Text: "-"},
		{Text: "0x"},
		{Text: "0b102"},
		{Text: "--1"},
		{Text: "+1"},
		{Text: "1_000"},
		{Text: "0X10"},
		{Text: "abc"},
	}

	for _, test := range tests {
		got, ok := ParseInteger(test.Text)
		if ok != test.OK || got != test.Want {
			t.Errorf("ParseInteger(%q): got (%v, %v), want (%v, %v)", test.Text, got, ok, test.Want, test.OK)
		}
	}
}

func TestIntegerRanges(t *testing.T) {
	tests := []struct {
		Value      Integer
		Bits       int
		FitsSigned bool
		Fits       bool
	}{
		{Value: Int(127), Bits: 8, FitsSigned: true, Fits: true},
		{Value: Int(128), Bits: 8, FitsSigned: false, Fits: true},
		{Value: Int(255), Bits: 8, FitsSigned: false, Fits: true},
		{Value: Int(256), Bits: 8, FitsSigned: false, Fits: false},
		{Value: Int(-128), Bits: 8, FitsSigned: true, Fits: true},
		{Value: Int(-129), Bits: 8, FitsSigned: false, Fits: false},
		{Value: Int(-200), Bits: 8, FitsSigned: false, Fits: false},
		{Value: Int(200), Bits: 8, FitsSigned: false, Fits: true},
		{Value: Int(300), Bits: 8, FitsSigned: false, Fits: false},
		{Value: Int(math.MaxInt32), Bits: 32, FitsSigned: true, Fits: true},
		{Value: Int(math.MaxUint32), Bits: 32, FitsSigned: false, Fits: true},
		{Value: Int(math.MinInt64), Bits: 64, FitsSigned: true, Fits: true},
		{Value: Integer{Abs: math.MaxUint64}, Bits: 64, FitsSigned: false, Fits: true},
	}

	for _, test := range tests {
		if got := test.Value.FitsSigned(test.Bits); got != test.FitsSigned {
			t.Errorf("%s.FitsSigned(%d): got %v, want %v", test.Value, test.Bits, got, test.FitsSigned)
		}
		if got := test.Value.Fits(test.Bits); got != test.Fits {
			t.Errorf("%s.Fits(%d): got %v, want %v", test.Value, test.Bits, got, test.Fits)
		}
	}
}

func TestIntegerConversions(t *testing.T) {
	tests := []struct {
		Value  Integer
		Uint64 uint64
		Int64  int64
		OK     bool
		String string
	}{
		{Value: Int(0), Uint64: 0, Int64: 0, OK: true, String: "0"},
		{Value: Int(-1), Uint64: math.MaxUint64, Int64: -1, OK: true, String: "-1"},
		{Value: Int(math.MinInt64), Uint64: 1 << 63, Int64: math.MinInt64, OK: true, String: "-9223372036854775808"},
		{Value: Integer{Abs: math.MaxUint64}, Uint64: math.MaxUint64, OK: false, String: "18446744073709551615"},
	}

	for _, test := range tests {
		if got := test.Value.Uint64(); got != test.Uint64 {
			t.Errorf("%s.Uint64(): got %#x, want %#x", test.Value, got, test.Uint64)
		}
		if got, ok := test.Value.Int64(); got != test.Int64 || ok != test.OK {
			t.Errorf("%s.Int64(): got (%d, %v), want (%d, %v)", test.Value, got, ok, test.Int64, test.OK)
		}
		if got := test.Value.String(); got != test.String {
			t.Errorf("String(): got %q, want %q", got, test.String)
		}
	}
}
