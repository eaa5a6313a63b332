// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package assembler

import (
	"errors"
	"fmt"
	"math"

	"firefly-os.dev/tools/asmacro/internal/x86"
)

var (
	// ErrSyntax indicates a line that could
	// not be parsed.
	ErrSyntax = errors.New("syntax error")

	// ErrUnknownInstruction indicates an
	// instruction that matches no form in
	// the catalog.
	ErrUnknownInstruction = errors.New("unknown instruction")

	// ErrUndefinedLabel indicates a reference
	// to a label that was never defined.
	ErrUndefinedLabel = errors.New("undefined label")

	// ErrLabelRedefined indicates a label
	// that was defined more than once.
	ErrLabelRedefined = errors.New("label redefined")

	// ErrRelocationRange indicates a label
	// that is too far away to fit in the
	// field that refers to it.
	ErrRelocationRange = errors.New("relocation out of range")
)

// Error is an error in a specific line of
// assembly.
type Error struct {
	Line int // From 1.
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RangeError indicates an integer that does
// not fit in the field it is written to.
type RangeError struct {
	Name  string // The pseudo-op or mnemonic.
	Value x86.Integer
	Min   int64
	Max   uint64
}

// newRangeError returns the error for a
// value that does not fit in a field of
// the given size. If signed is false, the
// field accepts both signed and unsigned
// values.
func newRangeError(name string, value x86.Integer, bits int, signed bool) *RangeError {
	err := &RangeError{
		Name:  name,
		Value: value,
		Min:   math.MinInt64 >> (64 - bits),
		Max:   math.MaxUint64 >> (64 - bits),
	}

	if signed {
		err.Max = math.MaxInt64 >> (64 - bits)
	}

	return err
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: value %s out of range [%d, %d]", e.Name, e.Value, e.Min, e.Max)
}
