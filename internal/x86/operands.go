// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"fmt"
	"strings"
)

// OperandType categories a parameter
// to an x86 instruction form.
type OperandType uint8

const (
	_ OperandType = iota

	// Fixed registers.
	OperandAL
	OperandAX
	OperandEAX
	OperandRAX
	OperandCL
	OperandDX // Port number, which does not affect the operand size.

	// General purpose registers.
	OperandReg8
	OperandReg16
	OperandReg32
	OperandReg64

	// Registers or memory.
	OperandRM8
	OperandRM16
	OperandRM32
	OperandRM64

	// Memory of any size.
	OperandMem

	// Immediate values.
	OperandImm8
	OperandImm16
	OperandImm32
	OperandImm64

	// Code offsets relative to the next
	// instruction.
	OperandRel8
	OperandRel16
	OperandRel32
)

// OperandTypes maps the catalog syntax
// for each operand type to the type.
var OperandTypes = map[string]OperandType{
	"AL":        OperandAL,
	"AX":        OperandAX,
	"EAX":       OperandEAX,
	"RAX":       OperandRAX,
	"CL":        OperandCL,
	"DX":        OperandDX,
	"reg8":      OperandReg8,
	"reg16":     OperandReg16,
	"reg32":     OperandReg32,
	"reg64":     OperandReg64,
	"reg/mem8":  OperandRM8,
	"reg/mem16": OperandRM16,
	"reg/mem32": OperandRM32,
	"reg/mem64": OperandRM64,
	"mem":       OperandMem,
	"imm8":      OperandImm8,
	"imm16":     OperandImm16,
	"imm32":     OperandImm32,
	"imm64":     OperandImm64,
	"rel8off":   OperandRel8,
	"rel16off":  OperandRel16,
	"rel32off":  OperandRel32,
}

func (t OperandType) String() string {
	for s, typ := range OperandTypes {
		if typ == t {
			return s
		}
	}

	return fmt.Sprintf("OperandType(%d)", t)
}

// Bits returns the operand size implied
// by the operand type, or zero if the
// type does not determine the size of
// the operation.
func (t OperandType) Bits() int {
	switch t {
	case OperandAL, OperandCL, OperandReg8, OperandRM8:
		return 8
	case OperandAX, OperandReg16, OperandRM16:
		return 16
	case OperandEAX, OperandReg32, OperandRM32:
		return 32
	case OperandRAX, OperandReg64, OperandRM64:
		return 64
	}

	return 0
}

// ValueBits returns the size of an
// immediate or code offset, or zero
// for other types.
func (t OperandType) ValueBits() int {
	switch t {
	case OperandImm8, OperandRel8:
		return 8
	case OperandImm16, OperandRel16:
		return 16
	case OperandImm32, OperandRel32:
		return 32
	case OperandImm64:
		return 64
	}

	return 0
}

// FixedRegister returns the register
// that must be used for the operand,
// or nil.
func (t OperandType) FixedRegister() *Register {
	switch t {
	case OperandAL:
		return AL
	case OperandAX:
		return AX
	case OperandEAX:
		return EAX
	case OperandRAX:
		return RAX
	case OperandCL:
		return CL
	case OperandDX:
		return DX
	}

	return nil
}

// IsRegister returns whether the type
// is a general purpose register that
// is encoded in the instruction.
func (t OperandType) IsRegister() bool {
	return OperandReg8 <= t && t <= OperandReg64
}

// IsRM returns whether the type is
// encoded in the ModR/M r/m field.
func (t OperandType) IsRM() bool {
	return OperandRM8 <= t && t <= OperandMem
}

// IsImmediate returns whether the type
// is an immediate value.
func (t OperandType) IsImmediate() bool {
	return OperandImm8 <= t && t <= OperandImm64
}

// IsRelative returns whether the type
// is a relative code offset.
func (t OperandType) IsRelative() bool {
	return OperandRel8 <= t && t <= OperandRel32
}

// Match returns whether the operand
// satisfies the type. operandBits is
// the operand size of the instruction
// form, which determines whether a
// smaller immediate is sign-extended.
func (t OperandType) Match(op *Operand, operandBits int) bool {
	switch {
	case t.FixedRegister() != nil:
		return op.Register == t.FixedRegister()
	case t.IsRegister():
		return op.Register != nil && op.Register.Type == TypeGeneralPurpose && op.Register.Bits == t.Bits()
	case t == OperandMem:
		return op.Memory != nil && op.Memory.Check() == nil
	case t.IsRM():
		if op.Register != nil {
			return op.Register.Type == TypeGeneralPurpose && op.Register.Bits == t.Bits()
		}

		return op.Memory != nil && (op.Memory.Bits == 0 || op.Memory.Bits == t.Bits()) && op.Memory.Check() == nil
	case t.IsImmediate():
		bits := t.ValueBits()
		if op.Label != "" {
			// A label's value is unknown until it
			// is located, so it is not matched to
			// a sign-extended imm8.
			return bits >= min(operandBits, 32)
		}

		if !op.IsInteger {
			return false
		}

		if bits < operandBits {
			return op.Integer.FitsSigned(bits)
		}

		return op.Integer.Fits(bits)
	case t.IsRelative():
		if op.Label != "" {
			return true
		}

		return op.IsInteger && op.Integer.FitsSigned(t.ValueBits())
	}

	return false
}

// Operand is a parsed instruction
// operand. Exactly one of Register,
// Memory, Integer, or Label is set.
type Operand struct {
	Text      string
	Register  *Register
	Memory    *Memory
	Integer   Integer
	IsInteger bool
	Label     string
}

// ParseOperand classifies the text of
// a single operand.
func ParseOperand(s string) (*Operand, error) {
	s = strings.TrimSpace(s)
	op := &Operand{Text: s}
	if reg, ok := RegistersByName[s]; ok {
		op.Register = reg
		return op, nil
	}

	if strings.ContainsAny(s, "[]") {
		mem, err := ParseMemory(s)
		if err != nil {
			return nil, err
		}

		op.Memory = mem
		return op, nil
	}

	if v, ok := ParseInteger(s); ok {
		op.Integer = v
		op.IsInteger = true
		return op, nil
	}

	if IsIdentifier(s) {
		op.Label = s
		return op, nil
	}

	return nil, fmt.Errorf("invalid operand %q", s)
}

func (op *Operand) String() string {
	return op.Text
}
