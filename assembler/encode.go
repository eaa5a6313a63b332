// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package assembler

import (
	"fmt"
	"math"

	"firefly-os.dev/tools/asmacro/internal/x86"
)

// Encode follows the rules in the x86-64 manual, volume 2A,
// chapters 2 and 3, to encode an instruction.
//
// The operands must match the instruction form.
// Any label references, in code offsets, immediates,
// or memory displacements, are returned as
// locations, with offsets relative to the start of
// the instruction. Once located, each holds the
// label's offset from the end of the instruction.
//
// Encode panics if the instruction form and its
// operands are inconsistent, which indicates an
// error in the catalog.
func Encode(inst *x86.Instruction, ops []*x86.Operand) (*x86.Code, []Location, error) {
	if len(ops) != len(inst.Operands) {
		panic(fmt.Sprintf("%s: got %d operands, want %d", inst.Syntax, len(ops), len(inst.Operands)))
	}

	code := new(x86.Code)
	enc := inst.Encoding
	bits := inst.OperandBits()

	// The operand size override selects
	// 16-bit operands.
	if bits == 16 {
		code.Prefix = x86.PrefixOperandSize
	}

	code.REX.SetW(bits > enc.DefaultBits)
	code.SetOpcode(enc.Opcode)

	var (
		needREX   bool   // Whether a register can only be encoded with REX.
		highByte  string // Any register that cannot be encoded with REX.
		dispLabel string
		immLabel  string
		usedReg   bool
		usedRM    bool
		usedValue bool
	)

	checkRegister := func(reg *x86.Register) {
		if reg.NeedsREX() {
			needREX = true
		}
		if reg.IsHighByte() {
			highByte = reg.Name
		}
	}

	for i, typ := range inst.Operands {
		op := ops[i]
		switch {
		case typ.FixedRegister() != nil:
			// Implied by the opcode.
			if op.Register != typ.FixedRegister() {
				panic(fmt.Sprintf("%s: operand %d: got %v, want %s", inst.Syntax, i+1, op, typ.FixedRegister()))
			}
		case typ.IsRegister():
			if op.Register == nil || usedReg {
				panic(fmt.Sprintf("%s: operand %d: unexpected register operand %v", inst.Syntax, i+1, op))
			}

			usedReg = true
			checkRegister(op.Register)
			ext, reg := op.Register.MustRegCode(typ.Bits())
			if enc.RegisterModifier != 0 {
				// The register is added to the
				// final opcode byte and extended
				// by REX.B.
				code.Opcode[code.OpcodeLen-1] += reg
				code.REX.SetB(ext)
			} else {
				code.ModRM.SetReg(reg)
				code.REX.SetR(ext)
			}
		case typ.IsRM():
			if usedRM || enc.ModRM == x86.ModRMNone {
				panic(fmt.Sprintf("%s: operand %d: unexpected register or memory operand %v", inst.Syntax, i+1, op))
			}

			usedRM = true
			switch {
			case op.Register != nil:
				checkRegister(op.Register)
				ext, rm := op.Register.MustRegCode(typ.Bits())
				code.ModRM.SetMod(x86.ModRMmodRegister)
				code.ModRM.SetRM(rm)
				code.REX.SetB(ext)
			case op.Memory != nil:
				if err := op.Memory.Check(); err != nil {
					return nil, nil, err
				}

				encodeMemory(code, op.Memory)
				dispLabel = op.Memory.Label
			default:
				panic(fmt.Sprintf("%s: operand %d: got %v, want register or memory", inst.Syntax, i+1, op))
			}
		case typ.IsImmediate(), typ.IsRelative():
			if usedValue || enc.ImmediateBits != typ.ValueBits() {
				panic(fmt.Sprintf("%s: operand %d: unexpected value %v", inst.Syntax, i+1, op))
			}

			usedValue = true
			size := typ.ValueBits() / 8
			switch {
			case op.Label != "":
				code.SetImmediate(0, size)
				immLabel = op.Label
			case op.IsInteger:
				code.SetImmediate(op.Integer.Uint64(), size)
			default:
				panic(fmt.Sprintf("%s: operand %d: got %v, want value", inst.Syntax, i+1, op))
			}
		default:
			panic(fmt.Sprintf("%s: operand %d: unsupported operand type %s", inst.Syntax, i+1, typ))
		}
	}

	switch enc.ModRM {
	case x86.ModRMRegister:
		if !usedReg || !usedRM {
			panic(fmt.Sprintf("%s: /r without a register and register or memory operand", inst.Syntax))
		}
	case x86.ModRMDigit:
		if !usedRM {
			panic(fmt.Sprintf("%s: /%d without a register or memory operand", inst.Syntax, enc.ModRMDigit))
		}

		code.ModRM.SetReg(enc.ModRMDigit)
	}

	code.UseModRM = enc.ModRM != x86.ModRMNone

	// An all-zero REX prefix is only
	// emitted when a register needs it.
	if code.REX != 0 || needREX {
		code.REX.SetOn()
	}

	if code.REX != 0 && highByte != "" {
		return nil, nil, fmt.Errorf("register %s cannot be used with a REX prefix", highByte)
	}

	// Label references are relative to
	// the end of the instruction.
	var locs []Location
	if dispLabel != "" {
		locs = append(locs, Location{Label: dispLabel, Offset: code.DisplacementOffset(), Size: code.DisplacementLen})
	}
	if immLabel != "" {
		locs = append(locs, Location{Label: immLabel, Offset: code.ImmediateOffset(), Size: code.ImmediateLen})
	}
	for i := range locs {
		locs[i].RelBase = code.Len()
	}

	return code, locs, nil
}

// encodeMemory follows the rules in the x86-64 manual,
// volume 2A, chapter 2, to encode a memory reference.
// The memory reference must already have been checked.
//
// A label displacement always uses 32 bits, which are
// left as zero.
func encodeMemory(code *x86.Code, m *x86.Memory) {
	// See https://blog.yossarian.net/2020/06/13/How-x86-addresses-memory
	displ := int32(m.Displacement)
	if m.Label != "" {
		displ = 0
	}

	if m.Base == x86.RIP {
		// RIP-relative addressing always
		// has a 32-bit displacement.
		code.ModRM.SetMod(x86.ModRMmodDereferenceRegister)
		code.ModRM.SetRM(x86.ModRMrmDisplacementOnly32)
		code.SetDisplacement(displ, 4)
		return
	}

	base := x86.SIBbaseNone
	if m.Base != nil {
		var rexB bool
		rexB, base = m.Base.MustRegCode(64)
		code.REX.SetB(rexB)
	}

	// Without a base, rm 101 would mean RIP,
	// so absolute addresses go in the SIB
	// byte. A base of rsp or r12 also has
	// to go in the SIB byte.
	if m.Index != nil || m.Base == nil || base == x86.SIBbaseStackPointer {
		code.UseSIB = true
		code.ModRM.SetRM(x86.ModRMrmSIB)
		code.SIB.SetBase(base)
		if m.Index != nil {
			rexX, index := m.Index.MustRegCode(64)
			code.REX.SetX(rexX)
			code.SIB.SetIndex(index)
			code.SIB.SetScaleFactor(m.Scale)
		} else {
			code.SIB.SetIndex(x86.SIBindexNone)
		}
	} else {
		code.ModRM.SetRM(base)
	}

	switch {
	case m.Base == nil:
		// No base means a 32-bit displacement
		// with mod 00.
		code.ModRM.SetMod(x86.ModRMmodDereferenceRegister)
		code.SetDisplacement(displ, 4)
	case m.Label != "":
		code.ModRM.SetMod(x86.ModRMmodLargeDisplacedRegister)
		code.SetDisplacement(displ, 4)
	case displ == 0 && base != x86.ModRMrmDisplacementOnly32:
		// rbp and r13 always need a
		// displacement.
		code.ModRM.SetMod(x86.ModRMmodDereferenceRegister)
	case math.MinInt8 <= displ && displ <= math.MaxInt8:
		code.ModRM.SetMod(x86.ModRMmodSmallDisplacedRegister)
		code.SetDisplacement(displ, 1)
	default:
		code.ModRM.SetMod(x86.ModRMmodLargeDisplacedRegister)
		code.SetDisplacement(displ, 4)
	}
}
