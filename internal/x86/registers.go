// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"fmt"
)

// Register contains information about
// an x86-64 general purpose register,
// or the instruction pointer.
type Register struct {
	Name    string
	Type    RegisterType
	Bits    int
	Reg     byte      // The 4-bit encoding of the register.
	Family  *Register // The 64-bit register this is part of, or nil for a 64-bit register.
	Aliases []string
}

func (r *Register) String() string { return r.Name }

func (r *Register) Is8bit() bool  { return r.Bits == 8 }
func (r *Register) Is16bit() bool { return r.Bits == 16 }
func (r *Register) Is32bit() bool { return r.Bits == 32 }
func (r *Register) Is64bit() bool { return r.Bits == 64 }

// Parent returns the 64-bit register
// whose storage r occupies.
func (r *Register) Parent() *Register {
	if r.Family == nil {
		return r
	}

	return r.Family
}

// Doubles returns whether r and other
// refer to overlapping storage, such
// as al and ah, or eax and rax.
func (r *Register) Doubles(other *Register) bool {
	return r.Parent() == other.Parent()
}

// IsHighByte returns whether r is one
// of the legacy high-byte registers,
// which cannot be encoded with any REX
// prefix.
func (r *Register) IsHighByte() bool {
	switch r {
	case AH, CH, DH, BH:
		return true
	}

	return false
}

// NeedsREX returns whether r can only
// be encoded with a REX prefix. This
// is true for SPL, BPL, SIL, DIL, and
// the extended registers R8-R15.
func (r *Register) NeedsREX() bool {
	switch r {
	case SPL, BPL, SIL, DIL:
		return true
	}

	return r.Type == TypeGeneralPurpose && r.Reg > 7
}

// RegCode returns the encoding of the
// register, when used as an operand of
// the given size.
//
// `ext` is the fourth bit of the
// register number, which is stored in
// a REX prefix field.
//
// `code` is the 3-bit identifier for
// the register.
//
// `ok` is false if the register has a
// different size or has no general
// purpose encoding (rip).
func (r *Register) RegCode(bits int) (ext bool, code byte, ok bool) {
	if r.Type != TypeGeneralPurpose || r.Bits != bits {
		return false, 0, false
	}

	return r.Reg > 7, r.Reg & 7, true
}

// MustRegCode is like RegCode, but
// panics if the register cannot be
// used at the given size.
func (r *Register) MustRegCode(bits int) (ext bool, code byte) {
	ext, code, ok := r.RegCode(bits)
	if !ok {
		panic(fmt.Sprintf("register %s used as a %d-bit register", r.Name, bits))
	}

	return ext, code
}

var (
	// 64-bit registers.
	RAX = &Register{Name: "rax", Type: TypeGeneralPurpose, Reg: 0x0, Bits: 64}
	RCX = &Register{Name: "rcx", Type: TypeGeneralPurpose, Reg: 0x1, Bits: 64}
	RDX = &Register{Name: "rdx", Type: TypeGeneralPurpose, Reg: 0x2, Bits: 64}
	RBX = &Register{Name: "rbx", Type: TypeGeneralPurpose, Reg: 0x3, Bits: 64}
	RSP = &Register{Name: "rsp", Type: TypeGeneralPurpose, Reg: 0x4, Bits: 64}
	RBP = &Register{Name: "rbp", Type: TypeGeneralPurpose, Reg: 0x5, Bits: 64}
	RSI = &Register{Name: "rsi", Type: TypeGeneralPurpose, Reg: 0x6, Bits: 64}
	RDI = &Register{Name: "rdi", Type: TypeGeneralPurpose, Reg: 0x7, Bits: 64}
	R8  = &Register{Name: "r8", Type: TypeGeneralPurpose, Reg: 0x8, Bits: 64}
	R9  = &Register{Name: "r9", Type: TypeGeneralPurpose, Reg: 0x9, Bits: 64}
	R10 = &Register{Name: "r10", Type: TypeGeneralPurpose, Reg: 0xa, Bits: 64}
	R11 = &Register{Name: "r11", Type: TypeGeneralPurpose, Reg: 0xb, Bits: 64}
	R12 = &Register{Name: "r12", Type: TypeGeneralPurpose, Reg: 0xc, Bits: 64}
	R13 = &Register{Name: "r13", Type: TypeGeneralPurpose, Reg: 0xd, Bits: 64}
	R14 = &Register{Name: "r14", Type: TypeGeneralPurpose, Reg: 0xe, Bits: 64}
	R15 = &Register{Name: "r15", Type: TypeGeneralPurpose, Reg: 0xf, Bits: 64}

	// 32-bit registers.
	EAX  = &Register{Name: "eax", Type: TypeGeneralPurpose, Reg: 0x0, Bits: 32, Family: RAX}
	ECX  = &Register{Name: "ecx", Type: TypeGeneralPurpose, Reg: 0x1, Bits: 32, Family: RCX}
	EDX  = &Register{Name: "edx", Type: TypeGeneralPurpose, Reg: 0x2, Bits: 32, Family: RDX}
	EBX  = &Register{Name: "ebx", Type: TypeGeneralPurpose, Reg: 0x3, Bits: 32, Family: RBX}
	ESP  = &Register{Name: "esp", Type: TypeGeneralPurpose, Reg: 0x4, Bits: 32, Family: RSP}
	EBP  = &Register{Name: "ebp", Type: TypeGeneralPurpose, Reg: 0x5, Bits: 32, Family: RBP}
	ESI  = &Register{Name: "esi", Type: TypeGeneralPurpose, Reg: 0x6, Bits: 32, Family: RSI}
	EDI  = &Register{Name: "edi", Type: TypeGeneralPurpose, Reg: 0x7, Bits: 32, Family: RDI}
	R8D  = &Register{Name: "r8d", Type: TypeGeneralPurpose, Reg: 0x8, Bits: 32, Family: R8}
	R9D  = &Register{Name: "r9d", Type: TypeGeneralPurpose, Reg: 0x9, Bits: 32, Family: R9}
	R10D = &Register{Name: "r10d", Type: TypeGeneralPurpose, Reg: 0xa, Bits: 32, Family: R10}
	R11D = &Register{Name: "r11d", Type: TypeGeneralPurpose, Reg: 0xb, Bits: 32, Family: R11}
	R12D = &Register{Name: "r12d", Type: TypeGeneralPurpose, Reg: 0xc, Bits: 32, Family: R12}
	R13D = &Register{Name: "r13d", Type: TypeGeneralPurpose, Reg: 0xd, Bits: 32, Family: R13}
	R14D = &Register{Name: "r14d", Type: TypeGeneralPurpose, Reg: 0xe, Bits: 32, Family: R14}
	R15D = &Register{Name: "r15d", Type: TypeGeneralPurpose, Reg: 0xf, Bits: 32, Family: R15}

	// 16-bit registers.
	AX   = &Register{Name: "ax", Type: TypeGeneralPurpose, Reg: 0x0, Bits: 16, Family: RAX}
	CX   = &Register{Name: "cx", Type: TypeGeneralPurpose, Reg: 0x1, Bits: 16, Family: RCX}
	DX   = &Register{Name: "dx", Type: TypeGeneralPurpose, Reg: 0x2, Bits: 16, Family: RDX}
	BX   = &Register{Name: "bx", Type: TypeGeneralPurpose, Reg: 0x3, Bits: 16, Family: RBX}
	SP   = &Register{Name: "sp", Type: TypeGeneralPurpose, Reg: 0x4, Bits: 16, Family: RSP}
	BP   = &Register{Name: "bp", Type: TypeGeneralPurpose, Reg: 0x5, Bits: 16, Family: RBP}
	SI   = &Register{Name: "si", Type: TypeGeneralPurpose, Reg: 0x6, Bits: 16, Family: RSI}
	DI   = &Register{Name: "di", Type: TypeGeneralPurpose, Reg: 0x7, Bits: 16, Family: RDI}
	R8W  = &Register{Name: "r8w", Type: TypeGeneralPurpose, Reg: 0x8, Bits: 16, Family: R8}
	R9W  = &Register{Name: "r9w", Type: TypeGeneralPurpose, Reg: 0x9, Bits: 16, Family: R9}
	R10W = &Register{Name: "r10w", Type: TypeGeneralPurpose, Reg: 0xa, Bits: 16, Family: R10}
	R11W = &Register{Name: "r11w", Type: TypeGeneralPurpose, Reg: 0xb, Bits: 16, Family: R11}
	R12W = &Register{Name: "r12w", Type: TypeGeneralPurpose, Reg: 0xc, Bits: 16, Family: R12}
	R13W = &Register{Name: "r13w", Type: TypeGeneralPurpose, Reg: 0xd, Bits: 16, Family: R13}
	R14W = &Register{Name: "r14w", Type: TypeGeneralPurpose, Reg: 0xe, Bits: 16, Family: R14}
	R15W = &Register{Name: "r15w", Type: TypeGeneralPurpose, Reg: 0xf, Bits: 16, Family: R15}

	// 8-bit registers.
	AL   = &Register{Name: "al", Type: TypeGeneralPurpose, Reg: 0x0, Bits: 8, Family: RAX}
	CL   = &Register{Name: "cl", Type: TypeGeneralPurpose, Reg: 0x1, Bits: 8, Family: RCX}
	DL   = &Register{Name: "dl", Type: TypeGeneralPurpose, Reg: 0x2, Bits: 8, Family: RDX}
	BL   = &Register{Name: "bl", Type: TypeGeneralPurpose, Reg: 0x3, Bits: 8, Family: RBX}
	AH   = &Register{Name: "ah", Type: TypeGeneralPurpose, Reg: 0x4, Bits: 8, Family: RAX}
	CH   = &Register{Name: "ch", Type: TypeGeneralPurpose, Reg: 0x5, Bits: 8, Family: RCX}
	DH   = &Register{Name: "dh", Type: TypeGeneralPurpose, Reg: 0x6, Bits: 8, Family: RDX}
	BH   = &Register{Name: "bh", Type: TypeGeneralPurpose, Reg: 0x7, Bits: 8, Family: RBX}
	SPL  = &Register{Name: "spl", Type: TypeGeneralPurpose, Reg: 0x4, Bits: 8, Family: RSP}
	BPL  = &Register{Name: "bpl", Type: TypeGeneralPurpose, Reg: 0x5, Bits: 8, Family: RBP}
	SIL  = &Register{Name: "sil", Type: TypeGeneralPurpose, Reg: 0x6, Bits: 8, Family: RSI}
	DIL  = &Register{Name: "dil", Type: TypeGeneralPurpose, Reg: 0x7, Bits: 8, Family: RDI}
	R8B  = &Register{Name: "r8b", Type: TypeGeneralPurpose, Reg: 0x8, Bits: 8, Family: R8, Aliases: []string{"r8l"}}
	R9B  = &Register{Name: "r9b", Type: TypeGeneralPurpose, Reg: 0x9, Bits: 8, Family: R9, Aliases: []string{"r9l"}}
	R10B = &Register{Name: "r10b", Type: TypeGeneralPurpose, Reg: 0xa, Bits: 8, Family: R10, Aliases: []string{"r10l"}}
	R11B = &Register{Name: "r11b", Type: TypeGeneralPurpose, Reg: 0xb, Bits: 8, Family: R11, Aliases: []string{"r11l"}}
	R12B = &Register{Name: "r12b", Type: TypeGeneralPurpose, Reg: 0xc, Bits: 8, Family: R12, Aliases: []string{"r12l"}}
	R13B = &Register{Name: "r13b", Type: TypeGeneralPurpose, Reg: 0xd, Bits: 8, Family: R13, Aliases: []string{"r13l"}}
	R14B = &Register{Name: "r14b", Type: TypeGeneralPurpose, Reg: 0xe, Bits: 8, Family: R14, Aliases: []string{"r14l"}}
	R15B = &Register{Name: "r15b", Type: TypeGeneralPurpose, Reg: 0xf, Bits: 8, Family: R15, Aliases: []string{"r15l"}}

	// Instruction pointer.
	RIP = &Register{Name: "rip", Type: TypeInstructionPointer, Bits: 64}
)

var Registers = []*Register{
	RAX, RCX, RDX, RBX, RSP, RBP, RSI, RDI, R8, R9, R10, R11, R12, R13, R14, R15,
	EAX, ECX, EDX, EBX, ESP, EBP, ESI, EDI, R8D, R9D, R10D, R11D, R12D, R13D, R14D, R15D,
	AX, CX, DX, BX, SP, BP, SI, DI, R8W, R9W, R10W, R11W, R12W, R13W, R14W, R15W,
	AL, CL, DL, BL, AH, CH, DH, BH, SPL, BPL, SIL, DIL, R8B, R9B, R10B, R11B, R12B, R13B, R14B, R15B,
	RIP,
}

// RegistersByName maps register names
// and aliases to registers.
var RegistersByName = make(map[string]*Register)

func init() {
	for _, reg := range Registers {
		RegistersByName[reg.Name] = reg
		for _, alias := range reg.Aliases {
			RegistersByName[alias] = reg
		}
	}
}

// ParseRegister returns the register
// with the given name. Names are case
// sensitive.
func ParseRegister(name string) (*Register, error) {
	reg, ok := RegistersByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown register %q", name)
	}

	return reg, nil
}

// RegisterType categorises an x86
// register.
type RegisterType uint8

const (
	_ RegisterType = iota
	TypeGeneralPurpose
	TypeInstructionPointer
)

func (t RegisterType) String() string {
	switch t {
	case TypeGeneralPurpose:
		return "general purpose register"
	case TypeInstructionPointer:
		return "instruction pointer"
	default:
		return fmt.Sprintf("RegisterType(%d)", t)
	}
}
