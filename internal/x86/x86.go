// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package x86 contains the x86-64 instruction
// model used by the assembler: registers,
// operand types, encoding rules, the
// instruction catalog, and helpers for
// building machine code.
package x86

import (
	"bytes"
	"fmt"
	"strings"
)

// Code provides helper functionality
// for building a single instruction's
// machine code.
//
// Fields are emitted in the order the
// processor expects them:
//
//	prefix, REX, opcode, ModR/M, SIB,
//	displacement, immediate
type Code struct {
	Prefix          Prefix  // Any legacy prefix byte, or zero.
	REX             REX     // Any REX prefix.
	Opcode          [3]byte // The opcode bytes.
	OpcodeLen       int     // The number of bytes of opcode.
	ModRM           ModRM   // Any ModR/M byte.
	UseModRM        bool    // Encode the ModR/M byte, even if zero.
	SIB             SIB     // Any Scale/Index/Base byte.
	UseSIB          bool    // Encode the SIB byte, even if zero.
	Displacement    [4]byte // Any memory address displacement.
	DisplacementLen int     // The number of bytes of address displacement.
	Immediate       [8]byte // Any immediate value or code offset.
	ImmediateLen    int     // The number of immediate bytes to use.
}

// prefixLen returns the number of bytes
// before the opcode.
func (c *Code) prefixLen() int {
	var n int
	if c.Prefix != 0 {
		n++
	}
	if c.REX != 0 {
		n++
	}

	return n
}

// DisplacementOffset returns the offset
// into the encoded instruction at which
// the displacement starts.
func (c *Code) DisplacementOffset() int {
	n := c.prefixLen() + c.OpcodeLen
	if c.UseModRM {
		n++
	}
	if c.UseSIB {
		n++
	}

	return n
}

// ImmediateOffset returns the offset
// into the encoded instruction at which
// the immediate starts.
func (c *Code) ImmediateOffset() int {
	return c.DisplacementOffset() + c.DisplacementLen
}

// Len returns c's length as a number of
// bytes.
func (c *Code) Len() int {
	return c.ImmediateOffset() + c.ImmediateLen
}

// SetOpcode replaces the opcode bytes.
func (c *Code) SetOpcode(opcode []byte) {
	if len(opcode) == 0 || len(opcode) > len(c.Opcode) {
		panic(fmt.Sprintf("invalid opcode length %d", len(opcode)))
	}

	c.OpcodeLen = copy(c.Opcode[:], opcode)
}

// SetDisplacement stores a little-endian
// displacement of the given size in
// bytes, which must be 1 or 4.
func (c *Code) SetDisplacement(v int32, size int) {
	switch size {
	case 1:
		c.Displacement[0] = byte(int8(v))
	case 4:
		putUint(c.Displacement[:], uint64(uint32(v)), 4)
	default:
		panic(fmt.Sprintf("invalid displacement size %d", size))
	}

	c.DisplacementLen = size
}

// SetImmediate stores a little-endian
// immediate of the given size in bytes.
// Any bits beyond the size are dropped.
func (c *Code) SetImmediate(v uint64, size int) {
	switch size {
	case 1, 2, 4, 8:
	default:
		panic(fmt.Sprintf("invalid immediate size %d", size))
	}

	putUint(c.Immediate[:], v, size)
	c.ImmediateLen = size
}

func putUint(b []byte, v uint64, size int) {
	for i := 0; i < size; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// EncodeTo appends the machine code to
// b.
func (c *Code) EncodeTo(b *bytes.Buffer) {
	if c.Prefix != 0 {
		b.WriteByte(byte(c.Prefix))
	}
	if c.REX != 0 {
		b.WriteByte(byte(c.REX))
	}
	b.Write(c.Opcode[:c.OpcodeLen])
	if c.UseModRM {
		b.WriteByte(byte(c.ModRM))
	}
	if c.UseSIB {
		b.WriteByte(byte(c.SIB))
	}
	b.Write(c.Displacement[:c.DisplacementLen])
	b.Write(c.Immediate[:c.ImmediateLen])
}

// Bytes returns the encoded machine
// code.
func (c *Code) Bytes() []byte {
	var b bytes.Buffer
	b.Grow(c.Len())
	c.EncodeTo(&b)
	return b.Bytes()
}

// String returns a textual description
// of the machine code.
func (c *Code) String() string {
	var parts []string
	if c.Prefix != 0 {
		parts = append(parts, "Prefix: "+c.Prefix.String())
	}
	if c.REX != 0 {
		parts = append(parts, "REX: "+c.REX.String())
	}
	if c.OpcodeLen > 0 {
		parts = append(parts, fmt.Sprintf("Opcode: [% x]", c.Opcode[:c.OpcodeLen]))
	}
	if c.UseModRM {
		parts = append(parts, "ModR/M: "+c.ModRM.String())
	}
	if c.UseSIB {
		parts = append(parts, "SIB: "+c.SIB.String())
	}
	if c.DisplacementLen > 0 {
		parts = append(parts, fmt.Sprintf("Displacement: [% x]", c.Displacement[:c.DisplacementLen]))
	}
	if c.ImmediateLen > 0 {
		parts = append(parts, fmt.Sprintf("Immediate: [% x]", c.Immediate[:c.ImmediateLen]))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// Prefix represents a legacy x86 prefix.
type Prefix byte

const (
	PrefixLock        Prefix = 0xf0
	PrefixRepeatNot   Prefix = 0xf2
	PrefixRepeat      Prefix = 0xf3
	PrefixOperandSize Prefix = 0x66
	PrefixAddressSize Prefix = 0x67
)

func (p Prefix) String() string {
	switch p {
	case PrefixLock:
		return "lock"
	case PrefixRepeatNot:
		return "repnz/repne"
	case PrefixRepeat:
		return "rep/repe/repz"
	case PrefixOperandSize:
		return "data16"
	case PrefixAddressSize:
		return "addr32"
	default:
		return fmt.Sprintf("Prefix(%#02x)", byte(p))
	}
}

// REX provides helper functionality
// for reading and writing a REX
// prefix byte.
type REX byte

// b2i converts a boolean to a REX bit.
func (r *REX) b2i(b bool) REX {
	if b {
		return 1
	}

	return 0
}

// Intel x86 manuals, Volume 2A,
// Section 2.2.1.2, Table 2-4.
//
// 	| 7  6  5  4   3  2  1  0 |
// 	+-------------------------|
// 	| 0  1  0  0   W  R  X  B |

func (r REX) On() bool     { return ((r >> 6) & 1) == 1 }
func (r REX) W() bool      { return ((r >> 3) & 1) == 1 }
func (r REX) R() bool      { return ((r >> 2) & 1) == 1 }
func (r REX) X() bool      { return ((r >> 1) & 1) == 1 }
func (r REX) B() bool      { return ((r >> 0) & 1) == 1 }
func (r *REX) SetOn()      { *r |= (1 << 6) }
func (r *REX) SetW(b bool) { *r = (*r & 0b11110111) | (r.b2i(b) << 3) }
func (r *REX) SetR(b bool) { *r = (*r & 0b11111011) | (r.b2i(b) << 2) }
func (r *REX) SetX(b bool) { *r = (*r & 0b11111101) | (r.b2i(b) << 1) }
func (r *REX) SetB(b bool) { *r = (*r & 0b11111110) | (r.b2i(b) << 0) }

func (r REX) String() string {
	const bits = "0100WRXB"
	out := []byte("0100")
	for i := 4; i < 8; i++ {
		if (r>>(7-i))&1 == 1 {
			out = append(out, bits[i])
		} else {
			out = append(out, '0')
		}
	}

	return string(out)
}

// ModRM provides helper functionality
// for reading and writing a ModR/M
// byte.
type ModRM byte

// Section 2.1.5, table 2.2.
const (
	ModRMmodDereferenceRegister    byte = 0b00
	ModRMmodSmallDisplacedRegister byte = 0b01
	ModRMmodLargeDisplacedRegister byte = 0b10
	ModRMmodRegister               byte = 0b11

	ModRMrmSIB                byte = 0b100
	ModRMrmDisplacementOnly32 byte = 0b101
)

func (m ModRM) Mod() byte      { return byte(m&0b11000000) >> 6 }
func (m ModRM) Reg() byte      { return byte(m&0b00111000) >> 3 }
func (m ModRM) RM() byte       { return byte(m&0b00000111) >> 0 }
func (m *ModRM) SetMod(b byte) { *m = (*m & 0b00111111) | ((ModRM(b) & 0b11) << 6) }
func (m *ModRM) SetReg(b byte) { *m = (*m & 0b11000111) | ((ModRM(b) & 0b111) << 3) }
func (m *ModRM) SetRM(b byte)  { *m = (*m & 0b11111000) | ((ModRM(b) & 0b111) << 0) }

func (m ModRM) String() string {
	return fmt.Sprintf("{Mod: %02b, Reg: %03b, R/M: %03b}", m.Mod(), m.Reg(), m.RM())
}

// SIB provides helper functionality
// for reading and writing a SIB
// byte.
type SIB byte

// Section 2.1.5, table 2.3.
const (
	SIBindexNone        byte = 0b100
	SIBbaseStackPointer byte = 0b100
	SIBbaseNone         byte = 0b101
)

func (s SIB) Scale() byte      { return byte(s&0b11000000) >> 6 }
func (s SIB) Index() byte      { return byte(s&0b00111000) >> 3 }
func (s SIB) Base() byte       { return byte(s&0b00000111) >> 0 }
func (s *SIB) SetScale(b byte) { *s = (*s & 0b00111111) | ((SIB(b) & 0b11) << 6) }
func (s *SIB) SetIndex(b byte) { *s = (*s & 0b11000111) | ((SIB(b) & 0b111) << 3) }
func (s *SIB) SetBase(b byte)  { *s = (*s & 0b11111000) | ((SIB(b) & 0b111) << 0) }

// SetScaleFactor stores the scale
// factor 1, 2, 4, or 8.
func (s *SIB) SetScaleFactor(scale uint8) {
	switch scale {
	case 0, 1:
		s.SetScale(0b00)
	case 2:
		s.SetScale(0b01)
	case 4:
		s.SetScale(0b10)
	case 8:
		s.SetScale(0b11)
	default:
		panic(fmt.Sprintf("invalid SIB scale %d", scale))
	}
}

func (s SIB) String() string {
	return fmt.Sprintf("{Scale: %02b, Index: %03b, Base: %03b}", s.Scale(), s.Index(), s.Base())
}
