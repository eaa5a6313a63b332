// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ModRMRule describes how an instruction
// form uses the ModR/M byte.
type ModRMRule uint8

const (
	ModRMNone     ModRMRule = iota // No ModR/M byte.
	ModRMRegister                  // /r: reg holds a register operand.
	ModRMDigit                     // /0 to /7: reg holds an opcode extension.
)

// Encoding includes the textual description
// of an instruction form's encoding, plus a
// structured representation of the same
// information.
type Encoding struct {
	// The textual representation.
	Syntax string

	// Opcode data.
	Opcode           []byte // One to three opcode bytes.
	RegisterModifier int    // The size of the register added to the last opcode byte, or zero.

	// ModR/M byte.
	ModRM      ModRMRule
	ModRMDigit byte // The reg field for ModRMDigit.

	// Immediates and code offsets.
	ImmediateBits int  // The immediate size in bits, or zero.
	CodeOffset    bool // Whether the immediate is a code offset (cb to cq).

	// Operand size.
	DefaultBits int  // The default operand size in bits.
	Declared    bool // Whether DefaultBits was given explicitly.
}

// ParseEncoding parses the encoding half
// of a catalog entry, such as "0F AF /r"
// or "B8 +rd id".
//
// Each clause is one of:
//
//   - an opcode byte, as two upper case hex digits
//   - /r: the ModR/M reg field holds a register operand
//   - /0 to /7: the ModR/M reg field holds the digit
//   - ib, iw, id, iq: an immediate of 1, 2, 4, or 8 bytes
//   - cb, cw, cd, cq: a code offset of 1, 2, 4, or 8 bytes
//   - +rb, +rw, +rd, +rq: a register added to the last opcode
//     byte, either alone or as a suffix to the opcode byte
//   - ob, ow, od, oq: the default operand size, which is 32
//     bits if not given
func ParseEncoding(s string) (*Encoding, error) {
	e := &Encoding{
		Syntax:      s,
		DefaultBits: 32,
	}

	clauses := strings.Fields(s)
	if len(clauses) == 0 {
		return nil, fmt.Errorf("invalid encoding %q: no opcode", s)
	}

	for _, clause := range clauses {
		if opcode, reg, ok := strings.Cut(clause, "+"); ok && opcode != "" {
			// Opcode with a register suffix.
			if err := e.addOpcode(opcode); err != nil {
				return nil, fmt.Errorf("invalid encoding clause %s: %v", clause, err)
			}

			clause = "+" + reg
		}

		switch clause {
		case "/r":
			if e.ModRM != ModRMNone {
				return nil, fmt.Errorf("invalid encoding clause %s: multiple ModR/M clauses", clause)
			}

			e.ModRM = ModRMRegister
		case "/0", "/1", "/2", "/3", "/4", "/5", "/6", "/7":
			if e.ModRM != ModRMNone {
				return nil, fmt.Errorf("invalid encoding clause %s: multiple ModR/M clauses", clause)
			}

			e.ModRM = ModRMDigit
			e.ModRMDigit = clause[1] - '0'
		case "ib", "iw", "id", "iq", "cb", "cw", "cd", "cq":
			if e.ImmediateBits != 0 {
				return nil, fmt.Errorf("invalid encoding clause %s: multiple immediates", clause)
			}

			e.ImmediateBits = sizeClause(clause[1])
			e.CodeOffset = clause[0] == 'c'
		case "+rb", "+rw", "+rd", "+rq":
			if e.RegisterModifier != 0 {
				return nil, fmt.Errorf("invalid encoding clause %s: multiple register modifiers", clause)
			}

			e.RegisterModifier = sizeClause(clause[2])
		case "ob", "ow", "od", "oq":
			if e.Declared {
				return nil, fmt.Errorf("invalid encoding clause %s: multiple operand sizes", clause)
			}

			e.DefaultBits = sizeClause(clause[1])
			e.Declared = true
		default:
			if err := e.addOpcode(clause); err != nil {
				return nil, fmt.Errorf("invalid encoding clause %s: %v", clause, err)
			}
		}
	}

	switch {
	case len(e.Opcode) == 0:
		return nil, fmt.Errorf("invalid encoding %q: no opcode", s)
	case len(e.Opcode) > 3:
		return nil, fmt.Errorf("invalid encoding %q: %d opcode bytes", s, len(e.Opcode))
	case e.RegisterModifier != 0 && e.ModRM != ModRMNone:
		return nil, fmt.Errorf("invalid encoding %q: register modifier with ModR/M byte", s)
	case e.DefaultBits < 32:
		// In 64-bit mode the default operand
		// size is 32 or 64 bits.
		return nil, fmt.Errorf("invalid encoding %q: default operand size %d is smaller than 32 bits", s, e.DefaultBits)
	}

	return e, nil
}

func (e *Encoding) addOpcode(clause string) error {
	if len(clause) != 2 || strings.ToUpper(clause) != clause {
		return fmt.Errorf("opcode bytes must be two upper case hex digits")
	}

	b, err := strconv.ParseUint(clause, 16, 8)
	if err != nil {
		return err
	}

	if e.ModRM != ModRMNone || e.ImmediateBits != 0 || e.RegisterModifier != 0 {
		return fmt.Errorf("opcode byte after operand clauses")
	}

	e.Opcode = append(e.Opcode, byte(b))
	return nil
}

func sizeClause(b byte) int {
	switch b {
	case 'b':
		return 8
	case 'w':
		return 16
	case 'd':
		return 32
	case 'q':
		return 64
	}

	panic(fmt.Sprintf("invalid size clause %q", b))
}

func (e *Encoding) String() string {
	var buf bytes.Buffer
	for i, b := range e.Opcode {
		if i > 0 {
			buf.WriteByte(' ')
		}

		fmt.Fprintf(&buf, "%02X", b)
	}

	if e.RegisterModifier != 0 {
		buf.WriteString(" +r" + sizeName(e.RegisterModifier))
	}

	switch e.ModRM {
	case ModRMRegister:
		buf.WriteString(" /r")
	case ModRMDigit:
		fmt.Fprintf(&buf, " /%d", e.ModRMDigit)
	}

	if e.ImmediateBits != 0 {
		if e.CodeOffset {
			buf.WriteString(" c" + sizeName(e.ImmediateBits))
		} else {
			buf.WriteString(" i" + sizeName(e.ImmediateBits))
		}
	}

	if e.Declared {
		buf.WriteString(" o" + sizeName(e.DefaultBits))
	}

	return buf.String()
}

func sizeName(bits int) string {
	switch bits {
	case 8:
		return "b"
	case 16:
		return "w"
	case 32:
		return "d"
	case 64:
		return "q"
	}

	panic(fmt.Sprintf("invalid size %d", bits))
}
