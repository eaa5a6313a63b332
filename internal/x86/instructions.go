// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"bufio"
	"fmt"
	"strings"
)

// MaxOperands is the largest number of
// operands an instruction form takes.
const MaxOperands = 2

// Expression is the assembly syntax of
// an instruction form: its mnemonic and
// the types of its operands.
type Expression struct {
	Mnemonic string // In upper case.
	Operands []OperandType
}

func (x Expression) String() string {
	parts := []string{x.Mnemonic}
	for _, op := range x.Operands {
		parts = append(parts, op.String())
	}

	return strings.Join(parts, " ")
}

// Instruction is a single instruction
// form: the syntax it matches and how
// it is encoded.
type Instruction struct {
	Syntax string // The catalog entry.
	Expression
	Encoding *Encoding
}

// ParseInstruction parses a catalog entry
// of the form "<expression>, <encoding>",
// such as "ADC reg/mem8 imm8, 80 /2 ib".
func ParseInstruction(s string) (*Instruction, error) {
	expr, enc, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("invalid instruction %q: missing encoding", s)
	}

	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return nil, fmt.Errorf("invalid instruction %q: missing mnemonic", s)
	}

	inst := &Instruction{Syntax: s}
	inst.Mnemonic = fields[0]
	if !IsIdentifier(inst.Mnemonic) || strings.ToUpper(inst.Mnemonic) != inst.Mnemonic {
		return nil, fmt.Errorf("invalid instruction %q: bad mnemonic %q", s, inst.Mnemonic)
	}

	if len(fields[1:]) > MaxOperands {
		return nil, fmt.Errorf("invalid instruction %q: too many operands", s)
	}

	for _, field := range fields[1:] {
		typ, ok := OperandTypes[field]
		if !ok {
			return nil, fmt.Errorf("invalid instruction %q: unknown operand type %q", s, field)
		}

		inst.Operands = append(inst.Operands, typ)
	}

	var err error
	inst.Encoding, err = ParseEncoding(strings.TrimSpace(enc))
	if err != nil {
		return nil, fmt.Errorf("invalid instruction %q: %v", s, err)
	}

	if err := inst.check(); err != nil {
		return nil, fmt.Errorf("invalid instruction %q: %v", s, err)
	}

	return inst, nil
}

// check ensures that every operand
// has a place in the encoding, and
// vice versa.
func (inst *Instruction) check() error {
	var regs, rms, values []OperandType
	for _, op := range inst.Operands {
		switch {
		case op.IsRegister():
			regs = append(regs, op)
		case op.IsRM():
			rms = append(rms, op)
		case op.IsImmediate(), op.IsRelative():
			values = append(values, op)
		}
	}

	enc := inst.Encoding
	switch {
	case enc.ModRM == ModRMRegister && (len(regs) != 1 || len(rms) != 1):
		return fmt.Errorf("/r needs one register and one register or memory operand")
	case enc.ModRM == ModRMDigit && (len(regs) != 0 || len(rms) != 1):
		return fmt.Errorf("/%d needs one register or memory operand", enc.ModRMDigit)
	case enc.ModRM == ModRMNone && len(rms) != 0:
		return fmt.Errorf("register or memory operand with no ModR/M byte")
	case enc.RegisterModifier != 0 && (len(regs) != 1 || regs[0].Bits() != enc.RegisterModifier):
		return fmt.Errorf("+r%s needs one %d-bit register operand", sizeName(enc.RegisterModifier), enc.RegisterModifier)
	case enc.ModRM == ModRMNone && enc.RegisterModifier == 0 && len(regs) != 0:
		return fmt.Errorf("register operand with no ModR/M byte or register modifier")
	case enc.ImmediateBits == 0 && len(values) != 0:
		return fmt.Errorf("immediate operand with no immediate encoding")
	case enc.ImmediateBits != 0 && len(values) != 1:
		return fmt.Errorf("immediate encoding needs one immediate operand")
	case enc.ImmediateBits != 0 && values[0].ValueBits() != enc.ImmediateBits:
		return fmt.Errorf("operand %s does not match %d-bit immediate", values[0], enc.ImmediateBits)
	case enc.ImmediateBits != 0 && values[0].IsRelative() != enc.CodeOffset:
		return fmt.Errorf("code offsets must use rel operands and cb, cw, cd, or cq")
	}

	return nil
}

// OperandBits returns the operand size
// of the instruction form, which is the
// largest size of its register and
// register or memory operands. If none
// of its operands has a size, an explicit
// default operand size is used, if any.
func (inst *Instruction) OperandBits() int {
	var bits int
	for _, op := range inst.Operands {
		bits = max(bits, op.Bits())
	}

	if bits == 0 && inst.Encoding.Declared {
		bits = inst.Encoding.DefaultBits
	}

	return bits
}

// Match returns whether the instruction
// form accepts the given mnemonic and
// operands. The mnemonic is not case
// sensitive.
func (inst *Instruction) Match(mnemonic string, ops []*Operand) bool {
	if !strings.EqualFold(inst.Mnemonic, mnemonic) || len(ops) != len(inst.Operands) {
		return false
	}

	bits := inst.OperandBits()
	for i, typ := range inst.Operands {
		if !typ.Match(ops[i], bits) {
			return false
		}
	}

	return true
}

func (inst *Instruction) String() string {
	return inst.Expression.String() + ", " + inst.Encoding.String()
}

// Catalog is an ordered set of instruction
// forms.
type Catalog []*Instruction

// ParseCatalog parses one instruction form
// per line. Blank lines and lines starting
// with // are ignored.
func ParseCatalog(text string) (Catalog, error) {
	var c Catalog
	s := bufio.NewScanner(strings.NewReader(text))
	for line := 1; s.Scan(); line++ {
		entry := strings.TrimSpace(s.Text())
		if entry == "" || strings.HasPrefix(entry, "//") {
			continue
		}

		inst, err := ParseInstruction(entry)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}

		c = append(c, inst)
	}

	if err := s.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

// Lookup returns the first instruction
// form that matches the mnemonic and
// operands, or nil.
func (c Catalog) Lookup(mnemonic string, ops []*Operand) *Instruction {
	for _, inst := range c {
		if inst.Match(mnemonic, ops) {
			return inst
		}
	}

	return nil
}

// HasMnemonic returns whether any form
// has the given mnemonic.
func (c Catalog) HasMnemonic(mnemonic string) bool {
	for _, inst := range c {
		if strings.EqualFold(inst.Mnemonic, mnemonic) {
			return true
		}
	}

	return false
}
