// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseInstruction(t *testing.T) {
	tests := []struct {
		Text string
		Want *Instruction
	}{
		{
			Text: "ADC reg/mem8 imm8, 80 /2 ib",
			Want: &Instruction{
				Syntax: "ADC reg/mem8 imm8, 80 /2 ib",
				Expression: Expression{
					Mnemonic: "ADC",
					Operands: []OperandType{OperandRM8, OperandImm8},
				},
				Encoding: &Encoding{
					Syntax:        "80 /2 ib",
					Opcode:        []byte{0x80},
					ModRM:         ModRMDigit,
					ModRMDigit:    2,
					ImmediateBits: 8,
					DefaultBits:   32,
				},
			},
		},
		{
			Text: "RET, C3",
			Want: &Instruction{
				Syntax: "RET, C3",
				Expression: Expression{
					Mnemonic: "RET",
				},
				Encoding: &Encoding{
					Syntax:      "C3",
					Opcode:      []byte{0xc3},
					DefaultBits: 32,
				},
			},
		},
		{Text: "RET C3"},
		{Text: "ret, C3"},
		{Text: ", C3"},
		{Text: "MOV reg32 reg32 reg32, 89 /r"},
		{Text: "MOV reg32 foo, 89 /r"},
		{Text: "MOV reg32 reg32, 89 /r"},
		{Text: "MOV reg/mem32, 89 /r"},
		{Text: "INC reg32, FF /0"},
		{Text: "INC reg/mem32 reg32, FF /0"},
		{Text: "MOV reg/mem32 imm32, 89"},
		{Text: "PUSH reg32, 50 +rq"},
		{Text: "PUSH reg64 reg64, 50 +rq"},
		{Text: "ADD reg/mem32 imm8, 83 /0"},
		{Text: "ADD reg/mem32, 83 /0 ib"},
		{Text: "ADD reg/mem32 imm8, 83 /0 id"},
		{Text: "JMP rel32off, E9 id"},
		{Text: "PUSH imm32, 68 cd"},
	}

	for _, test := range tests {
		t.Run(test.Text, func(t *testing.T) {
			got, err := ParseInstruction(test.Text)
			if test.Want == nil {
				if err == nil {
					t.Fatalf("ParseInstruction(%q): got %s, want error", test.Text, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseInstruction(%q): %v", test.Text, err)
			}

			if diff := cmp.Diff(test.Want, got); diff != "" {
				t.Fatalf("ParseInstruction(%q): (-want, +got)\n%s", test.Text, diff)
			}
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	if len(catalog) == 0 {
		t.Fatal("DefaultCatalog(): no instructions")
	}

	// Each form must be unique by its
	// mnemonic and operand types, so
	// that lookups are unambiguous.
	seen := make(map[string]string)
	for _, inst := range catalog {
		expr := inst.Expression.String()
		if prev, ok := seen[expr]; ok {
			t.Errorf("instruction form %q is defined twice: %q and %q", expr, prev, inst.Syntax)
		}

		seen[expr] = inst.Syntax
	}
}

func TestCatalogLookup(t *testing.T) {
	tests := []struct {
		Mnemonic string
		Operands string
		Want     string // The catalog entry, or empty for no match.
	}{
		{Mnemonic: "mov", Operands: "eax, ecx", Want: "MOV reg/mem32 reg32, 89 /r"},
		{Mnemonic: "MOV", Operands: "rdi, [rip + 0x2f06]", Want: "MOV reg64 reg/mem64, 8B /r"},
		{Mnemonic: "mov", Operands: "rax, 1", Want: "MOV reg/mem64 imm32, C7 /0 id"},
		{Mnemonic: "mov", Operands: "rax, 0x100000000", Want: "MOV reg64 imm64, B8 +rq iq"},
		{Mnemonic: "mov", Operands: "[rax], 1", Want: "MOV reg/mem32 imm32, C7 /0 id"},
		{Mnemonic: "mov", Operands: "[rax]q, 1", Want: "MOV reg/mem64 imm32, C7 /0 id"},
		{Mnemonic: "add", Operands: "eax, 1", Want: "ADD reg/mem32 imm8, 83 /0 ib"},
		{Mnemonic: "add", Operands: "eax, 1000", Want: "ADD EAX imm32, 05 id"},
		{Mnemonic: "push", Operands: "r12", Want: "PUSH reg64, 50 +rq oq"},
		{Mnemonic: "push", Operands: "[rsp]", Want: "PUSH reg/mem64, FF /6 oq"},
		{Mnemonic: "push", Operands: "200", Want: "PUSH imm32, 68 id oq"},
		{Mnemonic: "call", Operands: "main", Want: "CALL rel32off, E8 cd"},
		{Mnemonic: "ret", Operands: "", Want: "RET, C3"},
		{Mnemonic: "mov", Operands: "eax, rcx"},
		{Mnemonic: "mov", Operands: "al, 256"},
		{Mnemonic: "frobnicate", Operands: "eax"},
	}

	catalog := DefaultCatalog()
	for _, test := range tests {
		var ops []*Operand
		if test.Operands != "" {
			for _, text := range strings.Split(test.Operands, ", ") {
				op, err := ParseOperand(text)
				if err != nil {
					t.Fatalf("ParseOperand(%q): %v", text, err)
				}

				ops = append(ops, op)
			}
		}

		inst := catalog.Lookup(test.Mnemonic, ops)
		var got string
		if inst != nil {
			got = inst.Syntax
		}

		if got != test.Want {
			t.Errorf("Lookup(%s %s): got %q, want %q", test.Mnemonic, test.Operands, got, test.Want)
		}
	}

	if !catalog.HasMnemonic("jmp") || catalog.HasMnemonic("frobnicate") {
		t.Errorf("HasMnemonic: unexpected result")
	}
}
