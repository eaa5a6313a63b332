// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseOperand(t *testing.T) {
	tests := []struct {
		Text string
		Want *Operand
	}{
		{
			Text: "rax",
			Want: &Operand{Text: "rax", Register: RAX},
		},
		{
			Text: " r9l ",
			Want: &Operand{Text: "r9l", Register: R9B},
		},
		{
			Text: "[rsp]",
			Want: &Operand{Text: "[rsp]", Memory: &Memory{Base: RSP}},
		},
		{
			Text: "-0x10",
			Want: &Operand{Text: "-0x10", Integer: Integer{Neg: true, Abs: 16}, IsInteger: true},
		},
		{
			Text: "loop.end",
			Want: &Operand{Text: "loop.end", Label: "loop.end"},
		},
		{Text: ""},
		{Text: "[rax"},
		{Text: "1x"},
		{Text: "rax rbx"},
	}

	for _, test := range tests {
		t.Run(test.Text, func(t *testing.T) {
			got, err := ParseOperand(test.Text)
			if test.Want == nil {
				if err == nil {
					t.Fatalf("ParseOperand(%q): got %s, want error", test.Text, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseOperand(%q): %v", test.Text, err)
			}

			if diff := cmp.Diff(test.Want, got); diff != "" {
				t.Fatalf("ParseOperand(%q): (-want, +got)\n%s", test.Text, diff)
			}
		})
	}
}

func TestOperandTypeMatch(t *testing.T) {
	tests := []struct {
		Type        OperandType
		Operand     string
		OperandBits int
		Want        bool
	}{
		{Type: OperandAL, Operand: "al", OperandBits: 8, Want: true},
		{Type: OperandAL, Operand: "cl", OperandBits: 8, Want: false},
		{Type: OperandDX, Operand: "dx", OperandBits: 32, Want: true},
		{Type: OperandReg32, Operand: "r8d", OperandBits: 32, Want: true},
		{Type: OperandReg32, Operand: "rax", OperandBits: 32, Want: false},
		{Type: OperandReg64, Operand: "rip", OperandBits: 64, Want: false},
		{Type: OperandRM16, Operand: "si", OperandBits: 16, Want: true},
		{Type: OperandRM16, Operand: "[rsi]", OperandBits: 16, Want: true},
		{Type: OperandRM16, Operand: "[rsi]w", OperandBits: 16, Want: true},
		{Type: OperandRM16, Operand: "[rsi]d", OperandBits: 16, Want: false},
		{Type: OperandRM64, Operand: "[esi]", OperandBits: 64, Want: false},
		{Type: OperandMem, Operand: "[rax, rbx, 2]", OperandBits: 64, Want: true},
		{Type: OperandMem, Operand: "rax", OperandBits: 64, Want: false},
		{Type: OperandImm8, Operand: "127", OperandBits: 32, Want: true},
		{Type: OperandImm8, Operand: "128", OperandBits: 32, Want: false},
		{Type: OperandImm8, Operand: "-128", OperandBits: 32, Want: true},
		{Type: OperandImm8, Operand: "255", OperandBits: 8, Want: true},
		{Type: OperandImm8, Operand: "256", OperandBits: 8, Want: false},
		{Type: OperandImm32, Operand: "0xffffffff", OperandBits: 64, Want: false},
		{Type: OperandImm32, Operand: "0xffffffff", OperandBits: 32, Want: true},
		{Type: OperandImm32, Operand: "-1", OperandBits: 64, Want: true},
		{Type: OperandImm32, Operand: "label", OperandBits: 32, Want: true},
		{Type: OperandImm32, Operand: "label", OperandBits: 64, Want: true},
		{Type: OperandImm8, Operand: "label", OperandBits: 8, Want: true},
		{Type: OperandImm8, Operand: "label", OperandBits: 0, Want: true},
		{Type: OperandImm8, Operand: "label", OperandBits: 32, Want: false},
		{Type: OperandImm16, Operand: "label", OperandBits: 16, Want: true},
		{Type: OperandRel32, Operand: "label", OperandBits: 0, Want: true},
		{Type: OperandRel8, Operand: "-128", OperandBits: 0, Want: true},
		{Type: OperandRel8, Operand: "128", OperandBits: 0, Want: false},
	}

	for _, test := range tests {
		op, err := ParseOperand(test.Operand)
		if err != nil {
			t.Errorf("ParseOperand(%q): %v", test.Operand, err)
			continue
		}

		if got := test.Type.Match(op, test.OperandBits); got != test.Want {
			t.Errorf("%s.Match(%q, %d): got %v, want %v", test.Type, test.Operand, test.OperandBits, got, test.Want)
		}
	}
}

func TestOperandTypeSizes(t *testing.T) {
	for name, typ := range OperandTypes {
		if got := typ.String(); got != name {
			t.Errorf("OperandTypes[%q].String(): got %q", name, got)
		}

		kinds := 0
		for _, is := range []bool{typ.FixedRegister() != nil, typ.IsRegister(), typ.IsRM(), typ.IsImmediate(), typ.IsRelative()} {
			if is {
				kinds++
			}
		}

		if kinds != 1 {
			t.Errorf("%s: belongs to %d categories, want 1", name, kinds)
		}

		if typ.Bits() != 0 && typ.ValueBits() != 0 {
			t.Errorf("%s: has both an operand size and a value size", name)
		}
	}
}
