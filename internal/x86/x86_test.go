// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// x86REX is a helper function for
// constructing a REX prefix from the
// set of bits given in fields.
func x86REX(fields string) REX {
	var rex REX
	rex.SetOn()
	for _, field := range fields {
		switch field {
		case 'W':
			rex.SetW(true)
		case 'R':
			rex.SetR(true)
		case 'X':
			rex.SetX(true)
		case 'B':
			rex.SetB(true)
		}
	}

	return rex
}

func TestCode(t *testing.T) {
	tests := []struct {
		Name  string
		Code  func() *Code
		Want  []byte
		Displ int // Displacement offset.
		Imm   int // Immediate offset.
	}{
		{
			Name: "opcode only",
			Code: func() *Code {
				var c Code
				c.SetOpcode([]byte{0xc3})
				return &c
			},
			Want:  []byte{0xc3},
			Displ: 1,
			Imm:   1,
		},
		{
			Name: "everything",
			Code: func() *Code {
				c := &Code{Prefix: PrefixOperandSize, REX: x86REX("RXB"), UseModRM: true, UseSIB: true}
				c.SetOpcode([]byte{0x0f, 0xaf})
				c.ModRM.SetMod(ModRMmodSmallDisplacedRegister)
				c.ModRM.SetReg(0b001)
				c.ModRM.SetRM(ModRMrmSIB)
				c.SIB.SetScaleFactor(8)
				c.SIB.SetIndex(0b010)
				c.SIB.SetBase(0b011)
				c.SetDisplacement(-2, 1)
				c.SetImmediate(0x1234, 2)
				return c
			},
			Want:  []byte{0x66, 0x47, 0x0f, 0xaf, 0x4c, 0xd3, 0xfe, 0x34, 0x12},
			Displ: 6,
			Imm:   7,
		},
		{
			Name: "large displacement",
			Code: func() *Code {
				c := &Code{REX: x86REX("W"), UseModRM: true}
				c.SetOpcode([]byte{0x8b})
				c.ModRM.SetReg(0b111)
				c.ModRM.SetRM(ModRMrmDisplacementOnly32)
				c.SetDisplacement(0x2f06, 4)
				return c
			},
			Want:  []byte{0x48, 0x8b, 0x3d, 0x06, 0x2f, 0x00, 0x00},
			Displ: 3,
			Imm:   7,
		},
		{
			Name: "truncated immediate",
			Code: func() *Code {
				var c Code
				c.SetOpcode([]byte{0x6a})
				c.SetImmediate(0xffff_ffff_ffff_ff80, 1)
				return &c
			},
			Want:  []byte{0x6a, 0x80},
			Displ: 1,
			Imm:   1,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			code := test.Code()
			if diff := cmp.Diff(test.Want, code.Bytes()); diff != "" {
				t.Fatalf("%s.Bytes(): (-want, +got)\n%s", code, diff)
			}

			if got := code.Len(); got != len(test.Want) {
				t.Errorf("Len(): got %d, want %d", got, len(test.Want))
			}
			if got := code.DisplacementOffset(); got != test.Displ {
				t.Errorf("DisplacementOffset(): got %d, want %d", got, test.Displ)
			}
			if got := code.ImmediateOffset(); got != test.Imm {
				t.Errorf("ImmediateOffset(): got %d, want %d", got, test.Imm)
			}
		})
	}
}

func TestREX(t *testing.T) {
	rex := x86REX("WB")
	if rex != 0x49 {
		t.Fatalf("REX(WB): got %#02x, want 0x49", byte(rex))
	}

	if !rex.On() || !rex.W() || rex.R() || rex.X() || !rex.B() {
		t.Fatalf("REX(WB): got %s", rex)
	}

	if got, want := rex.String(), "0100W00B"; got != want {
		t.Fatalf("REX(WB).String(): got %q, want %q", got, want)
	}

	rex.SetW(false)
	rex.SetR(true)
	if rex != 0x45 {
		t.Fatalf("REX(RB): got %#02x, want 0x45", byte(rex))
	}
}
