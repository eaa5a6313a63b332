// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"testing"
)

func TestParseRegister(t *testing.T) {
	tests := []struct {
		Name string
		Want *Register
	}{
		{Name: "rax", Want: RAX},
		{Name: "r15", Want: R15},
		{Name: "r10d", Want: R10D},
		{Name: "bp", Want: BP},
		{Name: "ah", Want: AH},
		{Name: "sil", Want: SIL},
		{Name: "r12b", Want: R12B},
		{Name: "r12l", Want: R12B},
		{Name: "rip", Want: RIP},
		{Name: "RAX"},
		{Name: "r16"},
		{Name: ""},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got, err := ParseRegister(test.Name)
			if test.Want == nil {
				if err == nil {
					t.Fatalf("ParseRegister(%q): got %s, want error", test.Name, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseRegister(%q): %v", test.Name, err)
			}

			if got != test.Want {
				t.Fatalf("ParseRegister(%q): got %s, want %s", test.Name, got, test.Want)
			}
		})
	}
}

func TestRegisters(t *testing.T) {
	seen := make(map[string]bool)
	for _, reg := range Registers {
		if seen[reg.Name] {
			t.Errorf("register %s is listed twice", reg)
		}

		seen[reg.Name] = true
		parent := reg.Parent()
		switch {
		case !parent.Is64bit():
			t.Errorf("%s: parent %s is not a 64-bit register", reg, parent)
		case parent.Parent() != parent:
			t.Errorf("%s: parent %s has parent %s", reg, parent, parent.Parent())
		case !reg.Doubles(parent):
			t.Errorf("%s: does not double its parent %s", reg, parent)
		}

		if reg.Type == TypeGeneralPurpose && reg.Reg&7 != parent.Reg&7 && !reg.IsHighByte() {
			t.Errorf("%s: register number %d does not match parent %s (%d)", reg, reg.Reg, parent, parent.Reg)
		}
	}

	if !AH.Doubles(AL) || !AL.Doubles(RAX) || !EAX.Doubles(AX) {
		t.Errorf("sub-registers of rax do not double one another")
	}

	if AL.Doubles(CL) || R8.Doubles(RAX) {
		t.Errorf("independent registers double one another")
	}
}

func TestRegCode(t *testing.T) {
	tests := []struct {
		Reg  *Register
		Bits int
		Ext  bool
		Code byte
		OK   bool
	}{
		{Reg: RAX, Bits: 64, Ext: false, Code: 0, OK: true},
		{Reg: RDI, Bits: 64, Ext: false, Code: 7, OK: true},
		{Reg: R8, Bits: 64, Ext: true, Code: 0, OK: true},
		{Reg: R13D, Bits: 32, Ext: true, Code: 5, OK: true},
		{Reg: R15W, Bits: 16, Ext: true, Code: 7, OK: true},
		{Reg: AH, Bits: 8, Ext: false, Code: 4, OK: true},
		{Reg: SPL, Bits: 8, Ext: false, Code: 4, OK: true},
		{Reg: R9B, Bits: 8, Ext: true, Code: 1, OK: true},
		{Reg: EAX, Bits: 64, OK: false},
		{Reg: RAX, Bits: 32, OK: false},
		{Reg: RIP, Bits: 64, OK: false},
	}

	for _, test := range tests {
		ext, code, ok := test.Reg.RegCode(test.Bits)
		if ext != test.Ext || code != test.Code || ok != test.OK {
			t.Errorf("%s.RegCode(%d): got (%v, %03b, %v), want (%v, %03b, %v)", test.Reg, test.Bits, ext, code, ok, test.Ext, test.Code, test.OK)
		}
	}
}

func TestMustRegCodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustRegCode: unexpected success")
		}
	}()

	EAX.MustRegCode(64)
}

func TestNeedsREX(t *testing.T) {
	tests := []struct {
		Reg  *Register
		Want bool
	}{
		{Reg: RAX, Want: false},
		{Reg: R8, Want: true},
		{Reg: AL, Want: false},
		{Reg: AH, Want: false},
		{Reg: SPL, Want: true},
		{Reg: DIL, Want: true},
		{Reg: R15B, Want: true},
		{Reg: RIP, Want: false},
	}

	for _, test := range tests {
		if got := test.Reg.NeedsREX(); got != test.Want {
			t.Errorf("%s.NeedsREX(): got %v, want %v", test.Reg, got, test.Want)
		}
	}
}
