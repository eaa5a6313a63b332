// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package binary describes the structure of an
// assembled executable, irrespective of encoding
// format.
package binary

import (
	"fmt"
)

// DefaultBaseAddr is the address at which
// executables are loaded by default.
const DefaultBaseAddr = 0x400000

// Binary represents an assembled executable.
type Binary struct {
	BaseAddr uintptr // Binary base address.
	Entry    *Symbol // Entry point.
	Sections []*Section
	Symbols  []*Symbol
}

// Section describes a single logical section
// in an assembled executable.
type Section struct {
	Name        string      // The section name.
	Address     uintptr     // The section's address in memory.
	Offset      uintptr     // The section's offset in the encoded binary.
	Permissions Permissions // The section's runtime permissions.
	Data        []byte      // The section data.
}

// Permissions indicate the runtime permissions
// of a binary section.
type Permissions uint8

const (
	Read Permissions = 1 << iota
	Write
	Execute
)

func (p Permissions) Read() bool    { return p&Read != 0 }
func (p Permissions) Write() bool   { return p&Write != 0 }
func (p Permissions) Execute() bool { return p&Execute != 0 }

func (p Permissions) String() string {
	s := [3]byte{'-', '-', '-'}
	if p.Read() {
		s[0] = 'R'
	}
	if p.Write() {
		s[1] = 'W'
	}
	if p.Execute() {
		s[2] = 'X'
	}

	return string(s[:])
}

// Symbol represents a single label in an
// executable.
//
// Offset starts as the offset into the
// symbol's section. Once the binary has been
// encoded, Offset is the offset into the
// encoded file and Address is the virtual
// address at runtime.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Section int     // Section index, from zero.
	Offset  uintptr // Offset in the binary.
	Address uintptr // Virtual address at runtime.
}

// SymbolKind identifies the visibility of a
// symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolPrivate
	SymbolPublic
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolInvalid:
		return "invalid"
	case SymbolPrivate:
		return "private"
	case SymbolPublic:
		return "public"
	default:
		return fmt.Sprintf("SymbolKind(%d)", k)
	}
}
