// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package elf encodes assembled binaries according
// to the ELF format.
//
// The encoded binary is deliberately minimal: an
// ELF header, a PT_PHDR program header describing
// the program headers, and a single PT_LOAD program
// header that maps the whole file, followed by the
// code. There are no section headers.
package elf

import (
	"bytes"
	gobinary "encoding/binary"
	"fmt"
	"io"

	"firefly-os.dev/tools/asmacro/binary"
)

const (
	// Size constants.
	pageSize       = 0x1000 // 4kB page size in bytes.
	elfHeaderSize  = 0x40   // ELF header size in bytes.
	progHeaderSize = 0x38   // Program header size in bytes.
	sectHeaderSize = 0x40   // Section header size in bytes.
	numProgHeaders = 2      // PT_PHDR and PT_LOAD.

	// HeaderSize is the number of bytes
	// before the code in an encoded binary.
	HeaderSize = elfHeaderSize + numProgHeaders*progHeaderSize
)

// Encode writes the binary to w as an ELF binary.
//
// The binary must have exactly one section,
// which is placed directly after the headers.
// Encode updates the section's offset and
// address, plus the offset and address of
// each symbol, including the entry point.
func Encode(w io.Writer, bin *binary.Binary) error {
	write := false
	b, ok := w.(*bytes.Buffer)
	if !ok {
		write = true
		b = new(bytes.Buffer)
	}

	err := encode64(b, bin)
	if write && err == nil {
		_, err = w.Write(b.Bytes())
	}

	return err
}

func progPermissions(perm binary.Permissions) uint32 {
	var out uint32
	if perm.Read() {
		out |= 0x04
	}
	if perm.Write() {
		out |= 0x02
	}
	if perm.Execute() {
		out |= 0x01
	}

	return out
}

func encode64(b *bytes.Buffer, bin *binary.Binary) error {
	// See https://en.wikipedia.org/wiki/Executable_and_Linkable_Format
	bo := gobinary.LittleEndian
	write := func(data any) {
		gobinary.Write(b, bo, data)
	}

	const (
		ET_EXEC   = 0x02
		EM_X86_64 = 0x3e
		PT_LOAD   = 0x01
		PT_PHDR   = 0x06
	)

	if len(bin.Sections) != 1 {
		return fmt.Errorf("elf: got %d sections, want 1", len(bin.Sections))
	}

	// Check the entry point is an
	// existing symbol.
	if bin.Entry == nil {
		return fmt.Errorf("elf: no entry point symbol")
	}
	if bin.Entry.Section != 0 {
		return fmt.Errorf("elf: entry point %q is in section %d", bin.Entry.Name, bin.Entry.Section)
	}
	if bin.BaseAddr%pageSize != 0 {
		return fmt.Errorf("elf: base address %#x is not page-aligned", bin.BaseAddr)
	}

	// The code follows the headers
	// immediately.
	section := bin.Sections[0]
	section.Offset = HeaderSize
	section.Address = bin.BaseAddr + HeaderSize

	progHeadOff := uint64(elfHeaderSize)                   // Offset of the program headers (ELF header length).
	progHeadLen := uint64(progHeaderSize) * numProgHeaders // Length of the program headers.
	fileSize := uint64(HeaderSize) + uint64(len(section.Data))

	// Finish the symbol table.
	symbols := bin.Symbols
	if !containsSymbol(symbols, bin.Entry) {
		symbols = append(symbols[:len(symbols):len(symbols)], bin.Entry)
	}

	for _, sym := range symbols {
		if sym.Section != 0 {
			return fmt.Errorf("elf: symbol %q is in section %d", sym.Name, sym.Section)
		}

		sectionOffset := sym.Offset
		sym.Offset = section.Offset + sectionOffset
		sym.Address = section.Address + sectionOffset
	}

	// The entry point is now absolute.
	entry := uint64(bin.Entry.Address)

	start := b.Len()

	b.Write([]byte{0x7f, 'E', 'L', 'F'}) // Magic number.
	b.WriteByte(2)                       // 64-bit format.
	b.WriteByte(1)                       // Little endian.
	b.WriteByte(1)                       // ELF version 1.
	b.WriteByte(0)                       // System V.
	b.WriteByte(0)                       // ABI version.
	b.Write(make([]byte, 7))             // Padding.
	write(uint16(ET_EXEC))               // Executable file.
	write(uint16(EM_X86_64))             // Architecture.
	write(uint32(1))                     // ELF version 1.
	write(entry)                         // Entry point address.
	write(progHeadOff)                   // Program header table offset.
	write(uint64(0))                     // Section header table offset (none).
	write(uint32(0))                     // Flags (which we don't use).
	write(uint16(elfHeaderSize))         // File header size.
	write(uint16(progHeaderSize))        // Program header size.
	write(uint16(numProgHeaders))        // Number of program headers.
	write(uint16(sectHeaderSize))        // Section header size.
	write(uint16(0))                     // Number of section headers.
	write(uint16(0))                     // Section header table index for section names.

	// The program headers.
	write(uint32(PT_PHDR))                                  // Program header table.
	write(progPermissions(binary.Read))                     // Segment flags.
	write(progHeadOff)                                      // File offset where segment begins.
	write(uint64(bin.BaseAddr) + progHeadOff)               // Segment virtual address in memory.
	write(uint64(bin.BaseAddr) + progHeadOff)               // Segment physical address in memory.
	write(progHeadLen)                                      // Size in the binary file.
	write(progHeadLen)                                      // Size in memory.
	write(uint64(8))                                        // Alignment in memory.
	write(uint32(PT_LOAD))                                  // Loadable segment.
	write(progPermissions(section.Permissions|binary.Read)) // Segment flags.
	write(uint64(0))                                        // File offset where segment begins.
	write(uint64(bin.BaseAddr))                             // Segment virtual address in memory.
	write(uint64(bin.BaseAddr))                             // Segment physical address in memory.
	write(fileSize)                                         // Size in the binary file.
	write(fileSize)                                         // Size in memory.
	write(uint64(pageSize))                                 // Alignment in memory.

	if n := b.Len() - start; n != HeaderSize {
		panic(fmt.Sprintf("elf: wrote %d header bytes, want %d", n, HeaderSize))
	}

	b.Write(section.Data)

	return nil
}

func containsSymbol(symbols []*binary.Symbol, sym *binary.Symbol) bool {
	for _, s := range symbols {
		if s == sym {
			return true
		}
	}

	return false
}
