// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package objfile encodes and decodes assembled objects,
// so that they can be assembled and linked separately.
//
// An object file consists of a header, followed by three
// length-prefixed sections:
//
//   - The code section contains the object's machine code,
//     with every reference to a private label already
//     written.
//   - The labels section contains the name, offset, and
//     visibility of each label.
//   - The locations section contains each reference to a
//     label that must be written when the object is linked.
//
// After the sections is a cryptographic checksum of the
// preceding bytes.
//
// All integers are stored in big-endian form.
//
// # Header
//
//	type Header struct {
//		Magic   [8]byte // "asmacro\x00"
//		Version uint8   // The format version. (value: objfile.version)
//	}
//
// # Code
//
//	type Code struct {
//		Length uint32
//		Data   [Length]byte
//	}
//
// # Labels
//
// The labels section is a uint32 length, followed by
// a sequence of labels:
//
//	type Label struct {
//		NameLength uint16
//		Name       [NameLength]byte
//		Value      uint32 // Offset into the code.
//		Flags      uint8  // Bit 0: public.
//	}
//
// # Locations
//
// The locations section is a uint32 length, followed
// by a sequence of locations:
//
//	type Location struct {
//		LabelLength uint16
//		Label       [LabelLength]byte
//		Offset      uint32 // Offset into the code of the field to write.
//		Size        uint8  // Size of the field: 1, 2, 4, or 8.
//		RelBase     uint32 // Offset the reference is relative to.
//		Flags       uint8  // Bit 0: external.
//	}
package objfile

import (
	"crypto/sha256"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/cryptobyte"

	"firefly-os.dev/tools/asmacro/assembler"
)

const (
	magic          = "asmacro\x00"
	version  uint8 = 1
	flagBit0 uint8 = 1 << 0

	// ChecksumLength is the length in bytes of the
	// checksum at the end of an object file.
	ChecksumLength = sha256.Size
)

// minSize is the size of an object file
// with no code, labels, or locations.
const minSize = len(magic) + // Magic.
	1 + // 8-bit version.
	4 + // 32-bit code length.
	4 + // 32-bit labels length.
	4 + // 32-bit locations length.
	ChecksumLength

// Encode writes obj to w in the object file
// format. obj is stored as is, so it should
// come from Assemble or Link, which leave
// only the references that must be written
// at link time.
func Encode(w io.Writer, obj *assembler.Object) error {
	if uint64(len(obj.Code)) > math.MaxUint32 {
		return fmt.Errorf("objfile: code is too large: %d bytes", len(obj.Code))
	}

	b := cryptobyte.NewBuilder(make([]byte, 0, minSize+len(obj.Code)))
	b.AddBytes([]byte(magic))
	b.AddUint8(version)
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(obj.Code)
	})

	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, label := range obj.Labels {
			if label.Value < 0 || label.Value > len(obj.Code) {
				b.SetError(fmt.Errorf("label %q has invalid offset %d", label.Name, label.Value))
				return
			}

			addName(b, label.Name)
			b.AddUint32(uint32(label.Value))
			b.AddUint8(flag(label.Public))
		}
	})

	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, loc := range obj.Locations {
			switch loc.Size {
			case 1, 2, 4, 8:
			default:
				b.SetError(fmt.Errorf("reference to %q has invalid size %d", loc.Label, loc.Size))
				return
			}

			if loc.Offset < 0 || loc.Offset+loc.Size > len(obj.Code) || loc.RelBase < 0 || uint64(loc.RelBase) > math.MaxUint32 {
				b.SetError(fmt.Errorf("reference to %q has invalid offset %d", loc.Label, loc.Offset))
				return
			}

			addName(b, loc.Label)
			b.AddUint32(uint32(loc.Offset))
			b.AddUint8(uint8(loc.Size))
			b.AddUint32(uint32(loc.RelBase))
			b.AddUint8(flag(loc.External))
		}
	})

	buf, err := b.Bytes()
	if err != nil {
		return fmt.Errorf("objfile: failed to encode object: %w", err)
	}

	sum := sha256.Sum256(buf)
	buf = append(buf, sum[:]...)

	_, err = w.Write(buf)
	return err
}

func addName(b *cryptobyte.Builder, name string) {
	if name == "" || len(name) > math.MaxUint16 {
		b.SetError(fmt.Errorf("invalid label name %q", name))
		return
	}

	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes([]byte(name))
	})
}

func flag(set bool) uint8 {
	if set {
		return flagBit0
	}

	return 0
}
