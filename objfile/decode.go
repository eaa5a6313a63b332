// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package objfile

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/cryptobyte"

	"firefly-os.dev/tools/asmacro/assembler"
	"firefly-os.dev/tools/asmacro/internal/x86"
)

// Decode parses an object file, verifying
// its checksum and the consistency of its
// labels and locations.
func Decode(b []byte) (*assembler.Object, error) {
	if len(b) < minSize {
		return nil, fmt.Errorf("invalid object file: %w", io.ErrUnexpectedEOF)
	}

	if !IsObject(b) {
		return nil, fmt.Errorf("invalid object file: got magic %q, want %q", b[:len(magic)], magic)
	}

	// Verify the checksum.
	checksum := b[len(b)-ChecksumLength:]
	want := ([ChecksumLength]byte)(checksum)
	got := sha256.Sum256(b[:len(b)-ChecksumLength])
	if got != want {
		return nil, fmt.Errorf("invalid object file: checksum mismatch")
	}

	s := cryptobyte.String(b[len(magic) : len(b)-ChecksumLength])

	var v uint8
	if !s.ReadUint8(&v) {
		return nil, fmt.Errorf("invalid object file: %w", io.ErrUnexpectedEOF)
	}

	if v != version {
		return nil, fmt.Errorf("unsupported object file: got version %d, but only %d is supported", v, version)
	}

	var code, labels, locations cryptobyte.String
	if !readSection(&s, &code) ||
		!readSection(&s, &labels) ||
		!readSection(&s, &locations) {
		return nil, fmt.Errorf("invalid object file: %w", io.ErrUnexpectedEOF)
	}

	if !s.Empty() {
		return nil, fmt.Errorf("invalid object file: %d trailing bytes", len(s))
	}

	obj := &assembler.Object{
		Code: bytes.Clone(code),
	}

	for i := 0; !labels.Empty(); i++ {
		var (
			name  string
			value uint32
			flags uint8
		)

		if !readName(&labels, &name) ||
			!labels.ReadUint32(&value) ||
			!labels.ReadUint8(&flags) {
			return nil, fmt.Errorf("invalid object file: label %d: %w", i, io.ErrUnexpectedEOF)
		}

		switch {
		case !x86.IsIdentifier(name):
			return nil, fmt.Errorf("invalid object file: label %d has invalid name %q", i, name)
		case int64(value) > int64(len(obj.Code)):
			return nil, fmt.Errorf("invalid object file: label %q has offset %d beyond the code", name, value)
		case flags&^flagBit0 != 0:
			return nil, fmt.Errorf("invalid object file: label %q has unknown flags %#x", name, flags)
		}

		obj.Labels = append(obj.Labels, assembler.Label{
			Name:   name,
			Value:  int(value),
			Public: flags&flagBit0 != 0,
		})
	}

	for i := 0; !locations.Empty(); i++ {
		var (
			label   string
			offset  uint32
			size    uint8
			relBase uint32
			flags   uint8
		)

		if !readName(&locations, &label) ||
			!locations.ReadUint32(&offset) ||
			!locations.ReadUint8(&size) ||
			!locations.ReadUint32(&relBase) ||
			!locations.ReadUint8(&flags) {
			return nil, fmt.Errorf("invalid object file: location %d: %w", i, io.ErrUnexpectedEOF)
		}

		switch {
		case !x86.IsIdentifier(label):
			return nil, fmt.Errorf("invalid object file: location %d has invalid label %q", i, label)
		case size != 1 && size != 2 && size != 4 && size != 8:
			return nil, fmt.Errorf("invalid object file: reference to %q has invalid size %d", label, size)
		case int64(offset)+int64(size) > int64(len(obj.Code)):
			return nil, fmt.Errorf("invalid object file: reference to %q at offset %d is beyond the code", label, offset)
		case flags&^flagBit0 != 0:
			return nil, fmt.Errorf("invalid object file: reference to %q has unknown flags %#x", label, flags)
		}

		obj.Locations = append(obj.Locations, assembler.Location{
			Label:    label,
			Offset:   int(offset),
			Size:     int(size),
			RelBase:  int(relBase),
			External: flags&flagBit0 != 0,
		})
	}

	return obj, nil
}

// readSection reads a section with a
// 32-bit length prefix.
func readSection(s *cryptobyte.String, out *cryptobyte.String) bool {
	var length uint32
	var data []byte
	if !s.ReadUint32(&length) || !s.ReadBytes(&data, int(length)) {
		return false
	}

	*out = data
	return true
}

func readName(s *cryptobyte.String, name *string) bool {
	var data cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&data) {
		return false
	}

	*name = string(data)
	return true
}
