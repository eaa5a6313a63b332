// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package assembler

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"firefly-os.dev/tools/asmacro/binary"
	"firefly-os.dev/tools/asmacro/binary/elf"
)

// Label is a named offset into an object's
// code.
type Label struct {
	Name   string
	Value  int  // Offset into the object's code.
	Public bool // Whether other objects can refer to the label.
}

// Location is a reference to a label that
// has not yet been written into the code.
type Location struct {
	Label   string // The label being referenced.
	Offset  int    // Offset into the code of the field to patch.
	Size    int    // Size of the field in bytes.
	RelBase int    // Offset the reference is relative to: the end of the instruction.

	// External is set once the reference has
	// failed to resolve within its own object.
	// After that, it can only refer to public
	// labels.
	External bool
}

// Object is a unit of assembled code.
type Object struct {
	Code      []byte
	Labels    []Label
	Locations []Location
}

// LookupLabel returns the label with the
// given name. A public label is preferred
// over a private label with the same name,
// which can exist after linking.
func (o *Object) LookupLabel(name string) (label Label, ok bool) {
	for _, l := range o.Labels {
		if l.Name != name {
			continue
		}

		if l.Public {
			return l, true
		}

		if !ok {
			label, ok = l, true
		}
	}

	return label, ok
}

// Locate writes each label reference into
// the code. Every label must be defined.
//
// References to private labels are then
// dropped. References to public labels are
// kept, so they can be written again if the
// object is linked.
//
// If Locate fails, o is unmodified.
func (o *Object) Locate() error {
	return o.locate(false)
}

// locate is like Locate, but if partial is
// true, references to undefined labels are
// marked as external and kept.
func (o *Object) locate(partial bool) error {
	type patch struct {
		loc    Location
		target int64
	}

	patches := make([]patch, 0, len(o.Locations))
	kept := make([]Location, 0, len(o.Locations))
	for _, loc := range o.Locations {
		label, ok := o.LookupLabel(loc.Label)
		if ok && loc.External && !label.Public {
			ok = false
		}

		if !ok {
			if partial {
				loc.External = true
				kept = append(kept, loc)
				continue
			}

			return fmt.Errorf("%w %q", ErrUndefinedLabel, loc.Label)
		}

		if loc.Offset < 0 || loc.Offset+loc.Size > len(o.Code) {
			panic(fmt.Sprintf("reference to %q at offset %d with size %d is outside the code (%d bytes)", loc.Label, loc.Offset, loc.Size, len(o.Code)))
		}

		target := int64(label.Value) - int64(loc.RelBase)
		bits := 8 * loc.Size
		if bits < 64 && (target < -1<<(bits-1) || target >= 1<<(bits-1)) {
			return fmt.Errorf("%w: label %q is %d bytes away, which does not fit in %d bits", ErrRelocationRange, loc.Label, target, bits)
		}

		patches = append(patches, patch{loc: loc, target: target})
		if label.Public {
			kept = append(kept, loc)
		}
	}

	for _, p := range patches {
		u := uint64(p.target)
		for i := 0; i < p.loc.Size; i++ {
			o.Code[p.loc.Offset+i] = byte(u >> (8 * i))
		}
	}

	o.Locations = kept

	return nil
}

// Link appends other to o, so that each
// can refer to the other's public labels.
//
// Both objects are first located, keeping
// any references to labels they do not
// define. The code in o is padded to a
// multiple of 16 bytes before other's code
// is appended.
//
// Link fails if both objects define the same
// public label. If Link fails, o is
// unmodified, though other may have been
// located.
//
// Link logs to the standard logger. Use
// Assembler.Link to log elsewhere.
func (o *Object) Link(other *Object) error {
	return o.link(other, logrus.StandardLogger())
}

func (o *Object) link(other *Object, log logrus.FieldLogger) error {
	merged := &Object{
		Code:      slices.Clone(o.Code),
		Labels:    slices.Clone(o.Labels),
		Locations: slices.Clone(o.Locations),
	}

	if err := merged.locate(true); err != nil {
		return err
	}

	if err := other.locate(true); err != nil {
		return err
	}

	public := make(map[string]bool)
	for _, label := range merged.Labels {
		if label.Public {
			public[label.Name] = true
		}
	}

	for _, label := range other.Labels {
		if label.Public && public[label.Name] {
			return fmt.Errorf("%w: public label %q is defined in both objects", ErrLabelRedefined, label.Name)
		}
	}

	if rem := len(merged.Code) % 16; rem != 0 {
		merged.Code = append(merged.Code, make([]byte, 16-rem)...)
	}

	base := len(merged.Code)
	merged.Code = append(merged.Code, other.Code...)
	for _, label := range other.Labels {
		label.Value += base
		merged.Labels = append(merged.Labels, label)
	}

	for _, loc := range other.Locations {
		loc.Offset += base
		loc.RelBase += base
		loc.External = true
		merged.Locations = append(merged.Locations, loc)
	}

	if err := merged.locate(true); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"base":       base,
		"size":       len(merged.Code),
		"labels":     len(merged.Labels),
		"unresolved": len(merged.Locations),
	}).Debug("linked object")

	*o = *merged

	return nil
}

// Binary locates the object and describes
// it as an executable, starting at the
// entry label.
func (o *Object) Binary(entry string) (*binary.Binary, error) {
	if err := o.Locate(); err != nil {
		return nil, err
	}

	label, ok := o.LookupLabel(entry)
	if !ok {
		return nil, fmt.Errorf("entry point: %w %q", ErrUndefinedLabel, entry)
	}

	bin := &binary.Binary{
		BaseAddr: binary.DefaultBaseAddr,
		Sections: []*binary.Section{
			{
				Name:        "code",
				Permissions: binary.Read | binary.Execute,
				Data:        slices.Clone(o.Code),
			},
		},
	}

	for _, l := range o.Labels {
		sym := &binary.Symbol{
			Name:   l.Name,
			Kind:   binary.SymbolPrivate,
			Offset: uintptr(l.Value),
		}

		if l.Public {
			sym.Kind = binary.SymbolPublic
		}

		if l == label && bin.Entry == nil {
			bin.Entry = sym
		}

		bin.Symbols = append(bin.Symbols, sym)
	}

	return bin, nil
}

// ELF locates the object and encodes it as
// an ELF executable, starting at the entry
// label.
func (o *Object) ELF(entry string) ([]byte, error) {
	bin, err := o.Binary(entry)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	if err := elf.Encode(&b, bin); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
