// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Memory represents an x86 memory
// reference.
//
// The textual form is
//
//	[disp][base[, index[, scale]]][size]
//
// where disp is an integer or a label,
// scale is 1, 2, 4, or 8, and size is
// one of b, w, d, or q. The base may
// also carry an offset inside the
// brackets, as in [rip + 0x10].
type Memory struct {
	Base         *Register
	Index        *Register
	Scale        uint8
	Displacement int64
	Label        string // Symbolic displacement, resolved later.
	Bits         int    // Explicit operand size, or zero.
}

// ParseMemory parses a memory operand.
// Register sizes are not checked; see
// Memory.Check.
func ParseMemory(s string) (*Memory, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if open < 0 || end < open {
		return nil, fmt.Errorf("invalid memory operand %q: missing brackets", s)
	}

	m := new(Memory)
	disp := strings.TrimSpace(s[:open])
	inner := strings.TrimSpace(s[open+1 : end])
	suffix := strings.TrimSpace(s[end+1:])
	if strings.ContainsAny(inner, "[]") {
		return nil, fmt.Errorf("invalid memory operand %q: nested brackets", s)
	}

	switch suffix {
	case "":
	case "b":
		m.Bits = 8
	case "w":
		m.Bits = 16
	case "d":
		m.Bits = 32
	case "q":
		m.Bits = 64
	default:
		return nil, fmt.Errorf("invalid memory operand %q: unknown size suffix %q", s, suffix)
	}

	if disp != "" {
		if err := m.setDisplacement(disp, false); err != nil {
			return nil, fmt.Errorf("invalid memory operand %q: %w", s, err)
		}
	}

	if inner == "" {
		return m, nil
	}

	parts := strings.Split(inner, ",")
	if len(parts) > 3 {
		return nil, fmt.Errorf("invalid memory operand %q: too many components", s)
	}

	// The base may carry an offset, as
	// in [rbp - 8].
	base := strings.TrimSpace(parts[0])
	if i := strings.IndexAny(base, "+-"); i > 0 {
		if disp != "" {
			return nil, fmt.Errorf("invalid memory operand %q: displacement given twice", s)
		}

		offset := strings.TrimSpace(base[i+1:])
		if base[i] == '-' {
			offset = "-" + offset
		}

		if err := m.setDisplacement(offset, true); err != nil {
			return nil, fmt.Errorf("invalid memory operand %q: %w", s, err)
		}

		base = strings.TrimSpace(base[:i])
	}

	var err error
	m.Base, err = ParseRegister(base)
	if err != nil {
		return nil, fmt.Errorf("invalid memory operand %q: %w", s, err)
	}

	if len(parts) > 1 {
		m.Index, err = ParseRegister(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid memory operand %q: %w", s, err)
		}

		m.Scale = 1
	}

	if len(parts) > 2 {
		scale, ok := ParseInteger(strings.TrimSpace(parts[2]))
		if !ok || scale.Neg {
			return nil, fmt.Errorf("invalid memory operand %q: invalid scale %q", s, strings.TrimSpace(parts[2]))
		}

		switch scale.Abs {
		case 1, 2, 4, 8:
			m.Scale = uint8(scale.Abs)
		default:
			return nil, fmt.Errorf("invalid memory operand %q: scale must be 1, 2, 4, or 8", s)
		}
	}

	return m, nil
}

// setDisplacement records an integer
// or label displacement. A negated
// label or a register is rejected.
func (m *Memory) setDisplacement(s string, inner bool) error {
	if s == "" || s == "-" {
		return errors.New("missing displacement")
	}

	if v, ok := ParseInteger(s); ok {
		d, ok := v.Int64()
		if !ok {
			return fmt.Errorf("displacement %s out of range", v)
		}

		m.Displacement = d
		return nil
	}

	if _, ok := RegistersByName[s]; ok {
		return fmt.Errorf("register %s used as a displacement: index registers are written [base, index, scale]", s)
	}

	if IsIdentifier(s) {
		m.Label = s
		return nil
	}

	if inner {
		return fmt.Errorf("invalid offset %q", s)
	}

	return fmt.Errorf("invalid displacement %q", s)
}

// ErrInvalidMemory is wrapped by the
// errors returned by Memory.Check.
var ErrInvalidMemory = errors.New("invalid memory operand")

// Check validates the registers and
// displacement against what 64-bit
// addressing can encode.
func (m *Memory) Check() error {
	if m.Base != nil && m.Base != RIP && !(m.Base.Type == TypeGeneralPurpose && m.Base.Is64bit()) {
		return fmt.Errorf("%w: base register %s is not a 64-bit register", ErrInvalidMemory, m.Base)
	}

	if m.Index != nil {
		switch {
		case m.Index == RIP:
			return fmt.Errorf("%w: rip cannot be an index register", ErrInvalidMemory)
		case !m.Index.Is64bit():
			return fmt.Errorf("%w: index register %s is not a 64-bit register", ErrInvalidMemory, m.Index)
		case m.Index == RSP:
			return fmt.Errorf("%w: rsp cannot be an index register", ErrInvalidMemory)
		case m.Base == RIP:
			return fmt.Errorf("%w: rip-relative addressing cannot use an index register", ErrInvalidMemory)
		}
	}

	if m.Displacement < math.MinInt32 || m.Displacement > math.MaxInt32 {
		return fmt.Errorf("%w: displacement %d does not fit in 32 bits", ErrInvalidMemory, m.Displacement)
	}

	return nil
}

// String returns the memory reference
// in assembly syntax.
func (m *Memory) String() string {
	var s strings.Builder
	if m.Label != "" {
		s.WriteString(m.Label)
	} else if m.Displacement != 0 {
		fmt.Fprintf(&s, "%d", m.Displacement)
	}

	s.WriteByte('[')
	if m.Base != nil {
		s.WriteString(m.Base.Name)
	}
	if m.Index != nil {
		fmt.Fprintf(&s, ", %s, %d", m.Index, m.Scale)
	}
	s.WriteByte(']')
	switch m.Bits {
	case 8:
		s.WriteByte('b')
	case 16:
		s.WriteByte('w')
	case 32:
		s.WriteByte('d')
	case 64:
		s.WriteByte('q')
	}

	return s.String()
}

// IsIdentifier returns whether s is a
// valid label or mnemonic name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && (r == '.' || '0' <= r && r <= '9'):
		default:
			return false
		}
	}

	return true
}
