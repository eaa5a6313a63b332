// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package assembler

import (
	"fmt"
	"strings"

	"firefly-os.dev/tools/asmacro/internal/x86"
)

// PseudoKind identifies the behaviour of a
// pseudo-op.
type PseudoKind uint8

const (
	_            PseudoKind = iota
	PseudoGlobal            // .global name
	PseudoData              // .db8 to .db64 values...
	PseudoUTF8              // .utf8 "string"
	PseudoAlign             // .align16
	PseudoCustom            // A Directive.
)

func (k PseudoKind) String() string {
	switch k {
	case PseudoGlobal:
		return "global"
	case PseudoData:
		return "data"
	case PseudoUTF8:
		return "utf8"
	case PseudoAlign:
		return "align"
	case PseudoCustom:
		return "custom"
	default:
		return fmt.Sprintf("PseudoKind(%d)", k)
	}
}

// Directive implements a custom pseudo-op.
// It receives the text after the pseudo-op
// name and can append to the object's code.
type Directive func(obj *Object, args string) error

// PseudoOp is a pseudo-op, such as .db8.
type PseudoOp struct {
	Kind      PseudoKind
	Name      string    // Without the leading dot.
	Bits      int       // The value size for PseudoData.
	Alignment int       // The alignment in bytes for PseudoAlign.
	Directive Directive // The implementation for PseudoCustom.
}

// LookupPseudoOp returns the pseudo-op with
// the given name, which does not include the
// leading dot. The built-in pseudo-ops take
// precedence over custom directives.
func LookupPseudoOp(name string, directives map[string]Directive) (PseudoOp, bool) {
	op := PseudoOp{Name: name}
	switch name {
	case "global":
		op.Kind = PseudoGlobal
	case "db8":
		op.Kind, op.Bits = PseudoData, 8
	case "db16":
		op.Kind, op.Bits = PseudoData, 16
	case "db32":
		op.Kind, op.Bits = PseudoData, 32
	case "db64":
		op.Kind, op.Bits = PseudoData, 64
	case "utf8":
		op.Kind = PseudoUTF8
	case "align16":
		op.Kind, op.Alignment = PseudoAlign, 16
	default:
		fn, ok := directives[name]
		if !ok || fn == nil {
			return PseudoOp{}, false
		}

		op.Kind, op.Directive = PseudoCustom, fn
	}

	return op, true
}

func (op PseudoOp) String() string {
	return "." + op.Name
}

// Apply performs the pseudo-op on the object.
// On failure, the object is left unchanged,
// except by a custom directive.
func (op PseudoOp) Apply(obj *Object, args string) error {
	args = strings.TrimSpace(args)
	switch op.Kind {
	case PseudoGlobal:
		return op.global(obj, args)
	case PseudoData:
		return op.data(obj, args)
	case PseudoUTF8:
		return op.utf8(obj, args)
	case PseudoAlign:
		return op.align(obj, args)
	case PseudoCustom:
		if err := op.Directive(obj, args); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	}

	panic(fmt.Sprintf("%s: invalid pseudo-op kind %s", op, op.Kind))
}

func (op PseudoOp) global(obj *Object, args string) error {
	if !x86.IsIdentifier(args) {
		return fmt.Errorf("%w: %s: invalid label %q", ErrSyntax, op, args)
	}

	for i := range obj.Labels {
		if obj.Labels[i].Name == args {
			obj.Labels[i].Public = true
			return nil
		}
	}

	return fmt.Errorf("%s: %w %q", op, ErrUndefinedLabel, args)
}

func (op PseudoOp) data(obj *Object, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return fmt.Errorf("%w: %s: no values", ErrSyntax, op)
	}

	// Check every value before any are
	// written.
	values := make([]x86.Integer, len(fields))
	for i, field := range fields {
		v, ok := x86.ParseInteger(field)
		if !ok {
			return fmt.Errorf("%w: %s: invalid integer %q", ErrSyntax, op, field)
		}

		if !v.Fits(op.Bits) {
			return newRangeError(op.String(), v, op.Bits, false)
		}

		values[i] = v
	}

	size := op.Bits / 8
	for _, v := range values {
		u := v.Uint64()
		for j := 0; j < size; j++ {
			obj.Code = append(obj.Code, byte(u>>(8*j)))
		}
	}

	return nil
}

func (op PseudoOp) utf8(obj *Object, args string) error {
	s, err := unquote(args)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSyntax, op, err)
	}

	obj.Code = append(obj.Code, s...)
	obj.Code = append(obj.Code, 0)

	return nil
}

// unquote parses a double-quoted string,
// with the escape sequences \n, \0, \r,
// \t, \\, and \".
func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("want a double-quoted string, got %q", s)
	}

	s = s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			return "", fmt.Errorf("unescaped quote at offset %d", i+1)
		case '\\':
		default:
			b.WriteByte(c)
			continue
		}

		i++
		if i == len(s) {
			return "", fmt.Errorf("incomplete escape sequence")
		}

		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case '0':
			b.WriteByte(0)
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			return "", fmt.Errorf("unknown escape sequence \\%c", s[i])
		}
	}

	return b.String(), nil
}

func (op PseudoOp) align(obj *Object, args string) error {
	if args != "" {
		return fmt.Errorf("%w: %s takes no operands, got %q", ErrSyntax, op, args)
	}

	if rem := len(obj.Code) % op.Alignment; rem != 0 {
		obj.Code = append(obj.Code, make([]byte, op.Alignment-rem)...)
	}

	return nil
}
