// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package assembler translates x86-64 assembly into
// machine code.
//
// Assembly is line-oriented. Each line is blank, a
// label ("name:"), a pseudo-op (".name args"), or an
// instruction ("mnemonic op1, op2"), optionally
// followed by a "//" comment. Labels can be referenced
// by relative branches and memory operands, and are
// resolved once the whole object has been assembled.
package assembler

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"firefly-os.dev/tools/asmacro/internal/x86"
)

// Assembler holds the configuration used to
// assemble source code. The zero value uses
// the default catalog.
type Assembler struct {
	// Catalog is the set of instruction forms.
	// If nil, x86.DefaultCatalog is used.
	Catalog x86.Catalog

	// Directives are custom pseudo-ops, keyed
	// by name without the leading dot.
	Directives map[string]Directive

	// AccumulateErrors causes assembly to
	// continue after an erroneous line, so
	// that every error is reported.
	AccumulateErrors bool

	// If Listing is not nil, a listing of the
	// assembled code is written to it.
	Listing io.Writer

	// Log receives debug output from assembly
	// and linking. If nil, the standard logger
	// is used.
	Log logrus.FieldLogger
}

// Assemble assembles the source code with
// the default configuration.
func Assemble(src string) (*Object, error) {
	var a Assembler
	return a.Assemble(src)
}

func (a *Assembler) logger() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}

	return a.Log
}

// Link is like Object.Link, but logs to
// a.Log.
func (a *Assembler) Link(o, other *Object) error {
	return o.link(other, a.logger())
}

// Assemble assembles the source code into
// an object.
//
// References to labels defined in the source
// are resolved before Assemble returns. Any
// other references are kept, so that they
// can be resolved by linking.
func (a *Assembler) Assemble(src string) (*Object, error) {
	catalog := a.Catalog
	if catalog == nil {
		catalog = x86.DefaultCatalog()
	}

	log := a.logger()

	var (
		obj     = new(Object)
		defined = make(map[string]int) // Label name to line number.
		globals []*Line
		listing []listingEntry
		errs    *multierror.Error
	)

	// fail records the error, returning
	// non-nil if assembly should stop.
	fail := func(line int, err error) error {
		err = &Error{Line: line, Err: err}
		if !a.AccumulateErrors {
			return err
		}

		errs = multierror.Append(errs, err)
		return nil
	}

	for _, line := range ParseSource(src) {
		start := len(obj.Code)
		var err error
		switch line.Kind {
		case LineNone:
			continue
		case LineLabel:
			if first, ok := defined[line.Name]; ok {
				err = fmt.Errorf("%w: %q was first defined on line %d", ErrLabelRedefined, line.Name, first)
				break
			}

			if _, ok := x86.RegistersByName[line.Name]; ok {
				err = fmt.Errorf("%w: label %q is a register name", ErrSyntax, line.Name)
				break
			}

			defined[line.Name] = line.Number
			obj.Labels = append(obj.Labels, Label{Name: line.Name, Value: len(obj.Code)})
		case LinePseudo:
			op, ok := LookupPseudoOp(line.Name, a.Directives)
			switch {
			case !ok:
				err = fmt.Errorf("%w: unknown pseudo-op .%s", ErrSyntax, line.Name)
			case op.Kind == PseudoGlobal:
				// Applied once every label is
				// known.
				globals = append(globals, line)
			default:
				err = op.Apply(obj, line.Args)
			}
		case LineInstruction:
			err = a.encodeLine(catalog, obj, line)
		default:
			err = fmt.Errorf("%w: %q", ErrSyntax, line.Text)
		}

		if err != nil {
			if err := fail(line.Number, err); err != nil {
				return nil, err
			}

			// Keep offsets consistent for
			// later lines.
			obj.Code = obj.Code[:start]
			continue
		}

		if len(obj.Code) > start {
			listing = append(listing, listingEntry{Line: line, Start: start, End: len(obj.Code)})
		}
	}

	for _, line := range globals {
		op, _ := LookupPseudoOp(line.Name, a.Directives)
		if err := op.Apply(obj, line.Args); err != nil {
			if err := fail(line.Number, err); err != nil {
				return nil, err
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	if err := obj.locate(true); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"size":       len(obj.Code),
		"labels":     len(obj.Labels),
		"unresolved": len(obj.Locations),
	}).Debug("assembled object")

	if a.Listing != nil {
		if err := writeListing(a.Listing, obj, listing); err != nil {
			return nil, fmt.Errorf("failed to write listing: %w", err)
		}
	}

	return obj, nil
}

// encodeLine encodes an instruction and
// appends it to the object.
func (a *Assembler) encodeLine(catalog x86.Catalog, obj *Object, line *Line) error {
	ops := make([]*x86.Operand, len(line.Operands))
	for i, text := range line.Operands {
		op, err := x86.ParseOperand(text)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSyntax, err)
		}

		if op.Memory != nil {
			if err := op.Memory.Check(); err != nil {
				return fmt.Errorf("%w: %q: %v", ErrSyntax, text, err)
			}
		}

		ops[i] = op
	}

	inst := catalog.Lookup(line.Name, ops)
	if inst == nil {
		return noMatch(catalog, line, ops)
	}

	code, locs, err := Encode(inst, ops)
	if err != nil {
		return err
	}

	base := len(obj.Code)
	obj.Code = append(obj.Code, code.Bytes()...)
	for _, loc := range locs {
		loc.Offset += base
		loc.RelBase += base
		obj.Locations = append(obj.Locations, loc)
	}

	return nil
}

// noMatch explains why no instruction form
// matched. If a form would match except for
// the range of an integer operand, the error
// gives the range of the widest such form.
func noMatch(catalog x86.Catalog, line *Line, ops []*x86.Operand) error {
	if !catalog.HasMnemonic(line.Name) {
		return fmt.Errorf("%w %q", ErrUnknownInstruction, line.Name)
	}

	var rangeErr *RangeError
	rangeBits := 0
	for _, inst := range catalog {
		if len(inst.Operands) != len(ops) || !strings.EqualFold(inst.Mnemonic, line.Name) {
			continue
		}

		bits := inst.OperandBits()
		var value *x86.Operand
		var valueType x86.OperandType
		shape := true
		for i, typ := range inst.Operands {
			op := ops[i]
			if (typ.IsImmediate() || typ.IsRelative()) && op.IsInteger {
				value, valueType = op, typ
				continue
			}

			if !typ.Match(op, bits) {
				shape = false
				break
			}
		}

		if !shape || value == nil || valueType.ValueBits() <= rangeBits {
			continue
		}

		signed := valueType.IsRelative() || valueType.ValueBits() < bits
		rangeErr = newRangeError(line.Name, value.Integer, valueType.ValueBits(), signed)
		rangeBits = valueType.ValueBits()
	}

	if rangeErr != nil {
		return rangeErr
	}

	return fmt.Errorf("%w: no form of %s matches %q", ErrUnknownInstruction, line.Name, line.Text)
}
