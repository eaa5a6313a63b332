// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package assembler

import (
	"bufio"
	"fmt"
	"strings"

	"firefly-os.dev/tools/asmacro/internal/x86"
)

// LineKind categorises a line of assembly.
type LineKind uint8

const (
	LineNone        LineKind = iota // Blank or comment only.
	LineLabel                       // "name:"
	LinePseudo                      // ".name args"
	LineInstruction                 // "mnemonic operand, operand"
	LineUnknown                     // Anything else.
)

func (k LineKind) String() string {
	switch k {
	case LineNone:
		return "none"
	case LineLabel:
		return "label"
	case LinePseudo:
		return "pseudo-op"
	case LineInstruction:
		return "instruction"
	case LineUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("LineKind(%d)", k)
	}
}

// Line is a classified line of assembly.
// Classification is purely textual; names
// are not checked against the catalog or
// the known pseudo-ops.
type Line struct {
	Number   int      // From 1.
	Kind     LineKind
	Text     string   // The statement, without comments or surrounding space.
	Name     string   // The label, pseudo-op (without the dot), or mnemonic.
	Args     string   // The text after a pseudo-op name.
	Operands []string // The instruction operands.
}

// ParseSource splits assembly into lines
// and classifies each one.
//
// A label can be followed by a statement
// on the same line, as in "loop: dec rcx".
// The statement is returned as a separate
// line with the same number.
func ParseSource(src string) []*Line {
	var lines []*Line
	s := bufio.NewScanner(strings.NewReader(src))
	s.Buffer(nil, len(src)+1)
	for number := 1; s.Scan(); number++ {
		text := stripComment(s.Text())
		for {
			line := ParseLine(number, text)
			lines = append(lines, line)
			if line.Kind != LineLabel {
				break
			}

			// Anything after the colon.
			_, text, _ = strings.Cut(text, ":")
			if strings.TrimSpace(text) == "" {
				break
			}
		}
	}

	return lines
}

// ParseLine classifies a single statement.
// Any comment must already have been
// removed. For a label, only the text up
// to the colon is considered.
func ParseLine(number int, text string) *Line {
	text = strings.TrimSpace(text)
	line := &Line{Number: number, Text: text}
	if text == "" {
		line.Kind = LineNone
		return line
	}

	// Pseudo-ops.
	if rest, ok := strings.CutPrefix(text, "."); ok {
		name, args := rest, ""
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			name, args = rest[:i], rest[i:]
		}

		if !x86.IsIdentifier(name) {
			line.Kind = LineUnknown
			return line
		}

		line.Kind = LinePseudo
		line.Name = name
		line.Args = strings.TrimSpace(args)
		return line
	}

	// Labels.
	if name, _, ok := strings.Cut(text, ":"); ok && x86.IsIdentifier(name) {
		line.Kind = LineLabel
		line.Name = name
		line.Text = name + ":"
		return line
	}

	// Instructions.
	mnemonic, operands := text, ""
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		mnemonic, operands = text[:i], strings.TrimSpace(text[i:])
	}

	if !x86.IsIdentifier(mnemonic) {
		line.Kind = LineUnknown
		return line
	}

	line.Kind = LineInstruction
	line.Name = mnemonic
	line.Operands = splitOperands(operands)
	return line
}

// splitOperands splits on commas that are
// not inside brackets.
func splitOperands(s string) []string {
	if s == "" {
		return nil
	}

	var ops []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				ops = append(ops, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	return append(ops, strings.TrimSpace(s[start:]))
}

// stripComment removes any "//" comment
// that is not inside a string literal.
func stripComment(s string) string {
	inString := false
	for i := 0; i < len(s); i++ {
		switch {
		case inString && s[i] == '\\':
			i++ // Skip the escaped character.
		case s[i] == '"':
			inString = !inString
		case !inString && strings.HasPrefix(s[i:], "//"):
			return s[:i]
		}
	}

	return s
}
