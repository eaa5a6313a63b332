// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package assembler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		Text string
		Want *Line
	}{
		{
			Text: "",
			Want: &Line{Number: 1, Kind: LineNone},
		},
		{
			Text: "   \t ",
			Want: &Line{Number: 1, Kind: LineNone},
		},
		{
			Text: "_start:",
			Want: &Line{Number: 1, Kind: LineLabel, Text: "_start:", Name: "_start"},
		},
		{
			Text: "  loop.inner: dec rcx",
			Want: &Line{Number: 1, Kind: LineLabel, Text: "loop.inner:", Name: "loop.inner"},
		},
		{
			Text: ".align16",
			Want: &Line{Number: 1, Kind: LinePseudo, Text: ".align16", Name: "align16"},
		},
		{
			Text: ".db8\t1 2  3",
			Want: &Line{Number: 1, Kind: LinePseudo, Text: ".db8\t1 2  3", Name: "db8", Args: "1 2  3"},
		},
		{
			Text: `.utf8 "a: b"`,
			Want: &Line{Number: 1, Kind: LinePseudo, Text: `.utf8 "a: b"`, Name: "utf8", Args: `"a: b"`},
		},
		{
			Text: "ret",
			Want: &Line{Number: 1, Kind: LineInstruction, Text: "ret", Name: "ret"},
		},
		{
			Text: "mov rax, [rsp + 8]",
			Want: &Line{Number: 1, Kind: LineInstruction, Text: "mov rax, [rsp + 8]", Name: "mov", Operands: []string{"rax", "[rsp + 8]"}},
		},
		{
			Text: "lea rsi,0x10[rax, rbx, 4]",
			Want: &Line{Number: 1, Kind: LineInstruction, Text: "lea rsi,0x10[rax, rbx, 4]", Name: "lea", Operands: []string{"rsi", "0x10[rax, rbx, 4]"}},
		},
		{
			Text: "9lives",
			Want: &Line{Number: 1, Kind: LineUnknown, Text: "9lives"},
		},
		{
			Text: ". db8 1",
			Want: &Line{Number: 1, Kind: LineUnknown, Text: ". db8 1"},
		},
	}

	for _, test := range tests {
		t.Run(test.Text, func(t *testing.T) {
			got := ParseLine(1, test.Text)
			if diff := cmp.Diff(test.Want, got); diff != "" {
				t.Fatalf("ParseLine(): (-want, +got)\n%s", diff)
			}
		})
	}
}

func TestParseSource(t *testing.T) {
	src := `// Exit with status 0.
_start:
	xor edi, edi // Status.
loop: dec rcx
	.utf8 "// not a comment \" // still not" // comment

	syscall
`

	want := []*Line{
		{Number: 1, Kind: LineNone},
		{Number: 2, Kind: LineLabel, Text: "_start:", Name: "_start"},
		{Number: 3, Kind: LineInstruction, Text: "xor edi, edi", Name: "xor", Operands: []string{"edi", "edi"}},
		{Number: 4, Kind: LineLabel, Text: "loop:", Name: "loop"},
		{Number: 4, Kind: LineInstruction, Text: "dec rcx", Name: "dec", Operands: []string{"rcx"}},
		{Number: 5, Kind: LinePseudo, Text: `.utf8 "// not a comment \" // still not"`, Name: "utf8", Args: `"// not a comment \" // still not"`},
		{Number: 6, Kind: LineNone},
		{Number: 7, Kind: LineInstruction, Text: "syscall", Name: "syscall"},
	}

	got := ParseSource(src)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseSource(): (-want, +got)\n%s", diff)
	}
}

func TestLineKindString(t *testing.T) {
	tests := map[LineKind]string{
		LineNone:        "none",
		LineLabel:       "label",
		LinePseudo:      "pseudo-op",
		LineInstruction: "instruction",
		LineUnknown:     "unknown",
		LineKind(99):    "LineKind(99)",
	}

	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("LineKind(%d).String(): got %q, want %q", uint8(kind), got, want)
		}
	}
}
