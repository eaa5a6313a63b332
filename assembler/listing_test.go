// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package assembler

import (
	"bytes"
	"testing"

	"rsc.io/diff"
)

func TestListing(t *testing.T) {
	src := `
_start:
	mov eax, 1 // First.
	mov rax, 0x1122334455667788
	.utf8 "hi"
	.align16
	.align16
end: ret
`

	want := `0000  b8 01 00 00 00           mov eax, 1
0005  48 b8 88 77 66 55 44 33  mov rax, 0x1122334455667788
000d  22 11
000f  68 69 00                 .utf8 "hi"
0012  00 00 00 00 00 00 00 00  .align16
001a  00 00 00 00 00 00
0020  c3                       ret
`

	var buf bytes.Buffer
	a := Assembler{Listing: &buf}
	if _, err := a.Assemble(src); err != nil {
		t.Fatalf("Assemble(): %v", err)
	}

	if got := buf.String(); got != want {
		t.Fatalf("listing:\n%s", diff.Format(got, want))
	}
}
