// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package assembler

import (
	"bufio"
	"fmt"
	"io"
)

// listingEntry records the code produced by
// a line of assembly.
type listingEntry struct {
	Line  *Line
	Start int // Offset of the first byte.
	End   int // Offset after the last byte.
}

// listingWidth is the number of bytes shown
// on each line of a listing.
const listingWidth = 8

// writeListing writes each entry as its
// offset, the code in hexadecimal, and
// the source text. Long runs of code
// continue on further lines.
//
//	0000  b8 01 00 00 00           mov eax, 1
func writeListing(w io.Writer, obj *Object, entries []listingEntry) error {
	bw := bufio.NewWriter(w)
	for _, entry := range entries {
		text := entry.Line.Text
		for offset := entry.Start; offset < entry.End; offset += listingWidth {
			end := min(offset+listingWidth, entry.End)
			hex := fmt.Sprintf("% x", obj.Code[offset:end])
			if text == "" {
				fmt.Fprintf(bw, "%04x  %s\n", offset, hex)
			} else {
				fmt.Fprintf(bw, "%04x  %-*s  %s\n", offset, 3*listingWidth-1, hex, text)
			}

			text = ""
		}
	}

	return bw.Flush()
}
