// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

//go:build unix

package execmem

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestAlloc(t *testing.T) {
	ps := unix.Getpagesize()
	tests := []struct {
		Size int
		Cap  int
	}{
		{Size: 0, Cap: ps},
		{Size: 1, Cap: ps},
		{Size: ps, Cap: ps},
		{Size: ps + 1, Cap: 2 * ps},
		{Size: 8 << 20, Cap: 8 << 20},
	}

	for _, test := range tests {
		t.Run(fmt.Sprint(test.Size), func(t *testing.T) {
			b, err := Alloc(test.Size)
			if err != nil {
				t.Fatalf("Alloc(%d): %v", test.Size, err)
			}

			if got := b.Cap(); got != test.Cap {
				t.Errorf("Cap(): got %d, want %d", got, test.Cap)
			}

			if got := b.Len(); got != 0 {
				t.Errorf("Len(): got %d, want 0", got)
			}

			if err := b.Close(); err != nil {
				t.Fatalf("Close(): %v", err)
			}

			if err := b.Close(); !errors.Is(err, ErrClosed) {
				t.Fatalf("second Close(): got %v, want %v", err, ErrClosed)
			}
		})
	}

	if _, err := Alloc(-1); err == nil {
		t.Errorf("Alloc(-1): unexpected success")
	}
}

func TestWrite(t *testing.T) {
	b, err := Alloc(1)
	if err != nil {
		t.Fatalf("Alloc(): %v", err)
	}

	defer b.Close()

	// Fill all but the last 2 bytes, then
	// write 4 more.
	first := bytes.Repeat([]byte{0xcc}, b.Cap()-2)
	if n, err := b.Write(first); n != len(first) || err != nil {
		t.Fatalf("Write(): got %d, %v, want %d, nil", n, err, len(first))
	}

	n, err := b.Write([]byte{1, 2, 3, 4})
	if n != 2 || !errors.Is(err, ErrCapacity) {
		t.Fatalf("Write(): got %d, %v, want 2, %v", n, err, ErrCapacity)
	}

	if got, want := b.Len(), b.Cap(); got != want {
		t.Fatalf("Len(): got %d, want %d", got, want)
	}

	if got := b.mem[b.Cap()-2:]; !bytes.Equal(got, []byte{1, 2}) {
		t.Fatalf("got trailing bytes % x, want 01 02", got)
	}
}

func TestWriteToExec(t *testing.T) {
	b, err := Alloc(1)
	if err != nil {
		t.Fatalf("Alloc(): %v", err)
	}

	defer b.Close()

	if _, err := b.Write([]byte{0xc3}); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	if err := b.Exec(); err != nil {
		t.Fatalf("Exec(): %v", err)
	}

	// Exec is idempotent.
	if err := b.Exec(); err != nil {
		t.Fatalf("second Exec(): %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("writing to executable memory did not panic")
		}
	}()

	b.Write([]byte{0x90})
}

func TestFuncPanics(t *testing.T) {
	b, err := Alloc(1)
	if err != nil {
		t.Fatalf("Alloc(): %v", err)
	}

	defer b.Close()

	if _, err := b.Write([]byte{0xc3}); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	mustPanic := func(name string, offset int) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: Func(%d) did not panic", name, offset)
			}
		}()

		b.Func(offset)
	}

	mustPanic("writable", 0)

	if err := b.Exec(); err != nil {
		t.Fatalf("Exec(): %v", err)
	}

	mustPanic("negative offset", -1)
	mustPanic("past the code", 1)

	if f := b.Func(0); f == nil {
		t.Errorf("Func(0): got nil function")
	}
}

func TestClosed(t *testing.T) {
	b, err := Alloc(1)
	if err != nil {
		t.Fatalf("Alloc(): %v", err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	if _, err := b.Write([]byte{0xc3}); !errors.Is(err, ErrClosed) {
		t.Errorf("Write(): got %v, want %v", err, ErrClosed)
	}

	if err := b.Exec(); !errors.Is(err, ErrClosed) {
		t.Errorf("Exec(): got %v, want %v", err, ErrClosed)
	}
}
