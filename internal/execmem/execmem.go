// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package execmem manages memory that is either writable
// or executable, but never both.
//
// A Block is writable until Exec is called. Exec removes
// write permission and adds execute permission, and there
// is no way back. After that, the code in the block can be
// called with Func.
//
// Calling code in a block is inherently unsafe: it runs
// with no checks at all.
package execmem

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/sirupsen/logrus"
)

var (
	// ErrCapacity is returned when writing more
	// data than a block can hold.
	ErrCapacity = errors.New("execmem: write exceeds block capacity")

	// ErrClosed is returned when using a block
	// that has been closed.
	ErrClosed = errors.New("execmem: block is closed")

	// ErrUnsupported is returned by Alloc on
	// platforms without memory protection.
	ErrUnsupported = errors.New("execmem: not supported on this platform")
)

// Block is a block of writable or
// executable memory.
type Block struct {
	mem  []byte // The whole mapping.
	n    int    // Bytes written.
	exec bool
}

// Len returns the number of bytes written
// to the block.
func (b *Block) Len() int {
	return b.n
}

// Cap returns the number of bytes the block
// can hold, which is a multiple of the page
// size.
func (b *Block) Cap() int {
	return len(b.mem)
}

// Write appends p to the block. If p does not
// fit, Write stores what does and returns
// ErrCapacity.
//
// Write panics if the block is executable.
func (b *Block) Write(p []byte) (n int, err error) {
	if b.mem == nil {
		return 0, ErrClosed
	}

	if b.exec {
		panic("execmem: write to executable memory")
	}

	n = copy(b.mem[b.n:], p)
	b.n += n
	if n < len(p) {
		err = ErrCapacity
	}

	return n, err
}

// Func returns a function that calls the code
// at offset into the block. The code must
// follow the Go internal ABI for a function
// with no parameters and one int result,
// which is returned in rax on x86-64.
//
// The block must not be closed while the
// function could still be called.
//
// Func panics if the block is not executable
// or the offset is outside the written code.
func (b *Block) Func(offset int) func() int {
	switch {
	case b.mem == nil:
		panic(ErrClosed)
	case !b.exec:
		panic("execmem: function in writable memory")
	case offset < 0 || offset >= b.n:
		panic(fmt.Sprintf("execmem: function offset %d outside %d bytes of code", offset, b.n))
	}

	// A func value points to a word that
	// holds the address of the code.
	entry := uintptr(unsafe.Pointer(&b.mem[offset]))
	fn := &entry

	logrus.WithField("entry", fmt.Sprintf("%#x", entry)).Debug("created function")

	return *(*func() int)(unsafe.Pointer(&fn))
}
