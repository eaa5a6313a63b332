// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

//go:build unix

package execmem

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Alloc maps a writable block of at least
// n bytes.
func Alloc(n int) (*Block, error) {
	if n < 0 {
		return nil, fmt.Errorf("execmem: invalid size %d", n)
	}

	// Never map zero bytes.
	ps := unix.Getpagesize()
	size := max(ps, (n+ps-1)/ps*ps)
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("execmem: failed to map %d bytes: %w", size, err)
	}

	logrus.WithFields(logrus.Fields{
		"requested": n,
		"size":      size,
	}).Debug("allocated block")

	return &Block{mem: mem}, nil
}

// Exec makes the block executable and
// read-only. Any later Write panics.
func (b *Block) Exec() error {
	if b.mem == nil {
		return ErrClosed
	}

	if b.exec {
		return nil
	}

	if err := unix.Mprotect(b.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("execmem: failed to make block executable: %w", err)
	}

	b.exec = true
	logrus.WithField("len", b.n).Debug("block is executable")

	return nil
}

// Close unmaps the block. Closing a block
// twice returns ErrClosed.
func (b *Block) Close() error {
	if b.mem == nil {
		return ErrClosed
	}

	if err := unix.Munmap(b.mem); err != nil {
		return fmt.Errorf("execmem: failed to unmap block: %w", err)
	}

	b.mem = nil
	b.n = 0
	b.exec = false

	return nil
}
