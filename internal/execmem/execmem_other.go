// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

//go:build !unix

package execmem

// Alloc is not supported on this platform.
func Alloc(n int) (*Block, error) {
	return nil, ErrUnsupported
}

// Exec is not supported on this platform.
func (b *Block) Exec() error {
	return ErrUnsupported
}

// Close is not supported on this platform.
func (b *Block) Close() error {
	return ErrUnsupported
}
