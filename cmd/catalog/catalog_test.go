// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package catalog

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firefly-os.dev/tools/asmacro/internal/x86"
)

func TestCatalog(t *testing.T) {
	var buf bytes.Buffer
	err := Main(context.Background(), &buf, []string{"ret", "SYSCALL"})
	require.NoError(t, err)

	want := "RET        C3\n" +
		"RET imm16  C2 iw\n" +
		"SYSCALL    0F 05\n"
	assert.Equal(t, want, buf.String())
}

func TestCatalogAll(t *testing.T) {
	var buf bytes.Buffer
	err := Main(context.Background(), &buf, nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, len(x86.DefaultCatalog()))

	var found bool
	for _, line := range lines {
		expr, enc, ok := strings.Cut(line, "  ")
		if ok && expr == "MOV reg64 imm64" && strings.TrimSpace(enc) == "B8 +rq iq" {
			found = true
		}
	}

	assert.True(t, found, "MOV reg64 imm64 is missing")
}

func TestWrite(t *testing.T) {
	catalog, err := x86.ParseCatalog(`
PUSH reg64, 50 +rq oq
NOP, 90
PUSH imm32, 68 id oq
`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, catalog, "push"))
	want := "PUSH reg64  50 +rq oq\n" +
		"PUSH imm32  68 id oq\n"
	assert.Equal(t, want, buf.String())
}

func TestCatalogErrors(t *testing.T) {
	err := Main(context.Background(), new(bytes.Buffer), []string{"frobnicate"})
	assert.ErrorContains(t, err, `unknown instruction "frobnicate"`)

	err = Main(context.Background(), new(bytes.Buffer), []string{"--frobnicate"})
	assert.ErrorIs(t, err, ErrUsage)
}
