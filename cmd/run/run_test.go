// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package run

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firefly-os.dev/tools/asmacro/assembler"
	"firefly-os.dev/tools/asmacro/internal/execmem"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

// checkHost skips the test if the host
// cannot run the code, after checking
// that the error says so.
func checkHost(t *testing.T, err error) {
	t.Helper()
	if runtime.GOARCH != "amd64" {
		require.ErrorIs(t, err, ErrArch)
		t.Skip("host is not amd64")
	}

	if errors.Is(err, execmem.ErrUnsupported) {
		t.Skip("executable memory is not supported")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.s", `
_start:
	mov eax, 6
	call triple
	ret
`)
	triple := writeFile(t, dir, "triple.s", `
.global triple
triple:
	lea rax, [rax, rax, 2]
	ret
`)

	var buf bytes.Buffer
	err := Main(context.Background(), &buf, []string{main, triple})
	checkHost(t, err)
	require.NoError(t, err)
	assert.Equal(t, "18\n", buf.String())
}

func TestRunEntry(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "prog.s", `
one:
	mov eax, 1
	ret
two:
	mov eax, 2
	ret
`)

	var buf bytes.Buffer
	err := Main(context.Background(), &buf, []string{"--entry", "two", src})
	checkHost(t, err)
	require.NoError(t, err)
	assert.Equal(t, "2\n", buf.String())

	cfg := writeFile(t, dir, "asmacro.toml", "entry = \"one\"\n")
	buf.Reset()
	err = Main(context.Background(), &buf, []string{"--config", cfg, src})
	require.NoError(t, err)
	assert.Equal(t, "1\n", buf.String())

	err = Main(context.Background(), new(bytes.Buffer), []string{src})
	assert.ErrorIs(t, err, assembler.ErrUndefinedLabel)
}

func TestCall(t *testing.T) {
	obj, err := assembler.Assemble(`
_start:
	xor eax, eax
	mov rcx, -3
again:
	add rax, rcx
	inc rcx
	jne again
	ret
`)
	require.NoError(t, err)

	got, err := Call(obj, "_start")
	checkHost(t, err)
	require.NoError(t, err)
	assert.Equal(t, -6, got)
}

func TestCallErrors(t *testing.T) {
	if runtime.GOARCH != "amd64" {
		t.Skip("host is not amd64")
	}

	tests := []struct {
		Name  string
		Src   string
		Entry string
		Want  error
	}{
		{
			Name:  "missing entry",
			Src:   "_start:\n\tret\n",
			Entry: "main",
			Want:  assembler.ErrUndefinedLabel,
		},
		{
			Name:  "unresolved",
			Src:   "_start:\n\tcall helper\n\tret\n",
			Entry: "_start",
			Want:  assembler.ErrUndefinedLabel,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			obj, err := assembler.Assemble(test.Src)
			require.NoError(t, err)

			_, err = Call(obj, test.Entry)
			assert.ErrorIs(t, err, test.Want)
		})
	}

	t.Run("entry at end", func(t *testing.T) {
		obj, err := assembler.Assemble("ret\nend:\n")
		require.NoError(t, err)

		_, err = Call(obj, "end")
		assert.ErrorContains(t, err, "at the end of the code")
	})
}

func TestRunUsage(t *testing.T) {
	err := Main(context.Background(), new(bytes.Buffer), nil)
	assert.ErrorIs(t, err, ErrUsage)

	err = Main(context.Background(), new(bytes.Buffer), []string{"--entry", "", "prog.s"})
	assert.ErrorIs(t, err, ErrUsage)
}
