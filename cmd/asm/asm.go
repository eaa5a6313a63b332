// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package asm assembles a source file into an object file.
package asm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"firefly-os.dev/tools/asmacro/assembler"
	"firefly-os.dev/tools/asmacro/internal/config"
	"firefly-os.dev/tools/asmacro/objfile"
)

var program = filepath.Base(os.Args[0])

// ErrUsage is returned when the command
// line arguments are invalid.
var ErrUsage = errors.New("invalid usage")

// Main assembles a source file, writing either
// an object file or the raw machine code.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := pflag.NewFlagSet("asm", pflag.ContinueOnError)

	var help, raw, listing bool
	var out, configPath string
	flags.BoolVarP(&help, "help", "h", false, "Show this message and exit.")
	flags.BoolVar(&raw, "raw", false, "Write the located machine code, rather than an object file.")
	flags.BoolVar(&listing, "listing", false, "Print a listing of the assembled code.")
	flags.StringVarP(&out, "output", "o", "", "The output file name.")
	flags.StringVar(&configPath, "config", "", "The config file (default "+config.Filename+" if present).")

	flags.SetOutput(w)
	flags.Usage = func() {
		fmt.Fprintf(w, "Usage:\n  %s %s OPTIONS FILE\n\n", program, flags.Name())
		flags.PrintDefaults()
	}

	err := flags.Parse(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if help {
		flags.Usage()
		return nil
	}

	filenames := flags.Args()
	if len(filenames) != 1 {
		flags.Usage()
		return fmt.Errorf("%w: expected one source file, got %d", ErrUsage, len(filenames))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(filenames[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filenames[0], err)
	}

	a := &assembler.Assembler{AccumulateErrors: cfg.AccumulateErrors}
	if listing || cfg.Listing {
		a.Listing = w
	}

	obj, err := a.Assemble(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", filenames[0], err)
	}

	var buf bytes.Buffer
	if raw {
		if err := obj.Locate(); err != nil {
			return fmt.Errorf("%s: %w", filenames[0], err)
		}

		buf.Write(obj.Code)
	} else {
		if err := objfile.Encode(&buf, obj); err != nil {
			return fmt.Errorf("failed to encode %s: %w", filenames[0], err)
		}
	}

	if out == "" {
		out = OutputName(filenames[0], raw)
	}

	err = os.WriteFile(out, buf.Bytes(), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	logrus.WithFields(logrus.Fields{
		"file":   out,
		"size":   buf.Len(),
		"labels": len(obj.Labels),
	}).Debug("wrote output")

	return nil
}

// OutputName returns the default output
// name for a source file: the name with
// its extension replaced by ".obj", or by
// ".bin" for raw output.
func OutputName(source string, raw bool) string {
	ext := ".obj"
	if raw {
		ext = ".bin"
	}

	return strings.TrimSuffix(source, filepath.Ext(source)) + ext
}
