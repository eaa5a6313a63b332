// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package link links source and object files into an ELF
// executable.
package link

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"firefly-os.dev/tools/asmacro/assembler"
	"firefly-os.dev/tools/asmacro/binary"
	"firefly-os.dev/tools/asmacro/binary/elf"
	"firefly-os.dev/tools/asmacro/internal/config"
	"firefly-os.dev/tools/asmacro/internal/x86"
	"firefly-os.dev/tools/asmacro/objfile"
)

var program = filepath.Base(os.Args[0])

// ErrUsage is returned when the command
// line arguments are invalid.
var ErrUsage = errors.New("invalid usage")

// Main links together a set of source and
// object files into an executable binary.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := pflag.NewFlagSet("link", pflag.ContinueOnError)

	var help, symbolMap bool
	var out, entry, configPath string
	flags.BoolVarP(&help, "help", "h", false, "Show this message and exit.")
	flags.BoolVar(&symbolMap, "map", false, "Print the address of each symbol.")
	flags.StringVarP(&out, "output", "o", "", "The name of the linked binary.")
	flags.StringVar(&entry, "entry", config.DefaultEntry, "The entry point label.")
	flags.StringVar(&configPath, "config", "", "The config file (default "+config.Filename+" if present).")

	flags.SetOutput(w)
	flags.Usage = func() {
		fmt.Fprintf(w, "Usage:\n  %s %s OPTIONS FILE...\n\n", program, flags.Name())
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

	if out == "" {
		flags.Usage()
		return fmt.Errorf("%w: no output file", ErrUsage)
	}

	filenames := flags.Args()
	if len(filenames) == 0 {
		flags.Usage()
		return fmt.Errorf("%w: no input files", ErrUsage)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if !flags.Changed("entry") {
		entry = cfg.Entry
	} else if !x86.IsIdentifier(entry) {
		return fmt.Errorf("%w: invalid entry point %q", ErrUsage, entry)
	}

	a := &assembler.Assembler{AccumulateErrors: cfg.AccumulateErrors}
	obj, err := objfile.LoadAll(filenames, a)
	if err != nil {
		return err
	}

	bin, err := obj.Binary(entry)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = elf.Encode(&buf, bin)
	if err != nil {
		return fmt.Errorf("failed to encode binary: %w", err)
	}

	err = os.WriteFile(out, buf.Bytes(), 0755)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	logrus.WithFields(logrus.Fields{
		"file":    out,
		"size":    buf.Len(),
		"entry":   fmt.Sprintf("%#x", bin.Entry.Address),
		"symbols": len(bin.Symbols),
	}).Debug("wrote executable")

	if symbolMap {
		return WriteMap(w, bin)
	}

	return nil
}

// WriteMap prints the symbols of an encoded
// binary in address order.
func WriteMap(w io.Writer, bin *binary.Binary) error {
	symbols := make([]*binary.Symbol, len(bin.Symbols))
	copy(symbols, bin.Symbols)
	sort.SliceStable(symbols, func(i, j int) bool {
		return symbols[i].Address < symbols[j].Address
	})

	for _, sym := range symbols {
		_, err := fmt.Fprintf(w, "%08x  %-7s  %s\n", sym.Address, sym.Kind, sym.Name)
		if err != nil {
			return err
		}
	}

	return nil
}
