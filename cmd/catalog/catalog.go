// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package catalog prints the instruction forms the assembler
// supports.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"firefly-os.dev/tools/asmacro/internal/x86"
)

var program = filepath.Base(os.Args[0])

// ErrUsage is returned when the command
// line arguments are invalid.
var ErrUsage = errors.New("invalid usage")

// Main prints the instruction forms for each
// mnemonic given, or every form if none are
// given.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := pflag.NewFlagSet("catalog", pflag.ContinueOnError)

	var help bool
	flags.BoolVarP(&help, "help", "h", false, "Show this message and exit.")

	flags.SetOutput(w)
	flags.Usage = func() {
		fmt.Fprintf(w, "Usage:\n  %s %s [MNEMONIC...]\n\n", program, flags.Name())
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

	catalog := x86.DefaultCatalog()
	mnemonics := flags.Args()
	for _, mnemonic := range mnemonics {
		if !catalog.HasMnemonic(mnemonic) {
			return fmt.Errorf("unknown instruction %q", mnemonic)
		}
	}

	return Write(w, catalog, mnemonics...)
}

// Write prints each instruction form with
// one of the given mnemonics, in catalog
// order. If no mnemonics are given, every
// form is printed.
func Write(w io.Writer, catalog x86.Catalog, mnemonics ...string) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, inst := range catalog {
		if !matchAny(inst.Mnemonic, mnemonics) {
			continue
		}

		fmt.Fprintf(tw, "%s\t%s\n", inst.Expression, inst.Encoding)
	}

	return tw.Flush()
}

func matchAny(mnemonic string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}

	for _, filter := range filters {
		if strings.EqualFold(mnemonic, filter) {
			return true
		}
	}

	return false
}
