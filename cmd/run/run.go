// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package run assembles and links source and object files
// in memory, then calls the entry point.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"firefly-os.dev/tools/asmacro/assembler"
	"firefly-os.dev/tools/asmacro/internal/config"
	"firefly-os.dev/tools/asmacro/internal/execmem"
	"firefly-os.dev/tools/asmacro/internal/x86"
	"firefly-os.dev/tools/asmacro/objfile"
)

var program = filepath.Base(os.Args[0])

var (
	// ErrUsage is returned when the command
	// line arguments are invalid.
	ErrUsage = errors.New("invalid usage")

	// ErrArch is returned when the host cannot
	// run x86-64 code.
	ErrArch = errors.New("run: host architecture is not amd64")
)

// Main links the given files and calls the
// entry point as a function, printing the
// value it returns in rax.
func Main(ctx context.Context, w io.Writer, args []string) error {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)

	var help bool
	var entry, configPath string
	flags.BoolVarP(&help, "help", "h", false, "Show this message and exit.")
	flags.StringVar(&entry, "entry", config.DefaultEntry, "The label of the function to call.")
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

	result, err := Call(obj, entry)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, result)
	return err
}

// Call locates the object, copies it into
// executable memory, and calls the code at
// the entry label. The code must return with
// ret, leaving its result in rax.
func Call(obj *assembler.Object, entry string) (int, error) {
	if runtime.GOARCH != "amd64" {
		return 0, ErrArch
	}

	err := obj.Locate()
	if err != nil {
		return 0, err
	}

	label, ok := obj.LookupLabel(entry)
	if !ok {
		return 0, fmt.Errorf("entry point: %w %q", assembler.ErrUndefinedLabel, entry)
	}

	if label.Value >= len(obj.Code) {
		return 0, fmt.Errorf("entry point %q is at the end of the code", entry)
	}

	block, err := execmem.Alloc(len(obj.Code))
	if err != nil {
		return 0, err
	}

	defer block.Close()

	if _, err := block.Write(obj.Code); err != nil {
		return 0, err
	}

	if err := block.Exec(); err != nil {
		return 0, err
	}

	fn := block.Func(label.Value)

	logrus.WithFields(logrus.Fields{
		"entry":  entry,
		"offset": label.Value,
		"size":   len(obj.Code),
	}).Debug("calling entry point")

	return fn(), nil
}
