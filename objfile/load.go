// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package objfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"firefly-os.dev/tools/asmacro/assembler"
)

// IsObject returns whether data starts with
// the object file magic.
func IsObject(data []byte) bool {
	return bytes.HasPrefix(data, []byte(magic))
}

// Load reads an object file or assembles a
// source file, depending on its contents.
// If a is nil, the default configuration
// is used to assemble source files.
func Load(path string, a *assembler.Assembler) (*assembler.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if IsObject(data) {
		obj, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		logrus.WithField("file", path).Debug("decoded object file")
		return obj, nil
	}

	if a == nil {
		a = new(assembler.Assembler)
	}

	obj, err := a.Assemble(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return obj, nil
}

// LoadAll loads each file in turn and links
// them together in order, logging to a.Log.
func LoadAll(paths []string, a *assembler.Assembler) (*assembler.Object, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input files")
	}

	if a == nil {
		a = new(assembler.Assembler)
	}

	var linked *assembler.Object
	for _, path := range paths {
		obj, err := Load(path, a)
		if err != nil {
			return nil, err
		}

		if linked == nil {
			linked = obj
			continue
		}

		if err := a.Link(linked, obj); err != nil {
			return nil, fmt.Errorf("failed to link %s: %w", path, err)
		}
	}

	return linked, nil
}
