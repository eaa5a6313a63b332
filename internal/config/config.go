// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package config reads the optional asmacro.toml file,
// which sets defaults for the command-line flags.
//
// For example:
//
//	# The label where execution starts.
//	entry = "main"
//
//	# Report every error in a file, not just the first.
//	accumulate-errors = true
//
//	# Print a listing when assembling.
//	listing = false
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"firefly-os.dev/tools/asmacro/internal/x86"
)

// Filename is the config file that is read
// from the current directory if no other
// file is given.
const Filename = "asmacro.toml"

// DefaultEntry is the default entry point.
const DefaultEntry = "_start"

// Config contains the settings that can be
// given in a config file.
type Config struct {
	Entry            string `toml:"entry"`
	AccumulateErrors bool   `toml:"accumulate-errors"`
	Listing          bool   `toml:"listing"`
}

// Default returns the configuration used
// when there is no config file.
func Default() *Config {
	return &Config{Entry: DefaultEntry}
}

// Parse decodes a config file. Unknown
// keys are an error.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}

		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	if !x86.IsIdentifier(c.Entry) {
		return nil, fmt.Errorf("invalid entry point %q", c.Entry)
	}

	return c, nil
}

// Load reads the config file at path. If
// path is empty, Filename is read if it
// exists, and the defaults are used if it
// does not.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = Filename
	}

	data, err := os.ReadFile(path)
	if optional && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return c, nil
}
