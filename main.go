// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Command asmacro assembles, links, and runs x86-64
// assembly.
package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"firefly-os.dev/tools/asmacro/cmd/asm"
	"firefly-os.dev/tools/asmacro/cmd/catalog"
	"firefly-os.dev/tools/asmacro/cmd/link"
	"firefly-os.dev/tools/asmacro/cmd/run"
)

type Command struct {
	Name        string
	Description string
	Func        func(ctx context.Context, w io.Writer, args []string) error
}

var (
	commandsNames = make([]string, 0, 4)
	commandsMap   = make(map[string]*Command)

	program = filepath.Base(os.Args[0])
)

func RegisterCommand(name, description string, fun func(ctx context.Context, w io.Writer, args []string) error) {
	if commandsMap[name] != nil {
		panic("command " + name + " already registered")
	}

	if fun == nil {
		panic("command " + name + " registered with nil implementation")
	}

	commandsNames = append(commandsNames, name)
	commandsMap[name] = &Command{Name: name, Description: description, Func: fun}
}

func init() {
	RegisterCommand("asm", "Assemble a source file into an object file", asm.Main)
	RegisterCommand("catalog", "Print the supported instruction forms", catalog.Main)
	RegisterCommand("link", "Link source and object files into an ELF executable", link.Main)
	RegisterCommand("run", "Assemble source files and call their entry point", run.Main)
}

// rootCommand builds the command tree.
func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           program + " [-v] COMMAND [OPTIONS]",
		Short:         "Assemble, link, and run x86-64 assembly",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Print debug logging.")

	sort.Strings(commandsNames)
	for _, name := range commandsNames {
		command := commandsMap[name]
		root.AddCommand(&cobra.Command{
			Use:                command.Name,
			Short:              command.Description,
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				args, verbose := verboseArgs(args)
				if verbose {
					logrus.SetLevel(logrus.DebugLevel)
				}

				logrus.WithField("command", command.Name).Debug("running command")
				return command.Func(cmd.Context(), cmd.OutOrStdout(), args)
			},
		})
	}

	return root
}

// verboseArgs removes the verbose flag from
// a command's arguments. Commands parse their
// own flags, so the flag arrives with the
// arguments wherever it was given.
func verboseArgs(args []string) (rest []string, verbose bool) {
	rest = make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}

		if arg == "-v" || arg == "--verbose" {
			verbose = true
			continue
		}

		rest = append(rest, arg)
	}

	return rest, verbose
}

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	err := rootCommand().ExecuteContext(context.Background())
	if err != nil {
		logrus.Fatal(err)
	}
}
