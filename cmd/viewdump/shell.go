// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"golang.org/x/faultdump/internal/archive"
	"golang.org/x/faultdump/internal/report"
)

const shellHelp = `commands:
  list        list archived core dumps
  show ID     print a core dump
  delete ID   remove a core dump
  count       print the number of core dumps
  help        print this message
  quit        leave the shell
`

// A lineReader reads one line of input. *readline.Instance is one.
type lineReader interface {
	Readline() (string, error)
}

func newShellCommand(opts *rootOptions) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Browse archived core dumps interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := openArchive(opts, db)
			if err != nil {
				return err
			}
			defer done()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "(viewdump) ",
				HistoryFile:     filepath.Join(filepath.Dir(db), ".viewdump_history"),
				AutoComplete:    shellCompleter(),
				InterruptPrompt: "^C",
				EOFPrompt:       "quit",
			})
			if err != nil {
				return wrapExitError(exitCommandError, "failed to start shell", err)
			}
			defer rl.Close()
			return runShell(cmd.Context(), a, rl, cmd.OutOrStdout(), opts.format)
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "path to SQLite archive (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func shellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("list"),
		readline.PcItem("show"),
		readline.PcItem("delete"),
		readline.PcItem("count"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// runShell reads and runs commands until quit or end of input. Command
// errors are printed and the shell goes on.
func runShell(ctx context.Context, a *archive.Archive, in lineReader, w io.Writer, f report.Format) error {
	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return wrapExitError(exitCommandError, "failed to read input", err)
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return nil
		}
		if err := shellCommand(ctx, a, w, f, args); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	}
}

func shellCommand(ctx context.Context, a *archive.Archive, w io.Writer, f report.Format, args []string) error {
	needID := func() error {
		if len(args) != 2 {
			return fmt.Errorf("usage: %s ID", args[0])
		}
		return nil
	}
	switch args[0] {
	case "help":
		fmt.Fprint(w, shellHelp)
	case "list":
		entries, err := a.List(ctx)
		if err != nil {
			return err
		}
		return writeEntries(w, entries, f)
	case "count":
		n, err := a.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
	case "show":
		if err := needID(); err != nil {
			return err
		}
		e, err := a.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return writeEntry(w, e, f)
	case "delete":
		if err := needID(); err != nil {
			return err
		}
		if err := a.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(w, "deleted %s\n", args[1])
	default:
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return nil
}
