// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"golang.org/x/faultdump/coredump"
	"golang.org/x/faultdump/internal/config"
	"golang.org/x/faultdump/internal/noinit"
	"golang.org/x/faultdump/internal/report"
)

// rootOptions holds the global flags.
type rootOptions struct {
	Region  string
	Config  string
	Format  string
	Verbose bool

	format report.Format
	log    *slog.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "viewdump",
		Short: "Capture and inspect retained core dumps",
		Long: `viewdump works with the core dump a target keeps in retained memory
across a reset: it can raise a fault on a simulated target, print and
archive the captured record, and recover call stacks from RAM images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(opts.Format)
			if err != nil {
				return wrapExitError(exitCommandError, "bad --format", err)
			}
			opts.format = f
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Region, "region", "coredump.noinit", "file holding the retained region")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "YAML description of the target (default: reference target)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newCrashCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newCollectCommand(opts))
	cmd.AddCommand(newResetCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newGetCommand(opts))
	cmd.AddCommand(newWalkCommand(opts))
	cmd.AddCommand(newShellCommand(opts))
	return cmd
}

// loadConfig returns the target description named by --config.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.Config == "" {
		return config.Default(), nil
	}
	c, err := config.Load(o.Config)
	if err != nil {
		return nil, wrapExitError(exitCommandError, "failed to load config", err)
	}
	o.log.Debug("config loaded", "path", o.Config, "arch", c.Arch, "ram", c.RAM.Range(), "code", c.Code.Range())
	return c, nil
}

// openRegion maps the retained region and returns the record in it.
// The caller closes the region.
func (o *rootOptions) openRegion() (*noinit.Region, *coredump.Record, error) {
	r, err := noinit.Open(o.Region, coredump.RecordSize)
	if err != nil {
		return nil, nil, wrapExitError(exitCommandError, "failed to open region", err)
	}
	rec, err := coredump.RecordAt(r.Bytes())
	if err != nil {
		r.Close()
		return nil, nil, wrapExitError(exitCommandError, "failed to open region", err)
	}
	o.log.Debug("region open", "path", o.Region, "size", coredump.RecordSize)
	return r, rec, nil
}

// closeRegion closes r, logging rather than returning a failure.
func (o *rootOptions) closeRegion(r *noinit.Region) {
	if err := r.Close(); err != nil {
		o.log.Error("error closing region", "path", r.Name(), "error", err)
	}
}
