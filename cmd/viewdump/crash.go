// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"golang.org/x/faultdump/coredump"
	"golang.org/x/faultdump/internal/config"
	"golang.org/x/faultdump/internal/target"
)

type crashOptions struct {
	*rootOptions
	Hard     bool
	Tasks    int
	Strategy string
}

func newCrashCommand(root *rootOptions) *cobra.Command {
	opts := &crashOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "crash",
		Short: "Fault a simulated target and capture the core dump",
		Long: `Crash boots a simulated target with the configured memory map, runs
the demo call chain main → call1 → call2 → call3 and makes call3 fail,
capturing the fault into the retained region.

If the region already holds a core dump, the new fault is not captured.

Example:
  viewdump crash --hard --tasks 2
  viewdump crash --strategy framepointer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrash(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Hard, "hard", false, "divide by zero instead of failing an assertion")
	cmd.Flags().IntVar(&opts.Tasks, "tasks", 0, "number of blocked tasks on the target")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "backtrace strategy (scan|framepointer|callers), overriding the config")
	return cmd
}

func runCrash(cmd *cobra.Command, opts *crashOptions) error {
	c, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Strategy != "" {
		c.Backtrace = opts.Strategy
		if err := c.Validate(); err != nil {
			return wrapExitError(exitCommandError, "bad --strategy", err)
		}
	}
	cfg := c.Coredump()

	dev, err := target.New(targetConfig(cfg))
	if err != nil {
		return wrapExitError(exitCommandError, "failed to build target", err)
	}

	region, rec, err := opts.openRegion()
	if err != nil {
		return err
	}
	defer opts.closeRegion(region)

	d := coredump.New(rec, cfg, dumpOptions(c, dev)...)
	kept := d.IsSaved()
	if kept {
		opts.log.Warn("region already holds a core dump; new fault will be ignored", "path", opts.Region)
	}

	opts.log.Debug("running demo", "hard", opts.Hard, "tasks", opts.Tasks, "strategy", cfg.Strategy)
	if err := dev.Demo(d, target.DemoOptions{Hard: opts.Hard, Tasks: opts.Tasks}); err != nil {
		return wrapExitError(exitCommandError, "demo failed", err)
	}
	if err := region.Sync(); err != nil {
		return wrapExitError(exitCommandError, "failed to sync region", err)
	}

	if kept {
		fmt.Fprintf(cmd.OutOrStdout(), "fault ignored: %s already holds a core dump\n", opts.Region)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "fault captured into %s\n", opts.Region)
	return nil
}

// targetConfig returns a simulated device matching cfg.
func targetConfig(cfg coredump.Config) target.Config {
	t := target.DefaultConfig()
	t.Arch = cfg.Arch
	t.RAM = cfg.RAM
	t.Flash = cfg.Code
	t.Marker = cfg.StackMarker
	return t
}

// dumpOptions wires the platform hooks c enables to dev.
func dumpOptions(c *config.Config, dev *target.Device) []coredump.Option {
	opts := []coredump.Option{coredump.WithMemory(dev.Mem)}
	if c.Registers {
		opts = append(opts, coredump.WithRegisters(dev))
	}
	if c.Tasks {
		opts = append(opts, coredump.WithTasks(dev))
	}
	return opts
}
