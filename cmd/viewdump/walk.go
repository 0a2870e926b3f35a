// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"golang.org/x/faultdump/backtrace"
	"golang.org/x/faultdump/core"
	"golang.org/x/faultdump/coredump"
	"golang.org/x/faultdump/internal/report"
)

type walkOptions struct {
	*rootOptions
	Image string
	Base  uint64
	SP    uint64
	FP    uint64
	Max   int
}

func newWalkCommand(root *rootOptions) *cobra.Command {
	opts := &walkOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Recover a call stack from a raw RAM image",
		Long: `Walk loads a raw memory image at --base and recovers the call stack
starting at --sp, the way a fault handler on the target would, using the
configured RAM and code ranges. With the framepointer strategy the walk
starts at --fp instead.

Example:
  viewdump walk --image ram.bin --base 0x100000 --sp 0x1ffe00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "raw RAM image (required)")
	cmd.Flags().Uint64Var(&opts.Base, "base", 0, "address of the first byte of the image")
	cmd.Flags().Uint64Var(&opts.SP, "sp", 0, "stack pointer to walk from")
	cmd.Flags().Uint64Var(&opts.FP, "fp", 0, "frame pointer to walk from (framepointer strategy)")
	cmd.Flags().IntVar(&opts.Max, "max", coredump.CallStackSize, "maximum number of return addresses")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func runWalk(cmd *cobra.Command, opts *walkOptions) error {
	c, err := opts.loadConfig()
	if err != nil {
		return err
	}
	cfg := c.Coredump()
	if opts.Max <= 0 {
		return newExitError(exitCommandError, "--max must be positive")
	}

	data, err := os.ReadFile(opts.Image)
	if err != nil {
		return wrapExitError(exitCommandError, "failed to read image", err)
	}
	if len(data) == 0 {
		return newExitError(exitCommandError, "image "+opts.Image+" is empty")
	}
	mem := core.NewMemory(cfg.Arch.ByteOrder)
	m, err := mem.MapData("image", core.Address(opts.Base), core.Read|core.Write, data)
	if err != nil {
		return wrapExitError(exitCommandError, "failed to load image", err)
	}
	if !cfg.RAM.Overlaps(m.Range()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: image %s lies outside RAM %s; nothing will be found\n", m.Range(), cfg.RAM)
	}
	if opts.Verbose {
		if err := report.Mappings(cmd.ErrOrStderr(), mem); err != nil {
			opts.log.Warn("failed to print mappings", "error", err)
		}
	}

	var bt backtrace.Backtracer
	switch cfg.Strategy {
	case coredump.FramePointer:
		bt = &backtrace.FramePointerWalker{Mem: mem, WordSize: cfg.Arch.PointerSize, RAM: cfg.RAM, Code: cfg.Code}
	case coredump.RuntimeCallers:
		return newExitError(exitCommandError, "the callers strategy cannot walk a memory image")
	default:
		bt = &backtrace.Scanner{
			Mem:      mem,
			WordSize: cfg.Arch.PointerSize,
			RAM:      cfg.RAM,
			Code:     cfg.Code,
			Marker:   cfg.StackMarker,
			MaxDepth: cfg.MaxSearchDepth,
		}
	}
	out := make([]core.Address, opts.Max)
	n := bt.Backtrace(backtrace.Frame{SP: core.Address(opts.SP), FP: core.Address(opts.FP)}, out)
	opts.log.Debug("walk done", "strategy", cfg.Strategy, "found", n)
	return report.WriteCallStack(cmd.OutOrStdout(), out[:n], opts.format)
}
