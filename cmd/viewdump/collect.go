// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"golang.org/x/faultdump/coredump"
	"golang.org/x/faultdump/internal/archive"
)

type collectOptions struct {
	*rootOptions
	Database string
	Keep     bool
}

func newCollectCommand(root *rootOptions) *cobra.Command {
	opts := &collectOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Archive the core dump held in the region and clear it",
		Long: `Collect is the startup step of an application: if the retained region
holds a core dump, it is stored in the archive and the region is
cleared, so that the next fault can be captured.

Example:
  viewdump collect --db dumps.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite archive (required)")
	cmd.Flags().BoolVar(&opts.Keep, "keep", false, "leave the core dump in the region")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runCollect(cmd *cobra.Command, opts *collectOptions) error {
	c, err := opts.loadConfig()
	if err != nil {
		return err
	}
	region, rec, err := opts.openRegion()
	if err != nil {
		return err
	}
	defer opts.closeRegion(region)

	d := coredump.New(rec, c.Coredump())
	if !d.IsSaved() {
		fmt.Fprintln(cmd.OutOrStdout(), "no core dump saved")
		return nil
	}

	a, err := archive.Open(opts.Database)
	if err != nil {
		return wrapExitError(exitCommandError, "failed to open archive", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			opts.log.Error("error closing archive", "error", err)
		}
	}()

	r := d.Get()
	id, err := a.Put(cmd.Context(), &r, opts.Region)
	if err != nil {
		return wrapExitError(exitCommandError, "failed to archive core dump", err)
	}
	opts.log.Info("core dump archived", "id", id, "db", opts.Database)

	if !opts.Keep {
		d.Reset()
		if err := region.Sync(); err != nil {
			return wrapExitError(exitCommandError, "failed to sync region", err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
