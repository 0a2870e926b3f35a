// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"golang.org/x/faultdump/coredump"
)

func newResetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the core dump held in the region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadConfig()
			if err != nil {
				return err
			}
			region, rec, err := opts.openRegion()
			if err != nil {
				return err
			}
			defer opts.closeRegion(region)

			coredump.New(rec, c.Coredump()).Reset()
			if err := region.Sync(); err != nil {
				return wrapExitError(exitCommandError, "failed to sync region", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", opts.Region)
			return nil
		},
	}
}
