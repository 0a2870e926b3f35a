// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"golang.org/x/faultdump/coredump"
	"golang.org/x/faultdump/internal/report"
)

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the core dump held in the region",
		Long: `Show prints the core dump held in the retained region. It exits with
status 1 if the region holds none.`,
		Args: cobra.NoArgs,
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

			d := coredump.New(rec, c.Coredump())
			if !d.IsSaved() {
				return newExitError(exitFailure, "no core dump saved in "+opts.Region)
			}
			r := d.Get()
			return report.Write(cmd.OutOrStdout(), &r, opts.format)
		},
	}
}
