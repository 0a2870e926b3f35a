// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"golang.org/x/faultdump/internal/archive"
	"golang.org/x/faultdump/internal/report"
)

// An entryView is an archived dump as printed by list and get.
type entryView struct {
	ID          string       `json:"id" yaml:"id"`
	CollectedAt string       `json:"collected_at" yaml:"collected_at"`
	Source      string       `json:"source" yaml:"source"`
	Dump        *report.View `json:"dump" yaml:"dump"`
}

func newEntryView(e *archive.Entry) entryView {
	return entryView{
		ID:          e.ID,
		CollectedAt: e.CollectedAt.UTC().Format(time.RFC3339),
		Source:      e.Source,
		Dump:        report.NewView(&e.Record),
	}
}

// openArchive opens the archive named by a --db flag.
func openArchive(opts *rootOptions, path string) (*archive.Archive, func(), error) {
	a, err := archive.Open(path)
	if err != nil {
		return nil, nil, wrapExitError(exitCommandError, "failed to open archive", err)
	}
	return a, func() {
		if err := a.Close(); err != nil {
			opts.log.Error("error closing archive", "error", err)
		}
	}, nil
}

func newListCommand(opts *rootOptions) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived core dumps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := openArchive(opts, db)
			if err != nil {
				return err
			}
			defer done()
			entries, err := a.List(cmd.Context())
			if err != nil {
				return wrapExitError(exitCommandError, "failed to list archive", err)
			}
			return writeEntries(cmd.OutOrStdout(), entries, opts.format)
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "path to SQLite archive (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func writeEntries(w io.Writer, entries []*archive.Entry, f report.Format) error {
	switch f {
	case report.Text:
		t := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(t, "%s\t%s\t%s\n", e.ID, e.CollectedAt.UTC().Format(time.RFC3339), report.Summary(&e.Record))
		}
		return t.Flush()
	}
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newEntryView(e))
	}
	return encode(w, views, f)
}

func encode(w io.Writer, v any, f report.Format) error {
	switch f {
	case report.JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case report.YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", f)
}

func newGetCommand(opts *rootOptions) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print an archived core dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := openArchive(opts, db)
			if err != nil {
				return err
			}
			defer done()
			e, err := a.Get(cmd.Context(), args[0])
			if err != nil {
				return wrapExitError(exitFailure, "failed to get core dump", err)
			}
			return writeEntry(cmd.OutOrStdout(), e, opts.format)
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "path to SQLite archive (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func writeEntry(w io.Writer, e *archive.Entry, f report.Format) error {
	if f != report.Text {
		return encode(w, newEntryView(e), f)
	}
	fmt.Fprintf(w, "id %s\ncollected %s from %s\n\n", e.ID, e.CollectedAt.UTC().Format(time.RFC3339), e.Source)
	return report.Write(w, &e.Record, f)
}
