// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/faultdump/internal/archive"
	"golang.org/x/faultdump/internal/report"
)

// run executes viewdump with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runStderr(t, args...)
	return out, err
}

// runStderr is run that also returns what went to stderr.
func runStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"crash", "show", "collect", "reset", "list", "get", "walk", "shell"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := newRootCommand()
	f := cmd.PersistentFlags().Lookup("region")
	require.NotNil(t, f)
	assert.Equal(t, "coredump.noinit", f.DefValue)
	f = cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, f)
	assert.Equal(t, "v", f.Shorthand)
}

func TestBadFormat(t *testing.T) {
	region := filepath.Join(t.TempDir(), "region")
	_, err := run(t, "show", "--region", region, "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, exitCommandError, exitCode(err))
}

func TestShowEmpty(t *testing.T) {
	region := filepath.Join(t.TempDir(), "region")
	_, err := run(t, "show", "--region", region)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestCrashShowCollect(t *testing.T) {
	dir := t.TempDir()
	region := filepath.Join(dir, "region")
	db := filepath.Join(dir, "dumps.db")

	out, err := run(t, "crash", "--region", region, "--hard", "--tasks", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "fault captured")

	out, err = run(t, "show", "--region", region)
	require.NoError(t, err)
	assert.Contains(t, out, "hardware exception")
	assert.Contains(t, out, "CFSR  0x02000000")
	assert.Contains(t, out, "#0 0x00400300")
	assert.Contains(t, out, "task 0")

	// First fault wins across process runs.
	out, err = run(t, "crash", "--region", region)
	require.NoError(t, err)
	assert.Contains(t, out, "fault ignored")

	out, err = run(t, "show", "--region", region, "--format", "json")
	require.NoError(t, err)
	var v report.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "hardware exception", v.Kind)
	assert.Equal(t, uint32(3), v.AuxCode)
	assert.Equal(t, []string{"0x00400300", "0x00400400", "0x00400300", "0x00400200", "0x00400100"}, v.CallStack)

	out, err = run(t, "collect", "--region", region, "--db", db)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	_, err = run(t, "show", "--region", region)
	assert.Equal(t, exitFailure, exitCode(err), "collect clears the region")

	out, err = run(t, "collect", "--region", region, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "no core dump saved\n", out)

	out, err = run(t, "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "hardware exception at ")

	out, err = run(t, "get", "--db", db, id)
	require.NoError(t, err)
	assert.Contains(t, out, "id "+id)
	assert.Contains(t, out, "from "+region)

	out, err = run(t, "get", "--db", db, id, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: "+id)
	assert.Contains(t, out, "kind: hardware exception")

	_, err = run(t, "get", "--db", db, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestCollectKeep(t *testing.T) {
	dir := t.TempDir()
	region := filepath.Join(dir, "region")
	db := filepath.Join(dir, "dumps.db")

	_, err := run(t, "crash", "--region", region)
	require.NoError(t, err)
	_, err = run(t, "collect", "--region", region, "--db", db, "--keep")
	require.NoError(t, err)
	out, err := run(t, "show", "--region", region)
	require.NoError(t, err)
	assert.Contains(t, out, "software assertion")

	out, err = run(t, "reset", "--region", region)
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")
	_, err = run(t, "show", "--region", region)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestCrashStrategy(t *testing.T) {
	dir := t.TempDir()
	region := filepath.Join(dir, "region")
	_, err := run(t, "crash", "--region", region, "--strategy", "framepointer")
	require.NoError(t, err)
	out, err := run(t, "show", "--region", region, "--format", "json")
	require.NoError(t, err)
	var v report.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, []string{"0x00400300", "0x00400200", "0x00400100"}, v.CallStack)

	_, err = run(t, "crash", "--region", filepath.Join(dir, "other"), "--strategy", "dwarf")
	assert.Equal(t, exitCommandError, exitCode(err))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "target.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
software_version: 99
ram: {min: 0x20000000, max: 0x2000FFFF}
code: {min: 0x08000000, max: 0x0800FFFF}
tasks: false
`), 0o644))
	region := filepath.Join(dir, "region")

	_, err := run(t, "crash", "--region", region, "--config", cfg, "--tasks", "2")
	require.NoError(t, err)
	out, err := run(t, "show", "--region", region, "--config", cfg, "--format", "json")
	require.NoError(t, err)
	var v report.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, uint32(99), v.SoftwareVersion)
	assert.Equal(t, []string{"0x08000300", "0x08000200", "0x08000100"}, v.CallStack)
	assert.Empty(t, v.Tasks, "task capture disabled")

	_, err = run(t, "show", "--region", region, "--config", filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, exitCommandError, exitCode(err))
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "ram.bin")
	words := []uint32{0x11111111, 0x00400300, 0x22222222, 0x00400100, 0xEFEFEFEF, 0xEFEFEFEF, 0x00400500}
	data := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[4*i:], w)
	}
	require.NoError(t, os.WriteFile(image, data, 0o644))

	out, err := run(t, "walk", "--image", image, "--base", "0x1ffe00", "--sp", "0x1ffe00")
	require.NoError(t, err)
	assert.Equal(t, "  #0 0x00400300\n  #1 0x00400100\n", out)

	out, err = run(t, "walk", "--image", image, "--base", "0x1ffe00", "--sp", "0x1ffe00", "--max", "1", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"call_stack": ["0x00400300"]}`, out)

	out, err = run(t, "walk", "--image", image, "--base", "0x1ffe00", "--sp", "0x300000")
	require.NoError(t, err)
	assert.Equal(t, "  (empty)\n", out)

	_, err = run(t, "walk", "--image", filepath.Join(dir, "missing.bin"))
	assert.Equal(t, exitCommandError, exitCode(err))
}

func TestWalkWarnings(t *testing.T) {
	image := filepath.Join(t.TempDir(), "ram.bin")
	require.NoError(t, os.WriteFile(image, make([]byte, 16), 0o644))

	out, stderr, err := runStderr(t, "walk", "--image", image, "--base", "0x300000", "--sp", "0x300000")
	require.NoError(t, err)
	assert.Equal(t, "  (empty)\n", out)
	assert.True(t, strings.HasPrefix(stderr, "WARNING: image "), stderr)
	assert.Contains(t, stderr, "lies outside RAM")

	_, stderr, err = runStderr(t, "walk", "-v", "--image", image, "--base", "0x1ffe00", "--sp", "0x1ffe00")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "WARNING")
	assert.Contains(t, stderr, "image")
}

// lines is a lineReader over fixed input.
type lines []string

func (l *lines) Readline() (string, error) {
	if len(*l) == 0 {
		return "", io.EOF
	}
	s := (*l)[0]
	*l = (*l)[1:]
	if s == "^C" {
		return "", readline.ErrInterrupt
	}
	return s, nil
}

func TestShell(t *testing.T) {
	dir := t.TempDir()
	region := filepath.Join(dir, "region")
	db := filepath.Join(dir, "dumps.db")
	_, err := run(t, "crash", "--region", region)
	require.NoError(t, err)
	out, err := run(t, "collect", "--region", region, "--db", db)
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	a, err := archive.Open(db)
	require.NoError(t, err)
	defer a.Close()

	in := lines{"", "help", "count", "^C", "show " + id, "show", "bogus", "delete " + id, "count", "quit", "count"}
	var buf bytes.Buffer
	require.NoError(t, runShell(context.Background(), a, &in, &buf, report.Text))
	got := buf.String()
	assert.Contains(t, got, "commands:")
	assert.Contains(t, got, "1\n")
	assert.Contains(t, got, "software assertion")
	assert.Contains(t, got, "error: usage: show ID")
	assert.Contains(t, got, `error: unknown command "bogus"`)
	assert.Contains(t, got, "deleted "+id)
	assert.True(t, strings.HasSuffix(got, "0\n"), "quit stops before the last count")
	assert.Equal(t, lines{"count"}, in)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitCommandError, exitCode(errors.New("plain")))
	err := wrapExitError(exitFailure, "wrapped", archive.ErrNotFound)
	assert.Equal(t, exitFailure, exitCode(err))
	assert.ErrorIs(t, err, archive.ErrNotFound)
	assert.Equal(t, "wrapped: "+archive.ErrNotFound.Error(), err.Error())
}
