// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noinit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/faultdump/coredump"
)

func TestOpenCreatesZeroed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "region")
	r, err := Open(name, 64)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, make([]byte, 64), r.Bytes())
	fi, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, int64(64), fi.Size())
}

func TestOpenBadSize(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "region"), 0)
	assert.Error(t, err)
}

func TestSurvivesReopen(t *testing.T) {
	name := filepath.Join(t.TempDir(), "region")
	r, err := Open(name, coredump.RecordSize)
	require.NoError(t, err)
	rec, err := coredump.RecordAt(r.Bytes())
	require.NoError(t, err)

	d := coredump.New(rec, coredump.DefaultConfig())
	require.False(t, d.IsSaved())
	d.Store(0, "main.c", 42, 7)
	require.NoError(t, r.Close())
	assert.NoError(t, r.Close(), "second close")

	r, err = Open(name, coredump.RecordSize)
	require.NoError(t, err)
	defer r.Close()
	rec, err = coredump.RecordAt(r.Bytes())
	require.NoError(t, err)
	d = coredump.New(rec, coredump.DefaultConfig())
	require.True(t, d.IsSaved())
	assert.Equal(t, "main.c", rec.File())
	assert.Equal(t, uint32(42), rec.Line)
}

func TestGrowKeepsContents(t *testing.T) {
	name := filepath.Join(t.TempDir(), "region")
	require.NoError(t, os.WriteFile(name, []byte{1, 2, 3}, 0o644))
	r, err := Open(name, 8)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, r.Bytes())
}

func TestUnmappedFallback(t *testing.T) {
	saved := mapFile
	mapFile = func(*os.File, int) ([]byte, error) { return nil, errNoMapping }
	defer func() { mapFile = saved }()

	name := filepath.Join(t.TempDir(), "region")
	r, err := Open(name, 16)
	require.NoError(t, err)
	assert.False(t, r.mapped)
	copy(r.Bytes(), "retained")
	require.NoError(t, r.Close())

	got, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "retained", string(got[:8]))
	assert.Equal(t, make([]byte, 8), got[8:])
}
