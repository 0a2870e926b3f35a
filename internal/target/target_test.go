// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/faultdump/arch"
	"golang.org/x/faultdump/core"
)

func TestNewLayout(t *testing.T) {
	d, err := New(DefaultConfig())
	require.NoError(t, err)

	var names []string
	for _, m := range d.Mem.Mappings() {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"ram", "flash", "scb"}, names)
	assert.Equal(t, core.Address(0x200000), d.Main.Top())
	assert.Equal(t, core.Address(0x100000+6*0x400), d.Main.base)
	sp, fp := d.Current()
	assert.Equal(t, d.Main.Top(), sp)
	assert.Zero(t, fp)
}

func TestNewErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Arch = nil
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Flash = cfg.RAM
	_, err = New(cfg)
	assert.Error(t, err, "flash overlapping RAM")

	cfg = DefaultConfig()
	cfg.TaskStackSize = 0x100000
	_, err = New(cfg)
	assert.Error(t, err, "no room for the main stack")
}

func TestStackCall(t *testing.T) {
	d, err := New(DefaultConfig())
	require.NoError(t, err)
	s := d.Main
	top := s.SP()

	require.NoError(t, s.Call(0x400100, 0xa, 0xb))
	assert.Equal(t, top.Add(-8), s.FP())
	assert.Equal(t, int64(16), s.Depth())

	read := func(a core.Address) uint32 {
		v, ok := d.Mem.ReadUint32(a)
		require.True(t, ok)
		return v
	}
	assert.Equal(t, uint32(0xa), read(s.SP()))
	assert.Equal(t, uint32(0xb), read(s.SP().Add(4)))
	assert.Equal(t, uint32(0), read(s.FP()), "saved frame pointer")
	assert.Equal(t, uint32(0x400100), read(s.FP().Add(4)), "return address")

	fp := s.FP()
	require.NoError(t, s.Call(0x400200))
	assert.Equal(t, uint32(fp), read(s.FP()))
}

func TestStackOverflow(t *testing.T) {
	cfg := DefaultConfig()
	d, err := New(cfg)
	require.NoError(t, err)
	_, s, err := d.SpawnTask()
	require.NoError(t, err)
	for err == nil {
		err = s.Push(1)
	}
	assert.ErrorIs(t, err, ErrStackOverflow)
	assert.Equal(t, cfg.TaskStackSize, s.Depth())
}

func TestException(t *testing.T) {
	d, err := New(DefaultConfig())
	require.NoError(t, err)
	sp, err := d.Main.Exception(1, 2, 3, 4, 12, 0x400101, 0x400200, 0x01000000)
	require.NoError(t, err)
	assert.Equal(t, d.Main.Top().Add(-32), sp)
	for i, want := range []uint32{1, 2, 3, 4, 12, 0x400101, 0x400200, 0x01000000} {
		v, ok := d.Mem.ReadUint32(sp.Add(int64(4 * i)))
		require.True(t, ok)
		assert.Equal(t, want, v, arch.CortexM.ExceptionFrame[i])
	}

	_, err = d.Main.Exception(1, 2)
	assert.Error(t, err)
}

func TestSetFaultStatus(t *testing.T) {
	d, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, d.SetFaultStatus("BFAR", 0x20001000))
	v, ok := d.Mem.ReadUint32(0xE000ED38)
	require.True(t, ok)
	assert.Equal(t, uint32(0x20001000), v)

	assert.Error(t, d.SetFaultStatus("DFSR", 1))
}

func TestTaskTable(t *testing.T) {
	d, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 6, d.Len())

	_, ok := d.Task(0)
	assert.False(t, ok)

	slot, s, err := d.SpawnTask()
	require.NoError(t, err)
	assert.Equal(t, 0, slot)
	task, ok := d.Task(0)
	require.True(t, ok)
	assert.Equal(t, s.SP(), task.SP)
	assert.Equal(t, int64(8), s.Depth(), "two markers")

	d.KillTask(0)
	_, ok = d.Task(0)
	assert.False(t, ok)
	_, ok = d.Task(-1)
	assert.False(t, ok)

	d, err = New(DefaultConfig())
	require.NoError(t, err)
	for i := 0; i < d.Len(); i++ {
		_, _, err := d.SpawnTask()
		require.NoError(t, err)
	}
	_, _, err = d.SpawnTask()
	assert.ErrorContains(t, err, "table full")
}
