// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package noinit provides retained memory on a host: a region backed by
// a file, so that what a process writes into it is still there after
// the process dies and is started again. It plays the part of the RAM
// section a microcontroller's startup code leaves uninitialized.
package noinit

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// A Region is a block of retained memory.
type Region struct {
	f      *os.File
	data   []byte
	mapped bool // data is a shared mapping of f
}

// errNoMapping reports that the platform cannot map files.
var errNoMapping = errors.New("file mapping is not implemented")

// mapFile maps length bytes of f shared and read/write. unmapFile and
// syncFile undo and flush such a mapping.
var (
	mapFile = func(f *os.File, length int) ([]byte, error) {
		return nil, errNoMapping
	}
	unmapFile = func(data []byte) error { return nil }
	syncFile  = func(data []byte) error { return nil }
)

// Open opens the region stored in the named file, creating it if
// needed. A new file, or the part of a file beyond its old end, reads
// as zero.
func Open(name string, size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("noinit: bad region size %d", size)
	}
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("noinit: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("noinit: %w", err)
	}
	if fi.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, fmt.Errorf("noinit: growing %s to %d bytes: %w", name, size, err)
		}
	}

	r := &Region{f: f}
	data, err := mapFile(f, size)
	switch {
	case err == nil:
		r.data, r.mapped = data, true
	case errors.Is(err, errNoMapping):
		r.data = make([]byte, size)
		if _, err := f.ReadAt(r.data, 0); err != nil && err != io.EOF {
			f.Close()
			return nil, fmt.Errorf("noinit: reading %s: %w", name, err)
		}
	default:
		f.Close()
		return nil, fmt.Errorf("noinit: can't memory map %s: %w", name, err)
	}
	return r, nil
}

// Name returns the name of the backing file.
func (r *Region) Name() string {
	return r.f.Name()
}

// Bytes returns the contents of the region. Writes to the slice are
// writes to the region. The slice must not be used after Close.
func (r *Region) Bytes() []byte {
	return r.data
}

// Sync makes the contents durable in the backing file.
func (r *Region) Sync() error {
	if r.data == nil {
		return fmt.Errorf("noinit: %s is closed", r.f.Name())
	}
	if r.mapped {
		if err := syncFile(r.data); err != nil {
			return fmt.Errorf("noinit: syncing %s: %w", r.f.Name(), err)
		}
		return nil
	}
	if _, err := r.f.WriteAt(r.data, 0); err != nil {
		return fmt.Errorf("noinit: writing %s: %w", r.f.Name(), err)
	}
	return r.f.Sync()
}

// Close syncs and releases the region.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	err := r.Sync()
	if r.mapped {
		if uerr := unmapFile(r.data); uerr != nil && err == nil {
			err = fmt.Errorf("noinit: unmapping %s: %w", r.f.Name(), uerr)
		}
	}
	r.data = nil
	if cerr := r.f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("noinit: %w", cerr)
	}
	return err
}
