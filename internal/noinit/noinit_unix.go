// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package noinit

import (
	"os"

	"golang.org/x/sys/unix"
)

func init() {
	mapFile = func(f *os.File, length int) ([]byte, error) {
		return unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	}
	unmapFile = unix.Munmap
	syncFile = func(data []byte) error {
		return unix.Msync(data, unix.MS_SYNC)
	}
}
