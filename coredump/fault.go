// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coredump

import (
	"runtime"
	"strings"

	"golang.org/x/faultdump/core"
)

// Assert captures a software assertion at the caller's file and line
// when cond is false. It returns cond, so the caller can go on to halt
// or reset the target.
func (d *Dump) Assert(cond bool, aux uint32) bool {
	if cond {
		return true
	}
	_, file, line, _ := runtime.Caller(1)
	d.Store(0, sourceFile(file), uint32(line), aux)
	return false
}

// HardFault captures a hardware exception. It is meant to be called by
// the exception handler with the stack pointer the CPU pushed its
// registers on (see arch.SelectStack) and the exception vector number.
func (d *Dump) HardFault(sp core.Address, vector uint32) {
	_, file, line, _ := runtime.Caller(1)
	d.Store(sp, sourceFile(file), uint32(line), vector)
}

// sourceFile shortens a path reported by runtime.Caller to its package
// directory and file name, as in "target/demo.go", so the name survives
// however deep the build tree is.
func sourceFile(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return path
	}
	if j := strings.LastIndexByte(path[:i], '/'); j >= 0 {
		return path[j+1:]
	}
	return path
}
