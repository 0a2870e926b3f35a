// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package testenv provides helpers for tests that need a real fault
// raised from a known place in the program.
package testenv

import (
	"runtime"

	"golang.org/x/faultdump/coredump"
)

// RunThenFault runs f, then fails an assertion into d from Fault.
//
// The value returned by f is kept alive across the fault.
func RunThenFault(d *coredump.Dump, f func() any) {
	result := f()
	Fault(d)
	runtime.KeepAlive(result)
}

// Fault fails an assertion into d. It is never inlined, so it shows up
// as a frame of its own in call stacks captured by d.
//
//go:noinline
func Fault(d *coredump.Dump) {
	d.Assert(false, 0)
}
