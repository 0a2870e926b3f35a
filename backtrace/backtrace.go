// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backtrace recovers the active call chain of a faulting target
// as a bounded list of raw return addresses, most recent first.
//
// Three strategies share one contract:
//
//   - Scanner searches a raw stack for words that look like return
//     addresses. It needs nothing but the stack memory and works on
//     any target.
//   - FramePointerWalker follows the chain of saved frame pointers.
//   - Callers asks the Go runtime's own unwinder.
//
// All strategies clear the output before writing to it, never write
// more than len(out) entries, and never read memory outside the
// windows they were configured with.
package backtrace

import "golang.org/x/faultdump/core"

// A Frame is the CPU state a backtrace starts from.
type Frame struct {
	SP core.Address // stack pointer
	FP core.Address // frame pointer, if the target keeps one
}

// A Backtracer fills out with return addresses, most recent first,
// and returns how many it found. Entries past the returned count are zero.
type Backtracer interface {
	Backtrace(f Frame, out []core.Address) int
}

// A WordReader reads size-byte values from target memory. It reports
// false instead of faulting when the address is not readable.
// *core.Memory implements WordReader.
type WordReader interface {
	ReadWord(a core.Address, size int) (uint64, bool)
}

func zero(out []core.Address) {
	for i := range out {
		out[i] = 0
	}
}
