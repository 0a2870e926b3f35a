// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backtrace

import (
	"runtime"

	"golang.org/x/faultdump/core"
)

// maxCallers bounds the number of program counters Callers collects.
const maxCallers = 32

// Callers captures the calling goroutine's stack with the runtime's
// unwinder. The frame passed to Backtrace is ignored.
//
// The first entry is the function that called Backtrace; Skip drops
// that many more frames. The entries are return program counters as reported
// by runtime.Callers.
type Callers struct {
	Skip int
}

//go:noinline
func (c *Callers) Backtrace(_ Frame, out []core.Address) int {
	zero(out)
	var pcs [maxCallers]uintptr
	m := len(out)
	if m > maxCallers {
		m = maxCallers
	}
	// Skip runtime.Callers and Backtrace itself.
	n := runtime.Callers(2+c.Skip, pcs[:m])
	for i := 0; i < n; i++ {
		out[i] = core.Address(pcs[i])
	}
	return n
}
