// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backtrace

import "golang.org/x/faultdump/core"

// A FramePointerWalker follows the chain of frame records a compiler
// builds when it keeps frame pointers. A frame record at address fp
// holds the caller's frame pointer at fp and the return address at
// fp+WordSize.
type FramePointerWalker struct {
	Mem      WordReader
	WordSize int
	RAM      core.Range // valid frame record addresses
	Code     core.Range // valid return addresses
}

// Backtrace implements Backtracer by walking from f.FP.
func (w *FramePointerWalker) Backtrace(f Frame, out []core.Address) int {
	return w.Walk(f.FP, out)
}

// Walk stores the return addresses of the frame chain starting at fp
// in out and returns their count. The walk stops at a frame record
// outside RAM, a return address outside Code, a caller frame that is
// not above the current one (stacks grow down), or len(out) entries.
func (w *FramePointerWalker) Walk(fp core.Address, out []core.Address) int {
	zero(out)
	size := int64(w.WordSize)
	n := 0
	for n < len(out) {
		if fp == 0 || !w.RAM.ContainsN(fp, 2*size) {
			break
		}
		next, ok := w.Mem.ReadWord(fp, w.WordSize)
		if !ok {
			break
		}
		ret, ok := w.Mem.ReadWord(fp.Add(size), w.WordSize)
		if !ok || ret == 0 || !w.Code.Contains(core.Address(ret)) {
			break
		}
		out[n] = core.Address(ret)
		n++
		if core.Address(next) <= fp {
			break
		}
		fp = core.Address(next)
	}
	return n
}
