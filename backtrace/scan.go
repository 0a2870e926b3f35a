// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package backtrace

import "golang.org/x/faultdump/core"

// A Scanner recovers return addresses by scanning a stack upward from
// the stack pointer and keeping every word that points into code.
//
// A call pushes its return address onto the stack, and ordinary stack
// data rarely holds a value inside the code range, so the words that
// fall in Code are taken to be the saved return addresses of the
// active frames. The heuristic can report data words that happen to
// look like code addresses, and misses return addresses the compiler
// kept in registers. Every match is reported as found.
type Scanner struct {
	Mem      WordReader
	WordSize int        // size of a stack slot in bytes, 4 or 8
	RAM      core.Range // valid stack addresses
	Code     core.Range // addresses a return address may point to
	Marker   uint64     // stack-boundary sentinel planted at task creation
	MaxDepth int        // maximum number of words searched
}

// Backtrace implements Backtracer by scanning from f.SP.
func (s *Scanner) Backtrace(f Frame, out []core.Address) int {
	return s.Walk(f.SP, out)
}

// Walk scans the stack starting at sp and stores the candidate return
// addresses in out, returning their count. Out is zeroed first; it stays
// all zero if sp is not a RAM address.
//
// A zero word is never taken as a return address.
// The scan ends at the first of: two consecutive marker words, len(out)
// candidates, MaxDepth words, or a word that cannot be read.
func (s *Scanner) Walk(sp core.Address, out []core.Address) int {
	zero(out)
	if !s.RAM.Contains(sp) || len(out) == 0 {
		return 0
	}
	size := int64(s.WordSize)
	n := 0
	a := sp
	for depth := 0; depth < s.MaxDepth; depth++ {
		v, ok := s.read(a)
		if !ok {
			break
		}
		// Reached the top of the stack?
		if v == s.Marker {
			if next, ok := s.read(a.Add(size)); ok && next == s.Marker {
				break
			}
		}
		// Zero ends a call stack, so it is never a candidate even when
		// code starts at address 0.
		if v != 0 && s.Code.Contains(core.Address(v)) {
			out[n] = core.Address(v)
			n++
			if n == len(out) {
				break
			}
		}
		a = a.Add(size)
	}
	return n
}

// read returns the stack word at a, refusing anything outside RAM.
func (s *Scanner) read(a core.Address) (uint64, bool) {
	if !s.RAM.ContainsN(a, int64(s.WordSize)) {
		return 0, false
	}
	return s.Mem.ReadWord(a, s.WordSize)
}
