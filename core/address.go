// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package core describes the address space of a faulting target: plain
// addresses, inclusive address windows, and a memory image made of
// mappings that can be read and written word by word.
//
// Unlike a live dereference, every access goes through a bounds check.
// Reads of addresses that are not mapped, or not readable, report
// failure instead of faulting, so the package is usable from code that
// runs while the system is already failing.
package core

import "fmt"

// An Address is a location in the target's address space.
type Address uint64

// Add returns a+x.
func (a Address) Add(x int64) Address {
	return a + Address(x)
}

// Sub returns a-b as a byte count.
func (a Address) Sub(b Address) int64 {
	return int64(a - b)
}

// Align rounds a down to a multiple of x, which must be a power of two.
func (a Address) Align(x int64) Address {
	return a &^ Address(x-1)
}

// A Range is the window of addresses [Min, Max]. Both bounds are
// part of the range.
type Range struct {
	Min Address
	Max Address
}

// NewRange returns the range holding the size bytes starting at min.
func NewRange(min Address, size int64) Range {
	return Range{Min: min, Max: min.Add(size - 1)}
}

// Empty reports whether r holds no addresses.
func (r Range) Empty() bool {
	return r.Max < r.Min
}

// Size returns the number of bytes in r.
func (r Range) Size() int64 {
	if r.Empty() {
		return 0
	}
	return r.Max.Sub(r.Min) + 1
}

// Contains reports whether a lies inside r.
func (r Range) Contains(a Address) bool {
	return r.Min <= a && a <= r.Max
}

// ContainsN reports whether all n bytes starting at a lie inside r.
func (r Range) ContainsN(a Address, n int64) bool {
	if n <= 0 || !r.Contains(a) {
		return false
	}
	// Check against the remaining room rather than computing a+n-1,
	// which can wrap around the top of the address space.
	return uint64(n-1) <= uint64(r.Max-a)
}

// Overlaps reports whether r and s share at least one address.
func (r Range) Overlaps(s Range) bool {
	if r.Empty() || s.Empty() {
		return false
	}
	return r.Min <= s.Max && s.Min <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%#x %#x]", uint64(r.Min), uint64(r.Max))
}
