// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

import (
	"fmt"

	"golang.org/x/faultdump/arch"
	"golang.org/x/faultdump/core"
)

// A Stack is a full-descending stack in device RAM: a push decrements
// the stack pointer and then stores at it.
type Stack struct {
	mem  *core.Memory
	arch *arch.Architecture
	base core.Address // lowest usable address
	top  core.Address // initial stack pointer
	sp   core.Address
	fp   core.Address
}

func newStack(mem *core.Memory, a *arch.Architecture, base, top core.Address) *Stack {
	return &Stack{mem: mem, arch: a, base: base, top: top, sp: top}
}

// SP returns the stack pointer.
func (s *Stack) SP() core.Address { return s.sp }

// FP returns the frame pointer.
func (s *Stack) FP() core.Address { return s.fp }

// Top returns the initial stack pointer.
func (s *Stack) Top() core.Address { return s.top }

// Depth returns the number of bytes in use.
func (s *Stack) Depth() int64 { return s.top.Sub(s.sp) }

// Push stores a pointer-sized word.
func (s *Stack) Push(v uint64) error {
	a := s.sp.Add(-int64(s.arch.PointerSize))
	if a < s.base || a > s.sp {
		return fmt.Errorf("%w: push at %#x below %#x", ErrStackOverflow, uint64(a), uint64(s.base))
	}
	var buf [8]byte
	slot := buf[:s.arch.PointerSize]
	s.arch.PutUintptr(slot, v)
	if !s.mem.WriteAt(slot, a) {
		return fmt.Errorf("target: stack slot %#x not writeable", uint64(a))
	}
	s.sp = a
	return nil
}

// PlantMarker pushes n copies of the sentinel.
func (s *Stack) PlantMarker(marker uint64, n int) error {
	for i := 0; i < n; i++ {
		if err := s.Push(marker); err != nil {
			return err
		}
	}
	return nil
}

// Call enters a function: it pushes the return address and a frame
// record linking to the caller's frame, then the callee's locals with
// locals[0] at the lowest address.
func (s *Stack) Call(ret core.Address, locals ...uint64) error {
	if err := s.Push(uint64(ret)); err != nil {
		return err
	}
	if err := s.Push(uint64(s.fp)); err != nil {
		return err
	}
	s.fp = s.sp
	for i := len(locals) - 1; i >= 0; i-- {
		if err := s.Push(locals[i]); err != nil {
			return err
		}
	}
	return nil
}

// Exception pushes an exception frame, words[0] at the lowest address,
// and returns the resulting stack pointer, which is the address the
// registers can be read back from.
func (s *Stack) Exception(words ...uint32) (core.Address, error) {
	if n := int64(len(words)) * int64(s.arch.PointerSize); n == 0 || n != s.arch.FrameSize() {
		return 0, fmt.Errorf("target: %s exception frame is %d bytes, got %d", s.arch, s.arch.FrameSize(), n)
	}
	for i := len(words) - 1; i >= 0; i-- {
		if err := s.Push(uint64(words[i])); err != nil {
			return 0, err
		}
	}
	return s.sp, nil
}
