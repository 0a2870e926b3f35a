// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coredump

import (
	"golang.org/x/faultdump/arch"
	"golang.org/x/faultdump/core"
)

// RegisterCapture is the platform hook for CPU state. Implementations
// run inside the fault handler: they must not allocate, block or fault,
// and leave fields they cannot read untouched.
type RegisterCapture interface {
	// ExceptionFrame copies the registers the CPU pushed at sp on
	// exception entry.
	ExceptionFrame(sp core.Address, regs *Registers)
	// FaultStatus copies the fault status registers.
	FaultStatus(regs *Registers)
	// Current returns the stack and frame pointers of the running
	// code, or zero for a pointer the platform cannot provide.
	Current() (sp, fp core.Address)
}

// NoRegisters is the RegisterCapture of a platform without register
// access. It captures nothing.
type NoRegisters struct{}

func (NoRegisters) ExceptionFrame(core.Address, *Registers) {}
func (NoRegisters) FaultStatus(*Registers)                  {}
func (NoRegisters) Current() (sp, fp core.Address)          { return 0, 0 }

// A ByteReader copies bytes out of target memory. It reports false,
// copying nothing, if any of them cannot be read. *core.Memory
// implements ByteReader.
type ByteReader interface {
	ReadAt(b []byte, a core.Address) bool
}

// StackedRegisters reads the exception frame and the fault status
// registers described by Arch out of target memory. It has no notion
// of the running code; embed it and add Current for a full hook.
type StackedRegisters struct {
	Mem  ByteReader
	Arch *arch.Architecture
}

// maxFrameSize bounds the exception frame read into a stack buffer.
const maxFrameSize = 128

// ExceptionFrame reads the whole frame or nothing: a frame that runs
// off readable memory leaves regs untouched.
func (s *StackedRegisters) ExceptionFrame(sp core.Address, regs *Registers) {
	n := s.Arch.FrameSize()
	if n == 0 || n > maxFrameSize {
		return
	}
	var buf [maxFrameSize]byte
	frame := buf[:n]
	if !s.Mem.ReadAt(frame, sp) {
		return
	}
	size := s.Arch.PointerSize
	for i, name := range s.Arch.ExceptionFrame {
		regs.Set(name, uint32(s.Arch.Uintptr(frame[i*size:(i+1)*size])))
	}
}

func (s *StackedRegisters) FaultStatus(regs *Registers) {
	var buf [4]byte
	for _, r := range s.Arch.FaultStatus {
		if s.Mem.ReadAt(buf[:], core.Address(r.Addr)) {
			regs.Set(r.Name, s.Arch.ByteOrder.Uint32(buf[:]))
		}
	}
}

// A Task is the saved state of a task that is not running.
type Task struct {
	SP core.Address // saved stack pointer
	FP core.Address // saved frame pointer, or zero
}

// A TaskTable exposes the task control blocks of a multitasking
// environment. Slots may be empty.
type TaskTable interface {
	// Len returns the number of slots in the table.
	Len() int
	// Task returns the task in slot i, or false for an empty slot.
	Task(i int) (Task, bool)
}
