// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch contains architecture-specific definitions.
package arch

import (
	"encoding/binary"
	"fmt"
)

// A Register names a memory-mapped CPU register.
type Register struct {
	Name string
	Addr uint64
}

// Architecture defines the architecture-specific details for a given machine.
type Architecture struct {
	Name string
	// PointerSize is the size of a pointer and of a stack slot, in bytes.
	PointerSize int
	// ByteOrder is the byte order for ints and pointers.
	ByteOrder binary.ByteOrder
	// ExceptionFrame lists the registers the CPU pushes on exception
	// entry, in increasing address order from the exception stack pointer.
	// Empty if the CPU pushes nothing the core dump can use.
	ExceptionFrame []string
	// FaultStatus lists the memory-mapped fault status registers.
	FaultStatus []Register
}

func (a *Architecture) String() string {
	return a.Name
}

// Uintptr decodes the stack slot held in buf, which must be exactly
// PointerSize bytes.
func (a *Architecture) Uintptr(buf []byte) uint64 {
	if len(buf) != a.PointerSize {
		panic(fmt.Sprintf("%s: %d-byte slot, want %d", a.Name, len(buf), a.PointerSize))
	}
	if a.PointerSize == 4 {
		return uint64(a.ByteOrder.Uint32(buf))
	}
	return a.ByteOrder.Uint64(buf)
}

// PutUintptr encodes v into the stack slot buf, which must be exactly
// PointerSize bytes. On a 4-byte target the high half of v is dropped.
func (a *Architecture) PutUintptr(buf []byte, v uint64) {
	if len(buf) != a.PointerSize {
		panic(fmt.Sprintf("%s: %d-byte slot, want %d", a.Name, len(buf), a.PointerSize))
	}
	if a.PointerSize == 4 {
		a.ByteOrder.PutUint32(buf, uint32(v))
		return
	}
	a.ByteOrder.PutUint64(buf, v)
}

// FrameSize returns the size in bytes of the exception frame. The CPU
// pushes each register into a stack slot of its own.
func (a *Architecture) FrameSize() int64 {
	return int64(len(a.ExceptionFrame)) * int64(a.PointerSize)
}

// excReturnPSP is the EXC_RETURN bit selecting the process stack.
const excReturnPSP = 0x4

// SelectStack returns the stack pointer the CPU used to push the
// exception frame: the process stack if bit 2 of the EXC_RETURN value
// found in LR is set, the main stack otherwise.
func SelectStack(excReturn uint32, msp, psp uint64) uint64 {
	if excReturn&excReturnPSP == 0 {
		return msp
	}
	return psp
}

var CortexM = Architecture{
	Name:        "cortex-m",
	PointerSize: 4,
	ByteOrder:   binary.LittleEndian,
	ExceptionFrame: []string{
		"R0", "R1", "R2", "R3", "R12", "LR", "PC", "xPSR",
	},
	FaultStatus: []Register{
		{"CFSR", 0xE000ED28},
		{"HFSR", 0xE000ED2C},
		{"MMFAR", 0xE000ED34},
		{"BFAR", 0xE000ED38},
		{"AFSR", 0xE000ED3C},
	},
}

var AMD64 = Architecture{
	Name:        "amd64",
	PointerSize: 8,
	ByteOrder:   binary.LittleEndian,
}

var ARM64 = Architecture{
	Name:        "arm64",
	PointerSize: 8,
	ByteOrder:   binary.LittleEndian,
}

var all = []*Architecture{&CortexM, &AMD64, &ARM64}

// Lookup returns the architecture with the given name.
func Lookup(name string) (*Architecture, error) {
	for _, a := range all {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unknown architecture %q", name)
}
