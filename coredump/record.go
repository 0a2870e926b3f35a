// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coredump

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/faultdump/core"
)

const (
	// KeyStored marks a record as written. A record is valid when Key
	// holds KeyStored and NotKey holds its complement.
	KeyStored uint32 = 0xDEADBEEF

	// FileNameLen is the capacity of Record.FileName, terminator included.
	FileNameLen = 128

	// CallStackSize is the number of return addresses kept per call stack.
	CallStackSize = 8

	// TaskCount is the number of task call stacks a record holds.
	TaskCount = 5
)

// A FaultKind tells what raised the fault.
type FaultKind uint32

const (
	HardwareException FaultKind = iota // CPU-detected exception
	SoftwareAssertion                  // failed software check
)

func (k FaultKind) String() string {
	switch k {
	case HardwareException:
		return "hardware exception"
	case SoftwareAssertion:
		return "software assertion"
	}
	return fmt.Sprintf("FaultKind(%d)", uint32(k))
}

// Registers holds the CPU state captured for a hardware exception:
// the registers pushed on exception entry followed by the fault status
// registers. Registers not available on the target stay zero.
type Registers struct {
	R0, R1, R2, R3, R12 uint32
	LR, PC, XPSR        uint32

	CFSR, HFSR, MMFAR, BFAR, AFSR uint32
}

// registerNames lists the registers in Registers order.
var registerNames = [...]string{
	"R0", "R1", "R2", "R3", "R12", "LR", "PC", "xPSR",
	"CFSR", "HFSR", "MMFAR", "BFAR", "AFSR",
}

func (r *Registers) slot(name string) *uint32 {
	switch name {
	case "R0":
		return &r.R0
	case "R1":
		return &r.R1
	case "R2":
		return &r.R2
	case "R3":
		return &r.R3
	case "R12":
		return &r.R12
	case "LR":
		return &r.LR
	case "PC":
		return &r.PC
	case "xPSR", "XPSR":
		return &r.XPSR
	case "CFSR":
		return &r.CFSR
	case "HFSR":
		return &r.HFSR
	case "MMFAR":
		return &r.MMFAR
	case "BFAR":
		return &r.BFAR
	case "AFSR":
		return &r.AFSR
	}
	return nil
}

// Set stores v in the named register. It reports false for a name the
// record has no room for.
func (r *Registers) Set(name string, v uint32) bool {
	p := r.slot(name)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Get returns the value of the named register.
func (r *Registers) Get(name string) (uint32, bool) {
	p := r.slot(name)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// A NamedRegister is one entry of Registers.All.
type NamedRegister struct {
	Name  string
	Value uint32
}

// All returns every register in record order.
func (r *Registers) All() []NamedRegister {
	all := make([]NamedRegister, len(registerNames))
	for i, name := range registerNames {
		all[i] = NamedRegister{Name: name, Value: *r.slot(name)}
	}
	return all
}

// IsZero reports whether no register was captured.
func (r *Registers) IsZero() bool {
	return *r == Registers{}
}

// A CallStack is a list of return addresses, most recent first,
// zero padded past the last one found.
type CallStack [CallStackSize]core.Address

// Len returns the number of entries before the zero padding.
func (s *CallStack) Len() int {
	n := 0
	for n < len(s) && s[n] != 0 {
		n++
	}
	return n
}

// A Record is the core dump kept across a reset. It holds no pointers,
// so it can be laid over raw memory that the startup code leaves alone;
// see RecordAt.
type Record struct {
	Key             uint32
	NotKey          uint32
	SoftwareVersion uint32
	AuxCode         uint32
	Kind            FaultKind
	Line            uint32
	FileName        [FileNameLen]byte

	Registers Registers

	ActiveCallStack CallStack
	TaskCallStacks  [TaskCount]CallStack
}

// RecordSize is the number of bytes of retained memory a Record needs.
const RecordSize = int(unsafe.Sizeof(Record{}))

// ErrRegionSize is returned by RecordAt for a region that cannot hold a Record.
var ErrRegionSize = errors.New("coredump: retained region too small for a record")

// RecordAt returns the Record stored in the first RecordSize bytes of b.
// The record aliases b: b must be memory that survives a reset and that
// nothing else writes, and it must stay reachable while the record is used.
// Fresh zeroed memory holds an invalid record.
func RecordAt(b []byte) (*Record, error) {
	if len(b) < RecordSize {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrRegionSize, len(b), RecordSize)
	}
	if uintptr(unsafe.Pointer(&b[0]))%unsafe.Alignof(Record{}) != 0 {
		return nil, fmt.Errorf("coredump: retained region at %p is not %d-byte aligned", &b[0], unsafe.Alignof(Record{}))
	}
	return (*Record)(unsafe.Pointer(&b[0])), nil
}

// Valid reports whether the marker pair of r is set.
func (r *Record) Valid() bool {
	return r.Key == KeyStored && r.NotKey == ^KeyStored
}

// clearContent zeroes every field but the marker pair.
func (r *Record) clearContent() {
	r.SoftwareVersion = 0
	r.AuxCode = 0
	r.Kind = 0
	r.Line = 0
	r.FileName = [FileNameLen]byte{}
	r.Registers = Registers{}
	r.ActiveCallStack = CallStack{}
	r.TaskCallStacks = [TaskCount]CallStack{}
}

// File returns the file name up to its terminator.
func (r *Record) File() string {
	b := r.FileName[:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// setFile stores name truncated to FileNameLen-1 bytes and zero fills
// the rest of the field, so the name is always terminated.
func (r *Record) setFile(name string) {
	n := copy(r.FileName[:FileNameLen-1], name)
	for i := n; i < FileNameLen; i++ {
		r.FileName[i] = 0
	}
}

// recordOrder is the byte order of the portable encoding.
var recordOrder = binary.LittleEndian

// MarshalBinary encodes r in a fixed little-endian layout without padding,
// independent of the host's struct layout.
func (r *Record) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(binary.Size(r))
	if err := binary.Write(&buf, recordOrder, r); err != nil {
		return nil, fmt.Errorf("coredump: encoding record: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a record encoded by MarshalBinary.
func (r *Record) UnmarshalBinary(data []byte) error {
	if want := binary.Size(r); len(data) != want {
		return fmt.Errorf("coredump: encoded record is %d bytes, want %d", len(data), want)
	}
	if err := binary.Read(bytes.NewReader(data), recordOrder, r); err != nil {
		return fmt.Errorf("coredump: decoding record: %w", err)
	}
	return nil
}
