// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coredump captures the state of a target at the moment of a
// fatal fault into a record that survives the following reset, and
// hands that record to the application once after restart.
//
// A fault handler calls Store with the exception stack pointer, or an
// assertion calls it with none. The first fault of a reset cycle wins;
// later calls are ignored until the application calls Reset. At startup
// the application checks IsSaved, reads the record with Get, saves it
// somewhere permanent and calls Reset.
//
// Store runs when the system is already failing, so it reports nothing:
// a bad stack pointer gives an empty call stack, a missing platform hook
// leaves its fields zero, and an over-long file name is truncated.
//
// The record itself must live in memory the startup code does not
// zero. The package does not place it there; the owner of that memory
// passes the record to New, typically obtained with RecordAt.
package coredump

import (
	"sync/atomic"

	"golang.org/x/faultdump/arch"
	"golang.org/x/faultdump/backtrace"
	"golang.org/x/faultdump/core"
)

// A Strategy selects how the active call stack is recovered.
type Strategy string

const (
	// Scan searches the stack for code addresses (backtrace.Scanner).
	Scan Strategy = "scan"
	// FramePointer follows saved frame pointers (backtrace.FramePointerWalker).
	FramePointer Strategy = "framepointer"
	// RuntimeCallers uses the Go runtime's unwinder (backtrace.Callers).
	RuntimeCallers Strategy = "callers"
)

// Config holds the target constants a Dump is built with.
type Config struct {
	Arch            *arch.Architecture
	SoftwareVersion uint32
	RAM             core.Range // valid stack addresses
	Code            core.Range // valid return addresses
	StackMarker     uint64     // stack-boundary sentinel
	MaxSearchDepth  int        // words searched by the stack scanner
	Strategy        Strategy
}

// DefaultConfig returns the configuration of the reference target.
func DefaultConfig() Config {
	return Config{
		Arch:            &arch.CortexM,
		SoftwareVersion: 1234,
		RAM:             core.Range{Min: 0x100000, Max: 0x200000},
		Code:            core.Range{Min: 0x400000, Max: 0x500000},
		StackMarker:     0xEFEFEFEF,
		MaxSearchDepth:  1024,
		Strategy:        Scan,
	}
}

// An Option configures a Dump.
type Option func(*Dump)

// WithMemory gives the Dump access to target memory. The stack-scanning
// and frame-pointer strategies and the per-task call stacks need it.
func WithMemory(m backtrace.WordReader) Option {
	return func(d *Dump) { d.mem = m }
}

// WithBacktracer overrides the strategy selected by Config.
func WithBacktracer(b backtrace.Backtracer) Option {
	return func(d *Dump) { d.bt = b }
}

// WithRegisters installs the register capture hook.
func WithRegisters(rc RegisterCapture) Option {
	return func(d *Dump) { d.regs = rc }
}

// WithTasks enables per-task call stacks read from tt.
func WithTasks(tt TaskTable) Option {
	return func(d *Dump) { d.tasks = tt }
}

// A Dump owns the process-wide retained record and captures faults into it.
type Dump struct {
	rec *Record
	cfg Config

	mem     backtrace.WordReader
	bt      backtrace.Backtracer
	scanner *backtrace.Scanner // per-task stacks; nil without memory
	regs    RegisterCapture
	tasks   TaskTable

	// busy is held while a capture is in progress. It lives in ordinary
	// memory, so a reset in the middle of a capture releases it.
	busy atomic.Bool
}

// New returns a Dump capturing into rec. The configuration and options
// are fixed for the lifetime of the Dump.
func New(rec *Record, cfg Config, opts ...Option) *Dump {
	if cfg.Arch == nil {
		cfg.Arch = &arch.CortexM
	}
	d := &Dump{rec: rec, cfg: cfg, regs: NoRegisters{}}
	for _, opt := range opts {
		opt(d)
	}
	if d.mem != nil {
		d.scanner = &backtrace.Scanner{
			Mem:      d.mem,
			WordSize: cfg.Arch.PointerSize,
			RAM:      cfg.RAM,
			Code:     cfg.Code,
			Marker:   cfg.StackMarker,
			MaxDepth: cfg.MaxSearchDepth,
		}
	}
	if d.bt == nil {
		d.bt = d.backtracer()
	}
	return d
}

// backtracer builds the strategy named by the configuration. Strategies
// that need memory capture nothing without it.
func (d *Dump) backtracer() backtrace.Backtracer {
	switch d.cfg.Strategy {
	case RuntimeCallers:
		// Drop Store so the stack starts at its caller: Assert or
		// HardFault when those are used, then the code that faulted.
		return &backtrace.Callers{Skip: 1}
	case FramePointer:
		if d.mem != nil {
			return &backtrace.FramePointerWalker{
				Mem:      d.mem,
				WordSize: d.cfg.Arch.PointerSize,
				RAM:      d.cfg.RAM,
				Code:     d.cfg.Code,
			}
		}
	default:
		if d.scanner != nil {
			return d.scanner
		}
	}
	return nothing{}
}

// nothing is the backtracer of a platform without a usable strategy.
type nothing struct{}

func (nothing) Backtrace(_ backtrace.Frame, out []core.Address) int {
	for i := range out {
		out[i] = 0
	}
	return 0
}

// Config returns the configuration d was built with.
func (d *Dump) Config() Config {
	return d.cfg
}

// IsSaved reports whether the record holds a capture: Key holds
// KeyStored and NotKey its exact complement. Zeroed memory, leftover
// garbage and a record with only one of the two fields set all fail.
func (d *Dump) IsSaved() bool {
	return atomic.LoadUint32(&d.rec.Key) == KeyStored &&
		atomic.LoadUint32(&d.rec.NotKey) == ^KeyStored
}

// Store captures a fault into the record. A non-zero sp is the stack
// pointer of a hardware exception, where the CPU pushed its registers;
// zero means a software assertion. File and line locate the fault and
// aux is a free diagnostic number such as the exception vector.
//
// Store does nothing if the record already holds a capture or another
// capture is in progress. It is safe to call from a fault handler: it
// does not block, and never dereferences memory outside the configured
// windows.
func (d *Dump) Store(sp core.Address, file string, line, aux uint32) {
	// The first fault is what matters; later ones are usually fallout.
	if d.IsSaved() {
		return
	}
	if !d.busy.CompareAndSwap(false, true) {
		return
	}
	defer d.busy.Store(false)
	// A capture may have completed between the check and the claim.
	if d.IsSaved() {
		return
	}

	r := d.rec
	// Invalidate first: a reset before the capture completes must leave
	// no valid-looking record behind.
	atomic.StoreUint32(&r.Key, 0)
	atomic.StoreUint32(&r.NotKey, 0)
	r.clearContent()
	r.SoftwareVersion = d.cfg.SoftwareVersion
	r.AuxCode = aux

	if sp != 0 {
		r.Kind = HardwareException
		d.regs.ExceptionFrame(sp, &r.Registers)
		d.regs.FaultStatus(&r.Registers)
	} else {
		r.Kind = SoftwareAssertion
	}

	r.Line = line
	r.setFile(file)

	curSP, fp := d.regs.Current()
	if sp == 0 {
		sp = curSP
	}
	d.bt.Backtrace(backtrace.Frame{SP: sp, FP: fp}, r.ActiveCallStack[:])

	if d.tasks != nil && d.scanner != nil {
		n := 0
		for i := 0; i < d.tasks.Len() && n < TaskCount; i++ {
			t, ok := d.tasks.Task(i)
			if !ok || t.SP == 0 {
				continue
			}
			d.scanner.Walk(t.SP, r.TaskCallStacks[n][:])
			n++
		}
	}

	atomic.StoreUint32(&r.NotKey, ^KeyStored)
	atomic.StoreUint32(&r.Key, KeyStored)
}

// Get returns a copy of the record. The copy is only meaningful when
// IsSaved reports true.
func (d *Dump) Get() Record {
	return *d.rec
}

// Reset clears the marker pair so the next fault is captured. The
// rest of the record is left as is; it is ignored until overwritten.
func (d *Dump) Reset() {
	atomic.StoreUint32(&d.rec.Key, 0)
	atomic.StoreUint32(&d.rec.NotKey, 0)
}
