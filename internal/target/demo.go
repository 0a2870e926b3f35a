// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

import (
	"golang.org/x/faultdump/arch"
	"golang.org/x/faultdump/coredump"
	"golang.org/x/faultdump/core"
)

// Offsets into flash of the code locations the demo program uses.
const (
	MainReturn  = 0x0100 // in main, after the call to call1
	Call1Return = 0x0200 // in call1, after the call to call2
	Call2Return = 0x0300 // in call2, after the call to call3
	Call3Fault  = 0x0400 // the faulting instruction in call3
	TaskReturn  = 0x0600 // in a task body, first task; later tasks follow every 0x10
)

// Values the demo functions keep in their locals.
const (
	Call1Local = 0x11111111
	Call2Local = 0x22222222
	Call3Local = 0x33333333
	TaskLocal  = 0x44444444
)

// excReturnMain is the EXC_RETURN value for a return to thread mode on
// the main stack.
const excReturnMain = 0xFFFFFFF9

// DemoOptions selects the fault the demo program raises.
type DemoOptions struct {
	Hard  bool // divide by zero in call3 instead of a failed assertion
	Tasks int  // tasks blocked in their bodies when the fault hits
}

// Code returns the flash address at offset off.
func (d *Device) Code(off int64) core.Address {
	return d.cfg.Flash.Min.Add(off)
}

// Demo runs the demo program on d, capturing its fault into dump: main
// calls call1, which calls call2, which calls call3. Call3 either fails
// an assertion or divides by zero, the latter taking the hard fault
// path with an exception frame on the main stack. Each function leaves
// five words of locals on the stack, none of which look like code.
func (d *Device) Demo(dump *coredump.Dump, opts DemoOptions) error {
	for i := 0; i < opts.Tasks; i++ {
		_, t, err := d.SpawnTask()
		if err != nil {
			return err
		}
		if err := t.Call(d.Code(TaskReturn+0x10*int64(i)), TaskLocal, TaskLocal); err != nil {
			return err
		}
	}

	s := d.Main
	if err := s.PlantMarker(d.cfg.Marker, 2); err != nil {
		return err
	}
	frames := []struct {
		ret   int64
		local uint64
	}{
		{MainReturn, Call1Local},
		{Call1Return, Call2Local},
		{Call2Return, Call3Local},
	}
	for _, f := range frames {
		if err := s.Call(d.Code(f.ret), f.local, f.local, f.local, f.local, f.local); err != nil {
			return err
		}
	}

	if !opts.Hard {
		dump.Assert(false, 0)
		return nil
	}

	if err := d.SetFaultStatus("CFSR", 0x02000000); err != nil { // DIVBYZERO
		return err
	}
	if err := d.SetFaultStatus("HFSR", 0x40000000); err != nil { // FORCED
		return err
	}
	msp, err := s.Exception(
		2, 0, 0, 0, 0, // R0 numerator, R1 zero divisor
		uint32(d.Code(Call2Return)),
		uint32(d.Code(Call3Fault)),
		0x01000000, // Thumb state
	)
	if err != nil {
		return err
	}
	sp := arch.SelectStack(excReturnMain, uint64(msp), 0)
	dump.HardFault(core.Address(sp), 3)
	return nil
}
