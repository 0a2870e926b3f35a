// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package target simulates the memory and CPU state of a small
// microcontroller closely enough to exercise fault capture: RAM, flash
// and a System Control Block, a full-descending main stack, task
// stacks registered in a task control block table, and exception
// entry that pushes a register frame.
package target

import (
	"errors"
	"fmt"

	"golang.org/x/faultdump/arch"
	"golang.org/x/faultdump/coredump"
	"golang.org/x/faultdump/core"
)

// scbBase is where the System Control Block registers are mapped.
const (
	scbBase = 0xE000ED00
	scbSize = 0x100
)

// Config describes the simulated device.
type Config struct {
	Arch          *arch.Architecture
	RAM           core.Range
	Flash         core.Range
	Marker        uint64 // stack-boundary sentinel
	TaskSlots     int    // slots in the task control block table
	TaskStackSize int64  // bytes of RAM per task stack
}

// DefaultConfig returns a device matching coredump.DefaultConfig.
func DefaultConfig() Config {
	c := coredump.DefaultConfig()
	return Config{
		Arch:          c.Arch,
		RAM:           c.RAM,
		Flash:         c.Code,
		Marker:        c.StackMarker,
		TaskSlots:     coredump.TaskCount + 1,
		TaskStackSize: 0x400,
	}
}

// ErrStackOverflow is returned when a push would leave a stack's region.
var ErrStackOverflow = errors.New("target: stack overflow")

// A Device is a simulated target. It implements coredump.RegisterCapture
// and coredump.TaskTable.
type Device struct {
	coredump.StackedRegisters

	cfg   Config
	Mem   *core.Memory
	Main  *Stack
	tasks []*Stack // nil for an empty slot
	next  core.Address
}

// New builds a device with zeroed RAM.
func New(cfg Config) (*Device, error) {
	if cfg.Arch == nil {
		return nil, fmt.Errorf("target: no architecture")
	}
	if cfg.RAM.Empty() || cfg.Flash.Empty() {
		return nil, fmt.Errorf("target: empty memory range (ram %s, flash %s)", cfg.RAM, cfg.Flash)
	}
	mem := core.NewMemory(cfg.Arch.ByteOrder)
	if _, err := mem.Map("ram", cfg.RAM.Min, cfg.RAM.Size(), core.Read|core.Write); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if _, err := mem.Map("flash", cfg.Flash.Min, cfg.Flash.Size(), core.Read|core.Exec); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if len(cfg.Arch.FaultStatus) > 0 {
		if _, err := mem.Map("scb", scbBase, scbSize, core.Read|core.Write); err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
	}

	word := int64(cfg.Arch.PointerSize)
	taskArea := int64(cfg.TaskSlots) * cfg.TaskStackSize
	top := cfg.RAM.Max.Add(1).Align(word)
	base := cfg.RAM.Min.Add(taskArea)
	if base >= top {
		return nil, fmt.Errorf("target: task stacks (%d bytes) leave no room for the main stack in %s", taskArea, cfg.RAM)
	}
	d := &Device{
		StackedRegisters: coredump.StackedRegisters{Mem: mem, Arch: cfg.Arch},
		cfg:              cfg,
		Mem:              mem,
		tasks:            make([]*Stack, cfg.TaskSlots),
		next:             cfg.RAM.Min,
	}
	d.Main = newStack(mem, cfg.Arch, base, top)
	return d, nil
}

// Config returns the configuration d was built with.
func (d *Device) Config() Config {
	return d.cfg
}

// Current implements coredump.RegisterCapture with the main stack's
// stack and frame pointers.
func (d *Device) Current() (sp, fp core.Address) {
	return d.Main.sp, d.Main.fp
}

// SetFaultStatus writes a fault status register such as "CFSR".
func (d *Device) SetFaultStatus(name string, v uint32) error {
	for _, r := range d.cfg.Arch.FaultStatus {
		if r.Name == name {
			if !d.Mem.WriteUint32(core.Address(r.Addr), v) {
				return fmt.Errorf("target: %s at %#x not writeable", name, r.Addr)
			}
			return nil
		}
	}
	return fmt.Errorf("target: %s has no fault status register %s", d.cfg.Arch, name)
}

// SpawnTask creates a task with its own stack in the first free slot
// of the task table. The stack top is marked with two sentinel words,
// as an RTOS does when it creates a task.
func (d *Device) SpawnTask() (int, *Stack, error) {
	slot := -1
	for i, t := range d.tasks {
		if t == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return 0, nil, fmt.Errorf("target: task table full (%d slots)", len(d.tasks))
	}
	if d.next.Add(d.cfg.TaskStackSize) > d.Main.base {
		return 0, nil, fmt.Errorf("target: no RAM left for a task stack")
	}
	s := newStack(d.Mem, d.cfg.Arch, d.next, d.next.Add(d.cfg.TaskStackSize))
	d.next = d.next.Add(d.cfg.TaskStackSize)
	if err := s.PlantMarker(d.cfg.Marker, 2); err != nil {
		return 0, nil, err
	}
	d.tasks[slot] = s
	return slot, s, nil
}

// KillTask empties slot i of the task table. Its stack is not reused.
func (d *Device) KillTask(i int) {
	if i >= 0 && i < len(d.tasks) {
		d.tasks[i] = nil
	}
}

// Len implements coredump.TaskTable.
func (d *Device) Len() int {
	return len(d.tasks)
}

// Task implements coredump.TaskTable.
func (d *Device) Task(i int) (coredump.Task, bool) {
	if i < 0 || i >= len(d.tasks) || d.tasks[i] == nil {
		return coredump.Task{}, false
	}
	s := d.tasks[i]
	return coredump.Task{SP: s.sp, FP: s.fp}, true
}
