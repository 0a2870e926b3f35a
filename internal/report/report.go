// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders core dump records for people and tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"golang.org/x/faultdump/core"
	"golang.org/x/faultdump/coredump"
)

// A Format is an output encoding.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat returns the format with the given name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case Text, JSON, YAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

// A View is the presentation of a record. Addresses and register
// values are hexadecimal strings.
type View struct {
	Kind            string     `json:"kind" yaml:"kind"`
	SoftwareVersion uint32     `json:"software_version" yaml:"software_version"`
	AuxCode         uint32     `json:"aux_code" yaml:"aux_code"`
	File            string     `json:"file" yaml:"file"`
	Line            uint32     `json:"line" yaml:"line"`
	Registers       []Register `json:"registers,omitempty" yaml:"registers,omitempty"`
	CallStack       []string   `json:"call_stack" yaml:"call_stack"`
	Tasks           []Task     `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// A Register is a named register value.
type Register struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// A Task is the call stack of one task slot of the record.
type Task struct {
	Slot      int      `json:"slot" yaml:"slot"`
	CallStack []string `json:"call_stack" yaml:"call_stack"`
}

func hex(v uint64) string {
	return fmt.Sprintf("0x%08x", v)
}

func callStack(s *coredump.CallStack) []string {
	out := make([]string, 0, s.Len())
	for _, a := range s[:s.Len()] {
		out = append(out, hex(uint64(a)))
	}
	return out
}

// NewView returns the view of rec. Registers are left out when none
// was captured, and so are empty task call stacks.
func NewView(rec *coredump.Record) *View {
	v := &View{
		Kind:            rec.Kind.String(),
		SoftwareVersion: rec.SoftwareVersion,
		AuxCode:         rec.AuxCode,
		File:            rec.File(),
		Line:            rec.Line,
		CallStack:       callStack(&rec.ActiveCallStack),
	}
	if !rec.Registers.IsZero() {
		for _, r := range rec.Registers.All() {
			v.Registers = append(v.Registers, Register{r.Name, hex(uint64(r.Value))})
		}
	}
	for i := range rec.TaskCallStacks {
		if s := &rec.TaskCallStacks[i]; s.Len() > 0 {
			v.Tasks = append(v.Tasks, Task{Slot: i, CallStack: callStack(s)})
		}
	}
	return v
}

// Write renders rec to w in format f.
func Write(w io.Writer, rec *coredump.Record, f Format) error {
	v := NewView(rec)
	switch f {
	case Text:
		return writeText(w, v)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", f)
}

func writeText(w io.Writer, v *View) error {
	t := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(t, "kind\t%s\n", v.Kind)
	fmt.Fprintf(t, "software version\t%d\n", v.SoftwareVersion)
	fmt.Fprintf(t, "aux code\t%d\n", v.AuxCode)
	fmt.Fprintf(t, "location\t%s:%d\n", v.File, v.Line)
	if len(v.Registers) > 0 {
		fmt.Fprintf(t, "\nregisters\n")
		for _, r := range v.Registers {
			fmt.Fprintf(t, "  %s\t%s\n", r.Name, r.Value)
		}
	}
	fmt.Fprintf(t, "\ncall stack\n")
	writeStack(t, v.CallStack)
	for _, task := range v.Tasks {
		fmt.Fprintf(t, "\ntask %d\n", task.Slot)
		writeStack(t, task.CallStack)
	}
	return t.Flush()
}

func writeStack(w io.Writer, s []string) {
	if len(s) == 0 {
		fmt.Fprintf(w, "  (empty)\n")
		return
	}
	for i, a := range s {
		fmt.Fprintf(w, "  #%d\t%s\n", i, a)
	}
}

// WriteCallStack renders a bare call stack, such as one recovered
// offline from a memory image.
func WriteCallStack(w io.Writer, s []core.Address, f Format) error {
	var cs []string
	for _, a := range s {
		if a == 0 {
			break
		}
		cs = append(cs, hex(uint64(a)))
	}
	v := struct {
		CallStack []string `json:"call_stack" yaml:"call_stack"`
	}{append([]string{}, cs...)}
	switch f {
	case Text:
		t := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		writeStack(t, v.CallStack)
		return t.Flush()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", f)
}

// Summary returns a one-line description of rec, as used in listings.
func Summary(rec *coredump.Record) string {
	top := "-"
	if rec.ActiveCallStack.Len() > 0 {
		top = hex(uint64(rec.ActiveCallStack[0]))
	}
	return fmt.Sprintf("%s at %s:%d aux=%d top=%s", rec.Kind, rec.File(), rec.Line, rec.AuxCode, top)
}

// Mappings writes the memory map of m in the layout of a mappings table.
func Mappings(w io.Writer, m *core.Memory) error {
	t := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(t, "min\tmax\tperm\tname\t\n")
	for _, mp := range m.Mappings() {
		fmt.Fprintf(t, "%x\t%x\t%s\t%s\t\n", uint64(mp.Min()), uint64(mp.Max()), mp.Perm().Short(), mp.Name())
	}
	return t.Flush()
}
