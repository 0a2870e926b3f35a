// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the description of a target from YAML:
// its architecture, memory windows and capture settings.
//
// Numbers may be written in any base strconv.ParseUint accepts with
// base 0, so addresses read naturally:
//
//	arch: cortex-m
//	software_version: 1234
//	ram: {min: 0x100000, max: 0x200000}
//	code: {min: 0x400000, max: 0x500000}
//	stack_marker: 0xEFEFEFEF
//	max_search_depth: 1024
//	backtrace: scan
//	registers: true
//	tasks: true
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"golang.org/x/faultdump/arch"
	"golang.org/x/faultdump/core"
	"golang.org/x/faultdump/coredump"
)

// Hex is an unsigned number that is written back in hexadecimal.
type Hex uint64

func (h *Hex) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", n.Line)
	}
	v, err := strconv.ParseUint(n.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: bad number %q: %w", n.Line, n.Value, err)
	}
	*h = Hex(v)
	return nil
}

func (h Hex) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%#x", uint64(h))}, nil
}

// A Window is an inclusive address range.
type Window struct {
	Min Hex `yaml:"min"`
	Max Hex `yaml:"max"`
}

// Range returns w as a core.Range.
func (w Window) Range() core.Range {
	return core.Range{Min: core.Address(w.Min), Max: core.Address(w.Max)}
}

// Config is the target description.
type Config struct {
	Arch            string `yaml:"arch"`
	SoftwareVersion Hex    `yaml:"software_version"`
	RAM             Window `yaml:"ram"`
	Code            Window `yaml:"code"`
	StackMarker     Hex    `yaml:"stack_marker"`
	MaxSearchDepth  int    `yaml:"max_search_depth"`
	Backtrace       string `yaml:"backtrace"`
	// Registers enables register capture on hardware faults.
	Registers bool `yaml:"registers"`
	// Tasks enables per-task call stacks.
	Tasks bool `yaml:"tasks"`
}

// Default returns the description of the reference target.
func Default() *Config {
	d := coredump.DefaultConfig()
	return &Config{
		Arch:            d.Arch.Name,
		SoftwareVersion: Hex(d.SoftwareVersion),
		RAM:             Window{Hex(d.RAM.Min), Hex(d.RAM.Max)},
		Code:            Window{Hex(d.Code.Min), Hex(d.Code.Max)},
		StackMarker:     Hex(d.StackMarker),
		MaxSearchDepth:  d.MaxSearchDepth,
		Backtrace:       string(d.Strategy),
		Registers:       true,
		Tasks:           true,
	}
}

// Load reads and validates the description in the named file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a description. Fields that are not
// given keep their default values; unknown fields are an error.
func Parse(data []byte) (*Config, error) {
	c := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Validate checks that c describes a usable target.
func (c *Config) Validate() error {
	a, err := arch.Lookup(c.Arch)
	if err != nil {
		return err
	}
	ram, code := c.RAM.Range(), c.Code.Range()
	if ram.Empty() {
		return fmt.Errorf("ram range %s is empty", ram)
	}
	if code.Empty() {
		return fmt.Errorf("code range %s is empty", code)
	}
	if code.Contains(0) {
		return fmt.Errorf("code range %s includes address 0, which ends a call stack", code)
	}
	if ram.Overlaps(code) {
		return fmt.Errorf("ram range %s overlaps code range %s", ram, code)
	}
	if c.SoftwareVersion > 0xFFFFFFFF {
		return fmt.Errorf("software_version %#x does not fit in 32 bits", uint64(c.SoftwareVersion))
	}
	if a.PointerSize == 4 && c.StackMarker > 0xFFFFFFFF {
		return fmt.Errorf("stack_marker %#x does not fit in a %s word", uint64(c.StackMarker), a)
	}
	if c.MaxSearchDepth <= 0 {
		return fmt.Errorf("max_search_depth must be positive, got %d", c.MaxSearchDepth)
	}
	switch coredump.Strategy(c.Backtrace) {
	case coredump.Scan, coredump.FramePointer, coredump.RuntimeCallers:
	default:
		return fmt.Errorf("unknown backtrace strategy %q", c.Backtrace)
	}
	return nil
}

// Coredump returns the capture configuration c describes. It panics if
// c has not been validated.
func (c *Config) Coredump() coredump.Config {
	a, err := arch.Lookup(c.Arch)
	if err != nil {
		panic(err)
	}
	return coredump.Config{
		Arch:            a,
		SoftwareVersion: uint32(c.SoftwareVersion),
		RAM:             c.RAM.Range(),
		Code:            c.Code.Range(),
		StackMarker:     uint64(c.StackMarker),
		MaxSearchDepth:  c.MaxSearchDepth,
		Strategy:        coredump.Strategy(c.Backtrace),
	}
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
