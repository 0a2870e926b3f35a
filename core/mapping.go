// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "strings"

// A Mapping represents a contiguous subset of the target's address space.
type Mapping struct {
	name string
	min  Address
	max  Address // just beyond the last byte
	perm Perm

	// Contents of the mapping. Length=max-min.
	contents []byte
}

// Name returns the name the mapping was created with ("ram", "flash", ...).
func (m *Mapping) Name() string {
	return m.name
}

// Min returns the lowest address of the mapping.
func (m *Mapping) Min() Address {
	return m.min
}

// Max returns the address of the byte just beyond the mapping.
func (m *Mapping) Max() Address {
	return m.max
}

// Size returns int64(Max-Min)
func (m *Mapping) Size() int64 {
	return m.max.Sub(m.min)
}

// Range returns the inclusive address window covered by the mapping.
func (m *Mapping) Range() Range {
	return Range{Min: m.min, Max: m.max - 1}
}

// Perm returns the permissions on the mapping.
func (m *Mapping) Perm() Perm {
	return m.perm
}

// Contents returns the bytes backing the mapping. Writes through the
// returned slice are visible to readers of the memory image.
func (m *Mapping) Contents() []byte {
	return m.contents
}

// A Perm represents the permissions allowed for a Mapping.
type Perm uint8

const (
	Read Perm = 1 << iota
	Write
	Exec
)

func (p Perm) String() string {
	var a [3]string
	b := a[:0]
	if p&Read != 0 {
		b = append(b, "Read")
	}
	if p&Write != 0 {
		b = append(b, "Write")
	}
	if p&Exec != 0 {
		b = append(b, "Exec")
	}
	if len(b) == 0 {
		b = append(b, "None")
	}
	return strings.Join(b, "|")
}

// Short returns the permissions in "rwx" form.
func (p Perm) Short() string {
	b := []byte("---")
	if p&Read != 0 {
		b[0] = 'r'
	}
	if p&Write != 0 {
		b[1] = 'w'
	}
	if p&Exec != 0 {
		b[2] = 'x'
	}
	return string(b)
}
