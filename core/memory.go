// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// A Memory is an image of a target's address space, made of
// non-overlapping mappings. The zero value is not usable; use NewMemory.
type Memory struct {
	order    binary.ByteOrder
	mappings []*Mapping // sorted by min
}

// NewMemory returns an empty memory image whose multi-byte values are
// laid out in the given byte order.
func NewMemory(order binary.ByteOrder) *Memory {
	return &Memory{order: order}
}

// ByteOrder returns the byte order of the target.
func (m *Memory) ByteOrder() binary.ByteOrder {
	return m.order
}

// Mappings returns the mappings of m, sorted by address.
func (m *Memory) Mappings() []*Mapping {
	return m.mappings
}

// Map adds a zero-filled mapping of size bytes at min.
func (m *Memory) Map(name string, min Address, size int64, perm Perm) (*Mapping, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mapping %s at %x has size %d", name, min, size)
	}
	return m.MapData(name, min, perm, make([]byte, size))
}

// MapData adds a mapping at min backed by data. The memory image
// reads and writes data in place.
func (m *Memory) MapData(name string, min Address, perm Perm, data []byte) (*Mapping, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("mapping %s at %x is empty", name, min)
	}
	max := min.Add(int64(len(data)))
	if max < min {
		return nil, fmt.Errorf("mapping %s at %x wraps around the address space", name, min)
	}
	n := &Mapping{name: name, min: min, max: max, perm: perm, contents: data}
	i := sort.Search(len(m.mappings), func(i int) bool {
		return m.mappings[i].min >= min
	})
	if i > 0 && m.mappings[i-1].max > min {
		p := m.mappings[i-1]
		return nil, fmt.Errorf("mapping %s [%x %x] overlaps %s [%x %x]", name, min, max, p.name, p.min, p.max)
	}
	if i < len(m.mappings) && m.mappings[i].min < max {
		p := m.mappings[i]
		return nil, fmt.Errorf("mapping %s [%x %x] overlaps %s [%x %x]", name, min, max, p.name, p.min, p.max)
	}
	m.mappings = append(m.mappings, nil)
	copy(m.mappings[i+1:], m.mappings[i:])
	m.mappings[i] = n
	return n, nil
}

// findMapping returns the mapping holding a, or nil.
func (m *Memory) findMapping(a Address) *Mapping {
	i := sort.Search(len(m.mappings), func(i int) bool {
		return m.mappings[i].max > a
	})
	if i == len(m.mappings) || m.mappings[i].min > a {
		return nil
	}
	return m.mappings[i]
}

// ReadableN reports whether the n bytes starting at address a are readable.
func (m *Memory) ReadableN(a Address, n int64) bool {
	for {
		p := m.findMapping(a)
		if p == nil || p.perm&Read == 0 {
			return false
		}
		c := p.max.Sub(a)
		if n <= c {
			return true
		}
		n -= c
		a = a.Add(c)
	}
}

// slice returns the n bytes at a if they sit inside a single mapping
// carrying all of perm.
func (m *Memory) slice(a Address, n int64, perm Perm) []byte {
	p := m.findMapping(a)
	if p == nil || p.perm&perm != perm {
		return nil
	}
	off := a.Sub(p.min)
	if n > p.Size()-off {
		return nil
	}
	return p.contents[off : off+n]
}

// ReadAt copies len(b) bytes starting at a into b. It reports false,
// copying nothing, if any of those bytes is not readable.
func (m *Memory) ReadAt(b []byte, a Address) bool {
	if !m.ReadableN(a, int64(len(b))) {
		return false
	}
	for len(b) > 0 {
		p := m.findMapping(a)
		n := copy(b, p.contents[a.Sub(p.min):])
		b = b[n:]
		a = a.Add(int64(n))
	}
	return true
}

// WriteAt copies b into memory starting at a. It reports false, writing
// nothing, unless all of b lands in a single writeable mapping.
func (m *Memory) WriteAt(b []byte, a Address) bool {
	dst := m.slice(a, int64(len(b)), Write)
	if dst == nil {
		return false
	}
	copy(dst, b)
	return true
}

// ReadUint32 returns the 32-bit value at a.
func (m *Memory) ReadUint32(a Address) (uint32, bool) {
	b := m.slice(a, 4, Read)
	if b == nil {
		return 0, false
	}
	return m.order.Uint32(b), true
}

// ReadUint64 returns the 64-bit value at a.
func (m *Memory) ReadUint64(a Address) (uint64, bool) {
	b := m.slice(a, 8, Read)
	if b == nil {
		return 0, false
	}
	return m.order.Uint64(b), true
}

// ReadWord returns the size-byte value at a. Size must be 4 or 8.
func (m *Memory) ReadWord(a Address, size int) (uint64, bool) {
	switch size {
	case 4:
		v, ok := m.ReadUint32(a)
		return uint64(v), ok
	case 8:
		return m.ReadUint64(a)
	}
	return 0, false
}

// WriteUint32 stores v at a. It reports false if a is not writeable.
func (m *Memory) WriteUint32(a Address, v uint32) bool {
	b := m.slice(a, 4, Write)
	if b == nil {
		return false
	}
	m.order.PutUint32(b, v)
	return true
}
