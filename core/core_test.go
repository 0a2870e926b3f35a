// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"encoding/binary"
	"testing"
)

func TestRangeContains(t *testing.T) {
	r := Range{Min: 0x100000, Max: 0x200000}
	good := []Address{0x100000, 0x100004, 0x1fffff, 0x200000}
	for _, a := range good {
		if !r.Contains(a) {
			t.Errorf("%#x is outside %s; should be inside", a, r)
		}
	}
	bad := []Address{0, 0xfffff, 0x200001, ^Address(0)}
	for _, a := range bad {
		if r.Contains(a) {
			t.Errorf("%#x is inside %s; should be outside", a, r)
		}
	}
}

func TestRangeContainsN(t *testing.T) {
	r := Range{Min: 0x1000, Max: 0x1fff}
	tests := []struct {
		a    Address
		n    int64
		want bool
	}{
		{0x1000, 4, true},
		{0x1ffc, 4, true},
		{0x1ffd, 4, false},
		{0xffc, 8, false},
		{0x1000, 0, false},
		{0x1000, 0x1000, true},
		{0x1000, 0x1001, false},
	}
	for _, test := range tests {
		if got := r.ContainsN(test.a, test.n); got != test.want {
			t.Errorf("ContainsN(%#x, %d) = %t, want %t", test.a, test.n, got, test.want)
		}
	}

	top := Range{Min: ^Address(0) - 3, Max: ^Address(0)}
	if !top.ContainsN(^Address(0)-3, 4) {
		t.Errorf("last word of the address space should fit in %s", top)
	}
	if top.ContainsN(^Address(0)-3, 5) {
		t.Errorf("read wrapping the address space should not fit in %s", top)
	}
}

func TestRangeOverlaps(t *testing.T) {
	ram := Range{Min: 0x100000, Max: 0x200000}
	flash := Range{Min: 0x400000, Max: 0x500000}
	if ram.Overlaps(flash) {
		t.Errorf("%s overlaps %s", ram, flash)
	}
	if !ram.Overlaps(Range{Min: 0x200000, Max: 0x300000}) {
		t.Errorf("ranges sharing a bound should overlap")
	}
	if ram.Overlaps(Range{Min: 1, Max: 0}) {
		t.Errorf("empty range should not overlap anything")
	}
	if got := NewRange(0x1000, 0x100).Size(); got != 0x100 {
		t.Errorf("Size = %#x, want 0x100", got)
	}
}

func TestAddressAlign(t *testing.T) {
	if got := Address(0x200001).Align(4); got != 0x200000 {
		t.Errorf("Align = %#x, want 0x200000", got)
	}
	if got := Address(0x1007).Add(1).Sub(0x1000); got != 8 {
		t.Errorf("Sub = %d, want 8", got)
	}
}

func TestPermString(t *testing.T) {
	tests := []struct {
		p     Perm
		long  string
		short string
	}{
		{0, "None", "---"},
		{Read, "Read", "r--"},
		{Read | Write, "Read|Write", "rw-"},
		{Read | Exec, "Read|Exec", "r-x"},
	}
	for _, test := range tests {
		if got := test.p.String(); got != test.long {
			t.Errorf("String() = %q, want %q", got, test.long)
		}
		if got := test.p.Short(); got != test.short {
			t.Errorf("Short() = %q, want %q", got, test.short)
		}
	}
}

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory(binary.LittleEndian)
	if _, err := m.Map("ram", 0x1000, 0x100, Read|Write); err != nil {
		t.Fatalf("can't map ram: %v", err)
	}
	if _, err := m.Map("flash", 0x4000, 0x100, Read|Exec); err != nil {
		t.Fatalf("can't map flash: %v", err)
	}
	if _, err := m.Map("ram2", 0x1100, 0x100, Read|Write); err != nil {
		t.Fatalf("can't map ram2: %v", err)
	}
	return m
}

func TestMapOverlap(t *testing.T) {
	m := newTestMemory(t)
	if _, err := m.Map("bad", 0x10f0, 0x20, Read); err == nil {
		t.Errorf("overlapping mapping was accepted")
	}
	if _, err := m.Map("bad", 0x3ff0, 0x20, Read); err == nil {
		t.Errorf("overlapping mapping was accepted")
	}
	if _, err := m.Map("bad", 0x8000, 0, Read); err == nil {
		t.Errorf("empty mapping was accepted")
	}
	ms := m.Mappings()
	if len(ms) != 3 {
		t.Fatalf("got %d mappings, want 3", len(ms))
	}
	for i := 1; i < len(ms); i++ {
		if ms[i-1].Min() >= ms[i].Min() {
			t.Errorf("mappings not sorted: %x before %x", ms[i-1].Min(), ms[i].Min())
		}
	}
}

func TestReadWrite(t *testing.T) {
	m := newTestMemory(t)
	if !m.WriteUint32(0x1010, 0xdeadbeef) {
		t.Fatalf("write to ram failed")
	}
	if v, ok := m.ReadUint32(0x1010); !ok || v != 0xdeadbeef {
		t.Errorf("ReadUint32 = %#x, %t; want 0xdeadbeef, true", v, ok)
	}
	if v, ok := m.ReadWord(0x1010, 4); !ok || v != 0xdeadbeef {
		t.Errorf("ReadWord = %#x, %t; want 0xdeadbeef, true", v, ok)
	}
	if !m.WriteAt([]byte{0xef, 0xcd, 0xab, 0x89, 0x67, 0x45, 0x23, 0x01}, 0x1020) {
		t.Fatalf("8-byte write to ram failed")
	}
	if v, ok := m.ReadUint64(0x1020); !ok || v != 0x0123456789abcdef {
		t.Errorf("ReadUint64 = %#x, %t", v, ok)
	}
	if m.WriteUint32(0x4000, 1) {
		t.Errorf("write to flash succeeded")
	}
	if _, ok := m.ReadUint32(0x2000); ok {
		t.Errorf("read of unmapped address succeeded")
	}
	// A word straddling two mappings is not a single-mapping read.
	if _, ok := m.ReadUint32(0x10fe); ok {
		t.Errorf("read straddling a mapping boundary succeeded")
	}
	if _, ok := m.ReadWord(0x1010, 2); ok {
		t.Errorf("read of unsupported size succeeded")
	}
}

func TestReadAt(t *testing.T) {
	m := newTestMemory(t)
	m.WriteUint32(0x10fc, 0x11223344)
	m.WriteUint32(0x1100, 0x55667788)
	b := make([]byte, 8)
	if !m.ReadAt(b, 0x10fc) {
		t.Fatalf("ReadAt across adjacent mappings failed")
	}
	want := []byte{0x44, 0x33, 0x22, 0x11, 0x88, 0x77, 0x66, 0x55}
	for i := range want {
		if b[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, b[i], want[i])
		}
	}
	if m.ReadAt(b, 0x11fc) {
		t.Errorf("ReadAt past the end of memory succeeded")
	}
	if !m.ReadableN(0x1000, 0x200) {
		t.Errorf("adjacent mappings should be readable as a whole")
	}
	if m.ReadableN(0x1f00, 4) {
		t.Errorf("unmapped range reported readable")
	}
}

func TestWriteAt(t *testing.T) {
	m := newTestMemory(t)
	if !m.WriteAt([]byte{1, 2, 3, 4}, 0x1010) {
		t.Fatalf("WriteAt to ram failed")
	}
	if v, ok := m.ReadUint32(0x1010); !ok || v != 0x04030201 {
		t.Errorf("ReadUint32 = %#x, %t; want 0x4030201, true", v, ok)
	}
	if m.WriteAt([]byte{1, 2, 3, 4}, 0x4000) {
		t.Errorf("WriteAt to flash succeeded")
	}
	// Writes do not straddle mappings, unlike ReadAt.
	if m.WriteAt([]byte{9, 9, 9, 9}, 0x10fe) {
		t.Errorf("WriteAt straddling a mapping boundary succeeded")
	}
	if v, _ := m.ReadUint32(0x10fc); v != 0 {
		t.Errorf("failed WriteAt changed memory: %#x", v)
	}
}
