// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import "testing"

func TestDataSrcFields(t *testing.T) {
	// Build a value with a distinct bit pattern in each field and
	// confirm each accessor reads back only its own bits.
	var d DataSrc
	d |= 0x1f            // MemOp: all 5 bits
	d |= 0x2a5 << 5       // MemLvl: 14 bits
	d |= 0x15 << 19       // MemSnoop: 5 bits
	d |= 0x3 << 24        // MemLock: 2 bits
	d |= 0x2a << 26       // MemTLB: 6 bits
	d |= 0x9 << 33        // MemLvlNum: 4 bits
	d |= 1 << 37          // MemRemote
	d |= 0x3 << 38        // MemSnoopX: 2 bits
	d |= 0x5 << 40        // MemBlk: 3 bits
	d |= 0x7 << 43        // MemHops: 3 bits

	if got := d.MemOp(); got != 0x1f {
		t.Errorf("MemOp() = %#x, want 0x1f", got)
	}
	if got := d.MemLvl(); got != 0x2a5 {
		t.Errorf("MemLvl() = %#x, want 0x2a5", got)
	}
	if got := d.MemSnoop(); got != 0x15 {
		t.Errorf("MemSnoop() = %#x, want 0x15", got)
	}
	if got := d.MemLock(); got != 0x3 {
		t.Errorf("MemLock() = %#x, want 0x3", got)
	}
	if got := d.MemTLB(); got != 0x2a {
		t.Errorf("MemTLB() = %#x, want 0x2a", got)
	}
	if got := d.MemLvlNum(); got != 0x9 {
		t.Errorf("MemLvlNum() = %#x, want 0x9", got)
	}
	if !d.MemRemote() {
		t.Error("MemRemote() = false, want true")
	}
	if got := d.MemSnoopX(); got != 0x3 {
		t.Errorf("MemSnoopX() = %#x, want 0x3", got)
	}
	if got := d.MemBlk(); got != 0x5 {
		t.Errorf("MemBlk() = %#x, want 0x5", got)
	}
	if got := d.MemHops(); got != 0x7 {
		t.Errorf("MemHops() = %#x, want 0x7", got)
	}
}

func TestDataSrcZero(t *testing.T) {
	var d DataSrc
	if d.MemOp() != 0 || d.MemRemote() {
		t.Error("zero DataSrc should decode to all-zero/false fields")
	}
}
