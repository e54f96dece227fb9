// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

// DataSrc decodes a SampleRecord.DataSrc value (perf_mem_data_src):
// where a memory access sampled by SampleFields.DataSource was
// satisfied from.
type DataSrc uint64

// MemOp reports the memory operation bits (load/store/prefetch/exec).
func (d DataSrc) MemOp() uint32 { return uint32(d) & 0x1f }

// MemLvl reports the legacy memory hierarchy level bits. Kernels new
// enough to report MemLvlNum (below) may leave this zero; check
// MemLvlNum first.
func (d DataSrc) MemLvl() uint32 { return uint32(d>>5) & 0x3fff }

// MemSnoop reports cache snoop result bits.
func (d DataSrc) MemSnoop() uint32 { return uint32(d>>19) & 0x1f }

// MemLock reports lock-related bits (locked instruction).
func (d DataSrc) MemLock() uint32 { return uint32(d>>24) & 0x3 }

// MemTLB reports TLB access/miss bits.
func (d DataSrc) MemTLB() uint32 { return uint32(d>>26) & 0x3f }

// MemLvlNum reports the newer, wider memory hierarchy level
// encoding that superseded MemLvl.
func (d DataSrc) MemLvlNum() uint32 { return uint32(d>>33) & 0xf }

// MemRemote reports whether the access crossed to a remote NUMA node.
func (d DataSrc) MemRemote() bool { return d&(1<<37) != 0 }

// MemSnoopX reports extended snoop bits alongside MemSnoop.
func (d DataSrc) MemSnoopX() uint32 { return uint32(d>>38) & 0x3 }

// MemBlk reports bits describing why the access blocked.
func (d DataSrc) MemBlk() uint32 { return uint32(d>>40) & 0x7 }

// MemHops reports the NUMA hop count for MemRemote accesses.
func (d DataSrc) MemHops() uint32 { return uint32(d>>43) & 0x7 }
