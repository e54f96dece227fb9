// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

// BranchRecord is one entry of a SampleRecord's LBR branch stack:
// struct perf_branch_entry.
type BranchRecord struct {
	From, To uint64

	// The remaining fields are only meaningful if the originating
	// LBR's EntryFormat didn't set both NoFlags and NoCycles (the
	// kernel only omits the packed word entirely when both are
	// set); Counters requires linux-6.8 and PrivSave linux-6.1.
	Mispred, Predicted, InTx, Abort bool
	Cycles                          uint16
	Type                            uint8
	Spec                            uint8
	NewType                         uint8
	Priv                            uint8
	Counters                        uint64
}

func decodeBranchEntries(d *bufDecoder, n int, f EntryFormat) []BranchRecord {
	entries := make([]BranchRecord, n)
	hasFlagsWord := !(f.NoFlags && f.NoCycles)
	for i := range entries {
		e := &entries[i]
		e.From = d.u64()
		e.To = d.u64()
		if !hasFlagsWord {
			continue
		}
		flags := d.u64()
		e.Mispred = flags&(1<<0) != 0
		e.Predicted = flags&(1<<1) != 0
		e.InTx = flags&(1<<2) != 0
		e.Abort = flags&(1<<3) != 0
		e.Cycles = uint16(flags>>4) & 0xffff
		e.Type = uint8(flags>>20) & 0xf
		e.Spec = uint8(flags>>24) & 0x3
		if f.TypeSave {
			e.NewType = uint8(flags>>26) & 0xf
		}
		if f.PrivSave {
			e.Priv = uint8(flags>>30) & 0x7
		}
		if f.Counters {
			e.Counters = d.u64()
		}
	}
	return entries
}
