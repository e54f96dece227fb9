// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import "github.com/aclements/perfevent/internal/uapi"

// SampleRecord is PERF_RECORD_SAMPLE, decoded according to the
// sample_type bitmask the originating Counter's SampleFields and
// RecordIDFormat requested (buildSampleType). Only the fields that
// were actually requested are populated; the rest are left zero.
type SampleRecord struct {
	H RecordHeader

	IP                       uint64
	PID, TID                 uint32
	Time                     uint64
	Addr                     uint64
	ID, StreamID             uint64
	CPU, CPURes              uint32
	Period                   uint64
	Stat                     *Stat
	CallChain                []uint64
	Raw                      []byte
	BranchHWIndex            *uint64
	Branches                 []BranchRecord
	BranchFlags              EntryFormat
	UserRegsABI              uint64
	UserRegs                 []uint64
	UserStack                []byte
	UserStackDynSize         uint64
	Weight                   uint64
	WeightVar1, WeightVar2   uint16
	DataSrc                  DataSrc
	Transaction              uint64
	IntrRegsABI              uint64
	IntrRegs                 []uint64
	PhysAddr                 uint64
	CGroup                   uint64
	DataPageSize             uint64
	CodePageSize             uint64
	Aux                      []byte
}

func (r *SampleRecord) Header() RecordHeader { return r.H }

func decodeSample(h RecordHeader, d *bufDecoder, f SampleFields, idf RecordIDFormat) (*SampleRecord, error) {
	r := &SampleRecord{H: h}

	if f.CodeAddr {
		r.IP = d.u64()
	}
	if idf.Task {
		r.PID = d.u32()
		r.TID = d.u32()
	}
	if idf.Time {
		r.Time = d.u64()
	}
	if f.DataAddr {
		r.Addr = d.u64()
	}
	if idf.ID {
		r.ID = d.u64()
	}
	if idf.StreamID {
		r.StreamID = d.u64()
	}
	if idf.CPU {
		r.CPU = d.u32()
		r.CPURes = d.u32()
	}
	if f.Period {
		r.Period = d.u64()
	}
	if f.Stat {
		// The embedded read_format here always describes a single
		// (non-group) counter: group reads come through
		// CounterGroup.Read, not samples.
		readFormat, err := (StatFormat{ID: true, TimeEnabled: true, TimeRunning: true}).readFormat(uapi.DefaultMin)
		if err != nil {
			return nil, err
		}
		size := statReadSize(readFormat, 1)
		stat := decodeStat(d.bytes(size), readFormat)
		r.Stat = &stat
	}
	if f.CallChain != nil {
		nr := d.u64()
		r.CallChain = d.u64s(int(nr))
	}
	if f.Raw {
		size := d.u32()
		r.Raw = append([]byte(nil), d.bytes(int(size))...)
	}
	if f.LBR != nil {
		r.BranchFlags = f.LBR.EntryFormat
		bnr := d.u64()
		if f.LBR.EntryFormat.HWIndex {
			hwIdx := d.u64()
			r.BranchHWIndex = &hwIdx
		}
		r.Branches = decodeBranchEntries(d, int(bnr), f.LBR.EntryFormat)
	}
	if f.UserRegs != 0 {
		r.UserRegsABI = d.u64()
		if r.UserRegsABI != 0 {
			r.UserRegs = d.u64s(popcount(uint64(f.UserRegs)))
		}
	}
	if f.UserStack != nil {
		size := d.u32()
		r.UserStack = append([]byte(nil), d.bytes(int(size))...)
		if size != 0 {
			r.UserStackDynSize = d.u64()
		}
	}
	if f.Weight != nil {
		switch *f.Weight {
		case WeightVars:
			r.Weight = uint64(d.u32())
			r.WeightVar1 = d.u16()
			r.WeightVar2 = d.u16()
		default:
			r.Weight = d.u64()
		}
	}
	if f.DataSource {
		r.DataSrc = DataSrc(d.u64())
	}
	if f.Transaction {
		r.Transaction = d.u64()
	}
	if f.IntrRegs != 0 {
		r.IntrRegsABI = d.u64()
		if r.IntrRegsABI != 0 {
			r.IntrRegs = d.u64s(popcount(uint64(f.IntrRegs)))
		}
	}
	if f.DataPhysAddr {
		r.PhysAddr = d.u64()
	}
	if f.CGroup {
		r.CGroup = d.u64()
	}
	if f.DataPageSize {
		r.DataPageSize = d.u64()
	}
	if f.CodePageSize {
		r.CodePageSize = d.u64()
	}
	if f.Aux != nil {
		size := d.u64()
		r.Aux = append([]byte(nil), d.bytes(int(size))...)
	}
	return r, nil
}

func popcount(x uint64) int {
	n := 0
	for x != 0 {
		n++
		x &= x - 1
	}
	return n
}
