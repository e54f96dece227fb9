// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import "testing"

func TestDecodeSampleBasicFields(t *testing.T) {
	f := SampleFields{CodeAddr: true, DataAddr: true, Period: true}
	idf := RecordIDFormat{Task: true, Time: true}

	var buf []byte
	buf = append(buf, u64le(0xdeadbeef)...) // IP
	buf = append(buf, le32(11)...)          // pid
	buf = append(buf, le32(22)...)          // tid
	buf = append(buf, u64le(555)...)        // time
	buf = append(buf, u64le(0xcafe)...)     // addr
	buf = append(buf, u64le(1000)...)       // period

	d := &bufDecoder{buf: buf}
	h := RecordHeader{Type: 9 /* PERF_RECORD_SAMPLE */}
	r, err := decodeSample(h, d, f, idf)
	if err != nil {
		t.Fatal(err)
	}
	if r.IP != 0xdeadbeef {
		t.Errorf("IP = %#x, want 0xdeadbeef", r.IP)
	}
	if r.PID != 11 || r.TID != 22 {
		t.Errorf("PID/TID = %d/%d, want 11/22", r.PID, r.TID)
	}
	if r.Time != 555 {
		t.Errorf("Time = %d, want 555", r.Time)
	}
	if r.Addr != 0xcafe {
		t.Errorf("Addr = %#x, want 0xcafe", r.Addr)
	}
	if r.Period != 1000 {
		t.Errorf("Period = %d, want 1000", r.Period)
	}
}

func TestDecodeSampleCallChain(t *testing.T) {
	f := SampleFields{CallChain: &CallChain{MaxStack: 8}}
	var buf []byte
	buf = append(buf, u64le(3)...) // nr
	buf = append(buf, u64le(0x1)...)
	buf = append(buf, u64le(0x2)...)
	buf = append(buf, u64le(0x3)...)

	d := &bufDecoder{buf: buf}
	r, err := decodeSample(RecordHeader{}, d, f, RecordIDFormat{})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.CallChain) != 3 || r.CallChain[0] != 1 || r.CallChain[2] != 3 {
		t.Errorf("CallChain = %v", r.CallChain)
	}
}

func TestDecodeSampleRaw(t *testing.T) {
	f := SampleFields{Raw: true}
	var buf []byte
	buf = append(buf, le32(4)...)
	buf = append(buf, []byte{1, 2, 3, 4}...)

	d := &bufDecoder{buf: buf}
	r, err := decodeSample(RecordHeader{}, d, f, RecordIDFormat{})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Raw) != 4 || r.Raw[3] != 4 {
		t.Errorf("Raw = %v", r.Raw)
	}
}

func TestDecodeSampleWeightVars(t *testing.T) {
	wk := WeightVars
	f := SampleFields{Weight: &wk}
	var buf []byte
	buf = append(buf, le32(100)...)
	buf = append(buf, []byte{5, 0}...) // var1 u16
	buf = append(buf, []byte{7, 0}...) // var2 u16

	d := &bufDecoder{buf: buf}
	r, err := decodeSample(RecordHeader{}, d, f, RecordIDFormat{})
	if err != nil {
		t.Fatal(err)
	}
	if r.Weight != 100 || r.WeightVar1 != 5 || r.WeightVar2 != 7 {
		t.Errorf("Weight/WeightVar1/WeightVar2 = %d/%d/%d", r.Weight, r.WeightVar1, r.WeightVar2)
	}
}

func TestDecodeSampleWeightNotRequested(t *testing.T) {
	f := SampleFields{} // Weight nil means not requested
	d := &bufDecoder{buf: nil}
	r, err := decodeSample(RecordHeader{}, d, f, RecordIDFormat{})
	if err != nil {
		t.Fatal(err)
	}
	if r.Weight != 0 {
		t.Errorf("Weight = %d, want 0 when not requested", r.Weight)
	}
}

func TestDecodeSampleLBRWithHWIndex(t *testing.T) {
	f := SampleFields{LBR: &LBR{EntryFormat: EntryFormat{HWIndex: true, NoFlags: true, NoCycles: true}}}
	var buf []byte
	buf = append(buf, u64le(2)...) // bnr
	buf = append(buf, u64le(9)...) // hw_idx
	buf = append(buf, u64le(0x10)...)
	buf = append(buf, u64le(0x20)...)
	buf = append(buf, u64le(0x30)...)
	buf = append(buf, u64le(0x40)...)

	d := &bufDecoder{buf: buf}
	r, err := decodeSample(RecordHeader{}, d, f, RecordIDFormat{})
	if err != nil {
		t.Fatal(err)
	}
	if r.BranchHWIndex == nil || *r.BranchHWIndex != 9 {
		t.Errorf("BranchHWIndex = %v, want 9", r.BranchHWIndex)
	}
	if len(r.Branches) != 2 {
		t.Fatalf("len(Branches) = %d, want 2", len(r.Branches))
	}
	if r.Branches[0].From != 0x10 || r.Branches[0].To != 0x20 {
		t.Errorf("Branches[0] = %+v", r.Branches[0])
	}
}

func TestDecodeSampleDataSrcAndTransaction(t *testing.T) {
	f := SampleFields{DataSource: true, Transaction: true}
	var buf []byte
	buf = append(buf, u64le(0x123)...)
	buf = append(buf, u64le(0x456)...)

	d := &bufDecoder{buf: buf}
	r, err := decodeSample(RecordHeader{}, d, f, RecordIDFormat{})
	if err != nil {
		t.Fatal(err)
	}
	if uint64(r.DataSrc) != 0x123 {
		t.Errorf("DataSrc = %#x, want 0x123", uint64(r.DataSrc))
	}
	if r.Transaction != 0x456 {
		t.Errorf("Transaction = %#x, want 0x456", r.Transaction)
	}
}

func TestDecodeSampleUserRegsABINone(t *testing.T) {
	f := SampleFields{UserRegs: 0x3, Transaction: true}
	var buf []byte
	buf = append(buf, u64le(0)...)      // abi == PERF_SAMPLE_REGS_ABI_NONE: no register words follow
	buf = append(buf, u64le(0xface)...) // next field (Transaction) starts immediately after the abi tag

	d := &bufDecoder{buf: buf}
	r, err := decodeSample(RecordHeader{}, d, f, RecordIDFormat{})
	if err != nil {
		t.Fatal(err)
	}
	if r.UserRegsABI != 0 {
		t.Errorf("UserRegsABI = %d, want 0", r.UserRegsABI)
	}
	if len(r.UserRegs) != 0 {
		t.Errorf("UserRegs = %v, want none when ABI is 0", r.UserRegs)
	}
	if r.Transaction != 0xface {
		t.Errorf("Transaction = %#x, want 0xface (decoder must not over-read UserRegs)", r.Transaction)
	}
}

func TestDecodeSampleUserRegsABISet(t *testing.T) {
	f := SampleFields{UserRegs: 0x3} // two registers requested
	var buf []byte
	buf = append(buf, u64le(1)...) // abi
	buf = append(buf, u64le(0x10)...)
	buf = append(buf, u64le(0x20)...)

	d := &bufDecoder{buf: buf}
	r, err := decodeSample(RecordHeader{}, d, f, RecordIDFormat{})
	if err != nil {
		t.Fatal(err)
	}
	if r.UserRegsABI != 1 {
		t.Errorf("UserRegsABI = %d, want 1", r.UserRegsABI)
	}
	if len(r.UserRegs) != 2 || r.UserRegs[0] != 0x10 || r.UserRegs[1] != 0x20 {
		t.Errorf("UserRegs = %v", r.UserRegs)
	}
}

func TestDecodeSampleIntrRegsABINone(t *testing.T) {
	f := SampleFields{IntrRegs: 0x1, CGroup: true}
	var buf []byte
	buf = append(buf, u64le(0)...)      // abi == 0: no register words
	buf = append(buf, u64le(0xbeef)...) // next field (CGroup) immediately follows

	d := &bufDecoder{buf: buf}
	r, err := decodeSample(RecordHeader{}, d, f, RecordIDFormat{})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.IntrRegs) != 0 {
		t.Errorf("IntrRegs = %v, want none when ABI is 0", r.IntrRegs)
	}
	if r.CGroup != 0xbeef {
		t.Errorf("CGroup = %#x, want 0xbeef (decoder must not over-read IntrRegs)", r.CGroup)
	}
}

func TestPopcount(t *testing.T) {
	cases := map[uint64]int{0: 0, 1: 1, 0x3: 2, 0xff: 8, 0x8000000000000000: 1}
	for x, want := range cases {
		if got := popcount(x); got != want {
			t.Errorf("popcount(%#x) = %d, want %d", x, got, want)
		}
	}
}
