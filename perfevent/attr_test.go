// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"testing"

	"github.com/aclements/perfevent/internal/uapi"
)

func TestBuildAttrBasic(t *testing.T) {
	ev := CPUCycles.Event()
	o := &Opts{Exclude: Priv{Kernel: true}}
	a, err := buildAttr(ev, o.common())
	if err != nil {
		t.Fatal(err)
	}
	if a.Type != uapi.PerfTypeHardware {
		t.Errorf("Type = %d, want PerfTypeHardware", a.Type)
	}
	if a.Config != uapi.PerfCountHWCPUCycles {
		t.Errorf("Config = %d, want PerfCountHWCPUCycles", a.Config)
	}
	if a.Bits&(1<<uapi.AttrBitDisabled) == 0 {
		t.Error("a freshly-built Counter should start disabled unless Opts.Enable is set")
	}
	if a.Bits&(1<<uapi.AttrBitExcludeKernel) == 0 {
		t.Error("Exclude.Kernel should set AttrBitExcludeKernel")
	}
}

func TestBuildAttrEnable(t *testing.T) {
	o := &Opts{Enable: true}
	a, err := buildAttr(CPUCycles.Event(), o.common())
	if err != nil {
		t.Fatal(err)
	}
	if a.Bits&(1<<uapi.AttrBitDisabled) != 0 {
		t.Error("Opts.Enable should clear AttrBitDisabled")
	}
}

func TestBuildAttrInheritThreadGated(t *testing.T) {
	inh := InheritThreads
	o := &Opts{Inherit: &inh, MinKernel: uapi.V4_10}
	_, err := buildAttr(Instructions.Event(), o.common())
	if !IsUnsupported(err) {
		t.Fatalf("err = %v, want *UnsupportedError", err)
	}

	o.MinKernel = uapi.V5_13
	a, err := buildAttr(Instructions.Event(), o.common())
	if err != nil {
		t.Fatal(err)
	}
	if a.Bits&(1<<uapi.AttrBitInherit) == 0 || a.Bits&(1<<uapi.AttrBitInheritThread) == 0 {
		t.Error("InheritThreads should set both Inherit and InheritThread bits")
	}
}

func TestBuildAttrExtraRecordRead(t *testing.T) {
	o := &Opts{ExtraRecord: ExtraRecord{Read: true}}
	a, err := buildAttr(Instructions.Event(), o.common())
	if err != nil {
		t.Fatal(err)
	}
	if a.Bits&(1<<uapi.AttrBitInheritStat) == 0 {
		t.Error("ExtraRecord.Read should set AttrBitInheritStat")
	}
}

func TestBuildAttrSampleFreqVsCount(t *testing.T) {
	o := &Opts{SampleOn: SampleOn{Freq: 997}}
	a, err := buildAttr(CPUCycles.Event(), o.common())
	if err != nil {
		t.Fatal(err)
	}
	if a.Bits&(1<<uapi.AttrBitFreq) == 0 || a.Sample != 997 {
		t.Errorf("freq sampling not set correctly: Bits=%#x Sample=%d", a.Bits, a.Sample)
	}

	o = &Opts{SampleOn: SampleOn{Count: 10000}}
	a, err = buildAttr(CPUCycles.Event(), o.common())
	if err != nil {
		t.Fatal(err)
	}
	if a.Bits&(1<<uapi.AttrBitFreq) != 0 || a.Sample != 10000 {
		t.Errorf("count sampling not set correctly: Bits=%#x Sample=%d", a.Bits, a.Sample)
	}
}

func TestBuildAttrSampleFieldsCallChain(t *testing.T) {
	o := &Opts{SampleFields: SampleFields{CallChain: &CallChain{MaxStack: 64}}}
	a, err := buildAttr(CPUCycles.Event(), o.common())
	if err != nil {
		t.Fatal(err)
	}
	if a.Sample_type&uapi.PerfSampleCallchain == 0 {
		t.Error("CallChain should set PerfSampleCallchain")
	}
	if a.Sample_max_stack != 64 {
		t.Errorf("Sample_max_stack = %d, want 64", a.Sample_max_stack)
	}
}

func TestBuildAttrSiblingOmitsLeaderOnlyFields(t *testing.T) {
	so := &SiblingOpts{}
	c := so.common()
	if c.pinned || c.exclusive || c.pauseAux {
		t.Error("SiblingOpts.common() should leave leader-only fields zero")
	}
}

func TestBuildAttrWakeUpAuxWatermarkIndependent(t *testing.T) {
	o := &Opts{WakeUp: WakeUp{Samples: 4, OnAuxBytes: 4096}}
	a, err := buildAttr(CPUCycles.Event(), o.common())
	if err != nil {
		t.Fatal(err)
	}
	if a.Wakeup != 4 {
		t.Errorf("Wakeup = %d, want 4 (sample count, unaffected by OnAuxBytes)", a.Wakeup)
	}
	if a.Aux_watermark != 4096 {
		t.Errorf("Aux_watermark = %d, want 4096", a.Aux_watermark)
	}
	if a.Bits&(1<<uapi.AttrBitWatermark) != 0 {
		t.Error("OnAuxBytes alone should not set AttrBitWatermark")
	}
}

func TestBuildAttrAuxOutputGated(t *testing.T) {
	so := &SiblingOpts{AuxOutput: true, MinKernel: uapi.V4_20}
	_, err := buildAttr(Instructions.Event(), so.common())
	if !IsUnsupported(err) {
		t.Fatalf("err = %v, want *UnsupportedError", err)
	}
}

func TestLBRBranchSampleTypeORsTargetPriv(t *testing.T) {
	l := &LBR{TargetPriv: TargetPriv{User: true, Kernel: true, HV: true}}
	bst, err := l.branchSampleType(uapi.DefaultMin)
	if err != nil {
		t.Fatal(err)
	}
	want := uapi.PerfSampleBranchUser | uapi.PerfSampleBranchKernel | uapi.PerfSampleBranchHV
	if bst != want {
		t.Errorf("branchSampleType() = %#x, want %#x (all three bits OR'd)", bst, want)
	}
}
