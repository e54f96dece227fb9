// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/aclements/perfevent/internal/uapi"
)

// commonOpts is the configuration surface shared by a group leader
// (Opts) and a group member (SiblingOpts), normalized so buildAttr
// only has to know one shape. Fields that are leader-only in the
// public API (Pinned, Exclusive, Clock, PauseAux) are simply left at
// their zero value by SiblingOpts.common.
type commonOpts struct {
	exclude  Priv
	inherit  *Inherit
	onExecve *OnExecve

	pinned, exclusive bool

	statFormat StatFormat

	enable bool

	sampleOn     SampleOn
	sampleSkid   SampleSkid
	sampleFields SampleFields

	extraRecord ExtraRecord

	recordIDAll    bool
	recordIDFormat RecordIDFormat

	wakeUp WakeUp

	onSample OnSample

	clock Clock

	pauseAux  bool
	auxOutput bool

	minKernel uapi.Version
}

func (o *Opts) common() commonOpts {
	return commonOpts{
		exclude:        o.Exclude,
		inherit:        o.Inherit,
		onExecve:       o.OnExecve,
		pinned:         o.Pinned,
		exclusive:      o.Exclusive,
		statFormat:     o.StatFormat,
		enable:         o.Enable,
		sampleOn:       o.SampleOn,
		sampleSkid:     o.SampleSkid,
		sampleFields:   o.SampleFields,
		extraRecord:    o.ExtraRecord,
		recordIDAll:    o.RecordIDAll,
		recordIDFormat: o.RecordIDFormat,
		wakeUp:         o.WakeUp,
		onSample:       o.OnSample,
		clock:          o.Clock,
		pauseAux:       o.PauseAux,
		auxOutput:      o.auxOutput,
		minKernel:      o.minKernel(),
	}
}

func (o *SiblingOpts) common() commonOpts {
	return commonOpts{
		exclude:        o.Exclude,
		inherit:        o.Inherit,
		onExecve:       o.OnExecve,
		statFormat:     o.StatFormat,
		enable:         o.Enable,
		sampleOn:       o.SampleOn,
		sampleSkid:     o.SampleSkid,
		sampleFields:   o.SampleFields,
		extraRecord:    o.ExtraRecord,
		recordIDAll:    o.RecordIDAll,
		recordIDFormat: o.RecordIDFormat,
		wakeUp:         o.WakeUp,
		onSample:       o.OnSample,
		auxOutput:      o.AuxOutput,
		minKernel:      o.minKernel(),
	}
}

// need fails attribute assembly when the running configuration's
// minimum kernel is older than need.
func need(min, need uapi.Version, option string) error {
	if min.Less(need) {
		return &UnsupportedError{Option: option, Need: need}
	}
	return nil
}

// buildAttr assembles a unix.PerfEventAttr for ev under c, ready to
// pass to unix.PerfEventOpen. If ev carries a strConfig1 (a kprobe
// symbol or uprobe path), Ext1 is left zero here; the caller in
// syscall_linux.go fills it in with the byte slice's address
// immediately before the syscall, once it can no longer move.
func buildAttr(ev Event, c commonOpts) (unix.PerfEventAttr, error) {
	var a unix.PerfEventAttr
	a.Size = uint32(unsafe.Sizeof(a))
	a.Type = ev.typ
	a.Config = ev.config
	a.Ext2 = ev.config2
	a.Bp_type = ev.bpType
	if ev.strConfig1 == nil {
		a.Ext1 = ev.config1
	}

	min := c.minKernel

	var bits uint64
	if !c.enable {
		bits |= 1 << uapi.AttrBitDisabled
	}

	if c.inherit != nil {
		bits |= 1 << uapi.AttrBitInherit
		if *c.inherit == InheritThreads {
			if err := need(min, uapi.V5_13, "Inherit=InheritThreads"); err != nil {
				return unix.PerfEventAttr{}, err
			}
			bits |= 1 << uapi.AttrBitInheritThread
		}
	}

	if c.onExecve != nil {
		switch *c.onExecve {
		case EnableOnExecve:
			bits |= 1 << uapi.AttrBitEnableOnExec
		case RemoveOnExecve:
			if err := need(min, uapi.V5_13, "OnExecve=RemoveOnExecve"); err != nil {
				return unix.PerfEventAttr{}, err
			}
			bits |= 1 << uapi.AttrBitRemoveOnExec
		default:
			return unix.PerfEventAttr{}, fmt.Errorf("perfevent: unknown OnExecve %d", *c.onExecve)
		}
	}

	if c.pinned {
		bits |= 1 << uapi.AttrBitPinned
	}
	if c.exclusive {
		bits |= 1 << uapi.AttrBitExclusive
	}
	if c.exclude.User {
		bits |= 1 << uapi.AttrBitExcludeUser
	}
	if c.exclude.Kernel {
		bits |= 1 << uapi.AttrBitExcludeKernel
	}
	if c.exclude.HV {
		bits |= 1 << uapi.AttrBitExcludeHV
	}
	if c.exclude.Idle {
		bits |= 1 << uapi.AttrBitExcludeIdle
	}
	if c.exclude.Host {
		bits |= 1 << uapi.AttrBitExcludeHost
	}
	if c.exclude.Guest {
		bits |= 1 << uapi.AttrBitExcludeGuest
	}

	if c.sampleOn.Freq != 0 {
		bits |= 1 << uapi.AttrBitFreq
		a.Sample = c.sampleOn.Freq
	} else {
		a.Sample = c.sampleOn.Count
	}

	bits |= c.sampleSkid.preciseIP() << uapi.AttrBitPreciseIPShift

	if c.wakeUp.Bytes != 0 {
		bits |= 1 << uapi.AttrBitWatermark
		a.Wakeup = uint32(c.wakeUp.Bytes)
	} else {
		a.Wakeup = uint32(c.wakeUp.Samples)
	}
	// aux_watermark is independent of the wakeup_events/wakeup_watermark
	// union above: it only ever bounds the AUX ring.
	a.Aux_watermark = uint32(c.wakeUp.OnAuxBytes)

	er := c.extraRecord
	if er.Comm {
		bits |= 1 << uapi.AttrBitComm
		bits |= 1 << uapi.AttrBitCommExec
	}
	if er.Mmap != nil {
		if er.Mmap.Code {
			bits |= 1 << uapi.AttrBitMmap
		}
		bits |= 1 << uapi.AttrBitMmap2
		if er.Mmap.Data {
			bits |= 1 << uapi.AttrBitMmapData
		}
		if er.Mmap.UseBuildID {
			if err := need(min, uapi.V5_12, "ExtraRecord.Mmap.UseBuildID"); err != nil {
				return unix.PerfEventAttr{}, err
			}
			bits |= 1 << uapi.AttrBitBuildID
		}
	}
	if er.Task {
		bits |= 1 << uapi.AttrBitTask
	}
	if er.Read {
		// PERF_RECORD_READ is only emitted for an inherited counter
		// (Opts.Inherit) when a traced task exits, to report the
		// accumulated count of its already-exited children;
		// inherit_stat is the attribute bit that turns it on.
		bits |= 1 << uapi.AttrBitInheritStat
	}
	if er.CGroup {
		if err := need(min, uapi.V5_7, "ExtraRecord.CGroup"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrBitCGroup
	}
	if er.Ksymbol {
		if err := need(min, uapi.V4_18, "ExtraRecord.Ksymbol"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrBitKsymbol
	}
	if er.BPFEvent {
		if err := need(min, uapi.V4_18, "ExtraRecord.BPFEvent"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrBitBPFEvent
	}
	if er.TextPoke {
		if err := need(min, uapi.V5_9, "ExtraRecord.TextPoke"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrBitTextPoke
	}
	if er.CtxSwitch {
		bits |= 1 << uapi.AttrBitContextSwitch
	}
	if er.Namespaces {
		if err := need(min, uapi.V4_12, "ExtraRecord.Namespaces"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrBitNamespaces
	}

	if c.recordIDAll {
		bits |= 1 << uapi.AttrBitSampleIDAll
	}

	if c.clock != ClockDefault {
		bits |= 1 << uapi.AttrBitUseClockID
		switch c.clock {
		case ClockRealtime:
			a.Clockid = uapi.ClockRealtime
		case ClockMonotonic:
			a.Clockid = uapi.ClockMonotonic
		case ClockMonotonicRaw:
			a.Clockid = uapi.ClockMonotonicRaw
		case ClockBootTime:
			a.Clockid = uapi.ClockBootTime
		case ClockTAI:
			a.Clockid = uapi.ClockTAI
		default:
			return unix.PerfEventAttr{}, fmt.Errorf("perfevent: unknown Clock %d", c.clock)
		}
	}

	if c.auxOutput {
		if err := need(min, uapi.V5_4, "SiblingOpts.AuxOutput"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrBitAuxOutput
	}

	if c.pauseAux {
		if err := need(min, uapi.V6_13, "Opts.PauseAux"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrAuxBitStartPaused
	}
	switch c.onSample.Aux {
	case AuxTracerPause:
		if err := need(min, uapi.V6_13, "OnSample.Aux=AuxTracerPause"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrAuxBitPause
	case AuxTracerResume:
		if err := need(min, uapi.V6_13, "OnSample.Aux=AuxTracerResume"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrAuxBitResume
	}
	if c.onSample.Sigtrap {
		if err := need(min, uapi.V5_13, "OnSample.Sigtrap"); err != nil {
			return unix.PerfEventAttr{}, err
		}
		bits |= 1 << uapi.AttrBitSigtrap
		bits |= 1 << uapi.AttrBitRemoveOnExec
		a.Sig_data = c.onSample.SigData
	}

	readFormat, err := c.statFormat.readFormat(min)
	if err != nil {
		return unix.PerfEventAttr{}, err
	}
	a.Read_format = readFormat

	sampleType, err := buildSampleType(&a, c.sampleFields, c.recordIDFormat, min)
	if err != nil {
		return unix.PerfEventAttr{}, err
	}
	a.Sample_type = sampleType

	a.Bits = bits
	return a, nil
}

// buildSampleType fills in a's variable-width sample sub-fields
// (Sample_stack_user, Sample_max_stack, Sample_regs_user,
// Sample_regs_intr, Aux_sample_size, Branch_sample_type) and returns
// the sample_type bitmask.
func buildSampleType(a *unix.PerfEventAttr, f SampleFields, idf RecordIDFormat, min uapi.Version) (uint64, error) {
	var t uint64

	if idf.ID {
		t |= uapi.PerfSampleID
	}
	if idf.StreamID {
		t |= uapi.PerfSampleStreamID
	}
	if idf.CPU {
		t |= uapi.PerfSampleCPU
	}
	if idf.Task {
		t |= uapi.PerfSampleTID
	}
	if idf.Time {
		t |= uapi.PerfSampleTime
	}

	if f.Stat {
		t |= uapi.PerfSampleRead
	}
	if f.Period {
		t |= uapi.PerfSamplePeriod
	}
	if f.CGroup {
		if err := need(min, uapi.V5_7, "SampleFields.CGroup"); err != nil {
			return 0, err
		}
		t |= uapi.PerfSampleCGroup
	}
	if f.UserStack != nil {
		t |= uapi.PerfSampleStackUser
		a.Sample_stack_user = uint32(*f.UserStack)
	}
	if f.CallChain != nil {
		t |= uapi.PerfSampleCallchain
		a.Sample_max_stack = f.CallChain.MaxStack
	}
	if f.DataAddr {
		t |= uapi.PerfSampleAddr
	}
	if f.DataPhysAddr {
		if err := need(min, uapi.V4_14, "SampleFields.DataPhysAddr"); err != nil {
			return 0, err
		}
		t |= uapi.PerfSamplePhysAddr
	}
	if f.DataPageSize {
		if err := need(min, uapi.V5_11, "SampleFields.DataPageSize"); err != nil {
			return 0, err
		}
		t |= uapi.PerfSampleDataPageSize
	}
	if f.DataSource {
		t |= uapi.PerfSampleDataSrc
	}
	if f.CodeAddr {
		t |= uapi.PerfSampleIP
	}
	if f.CodePageSize {
		if err := need(min, uapi.V5_11, "SampleFields.CodePageSize"); err != nil {
			return 0, err
		}
		t |= uapi.PerfSampleCodePageSize
	}
	if f.UserRegs != 0 {
		t |= uapi.PerfSampleRegsUser
		a.Sample_regs_user = uint64(f.UserRegs)
	}
	if f.IntrRegs != 0 {
		t |= uapi.PerfSampleRegsIntr
		a.Sample_regs_intr = uint64(f.IntrRegs)
	}
	if f.Raw {
		t |= uapi.PerfSampleRaw
	}
	if f.LBR != nil {
		t |= uapi.PerfSampleBranchStack
		bst, err := f.LBR.branchSampleType(min)
		if err != nil {
			return 0, err
		}
		a.Branch_sample_type = bst
	}
	if f.Aux != nil {
		if err := need(min, uapi.V4_17, "SampleFields.Aux"); err != nil {
			return 0, err
		}
		t |= uapi.PerfSampleAux
		a.Aux_sample_size = uint32(*f.Aux)
	}
	if f.Transaction {
		t |= uapi.PerfSampleTransaction
	}
	if f.Weight != nil {
		switch *f.Weight {
		case WeightFull:
			t |= uapi.PerfSampleWeight
		case WeightVars:
			if err := need(min, uapi.V5_12, "SampleFields.Weight=WeightVars"); err != nil {
				return 0, err
			}
			t |= uapi.PerfSampleWeightStruct
		default:
			return 0, fmt.Errorf("perfevent: unknown WeightKind %d", *f.Weight)
		}
	}

	return t, nil
}

func (l *LBR) branchSampleType(min uapi.Version) (uint64, error) {
	var t uint64
	if l.TargetPriv.User {
		t |= uapi.PerfSampleBranchUser
	}
	if l.TargetPriv.Kernel {
		t |= uapi.PerfSampleBranchKernel
	}
	if l.TargetPriv.HV {
		t |= uapi.PerfSampleBranchHV
	}

	bt := l.BranchType
	if bt.Any {
		t |= uapi.PerfSampleBranchAny
	}
	if bt.AnyCall {
		t |= uapi.PerfSampleBranchAnyCall
	}
	if bt.AnyReturn {
		t |= uapi.PerfSampleBranchAnyReturn
	}
	if bt.IndCall {
		t |= uapi.PerfSampleBranchIndCall
	}
	if bt.IndJump {
		t |= uapi.PerfSampleBranchIndJump
	}
	if bt.Cond {
		t |= uapi.PerfSampleBranchCond
	}
	if bt.Call {
		t |= uapi.PerfSampleBranchCall
	}
	if bt.AbortTx {
		t |= uapi.PerfSampleBranchAbortTx
	}
	if bt.InTx {
		t |= uapi.PerfSampleBranchInTx
	}
	if bt.NoTx {
		t |= uapi.PerfSampleBranchNoTx
	}
	if bt.CallStack {
		t |= uapi.PerfSampleBranchCallStack
	}

	ef := l.EntryFormat
	if ef.NoFlags {
		t |= uapi.PerfSampleBranchNoFlags
	}
	if ef.NoCycles {
		t |= uapi.PerfSampleBranchNoCycles
	}
	if ef.TypeSave {
		if err := need(min, uapi.V4_15, "LBR.EntryFormat.TypeSave"); err != nil {
			return 0, err
		}
		t |= uapi.PerfSampleBranchTypeSave
	}
	if ef.HWIndex {
		if err := need(min, uapi.V4_20, "LBR.EntryFormat.HWIndex"); err != nil {
			return 0, err
		}
		t |= uapi.PerfSampleBranchHWIndex
	}
	if ef.PrivSave {
		if err := need(min, uapi.V6_1, "LBR.EntryFormat.PrivSave"); err != nil {
			return 0, err
		}
		t |= uapi.PerfSampleBranchPrivSave
	}
	if ef.Counters {
		if err := need(min, uapi.V6_8, "LBR.EntryFormat.Counters"); err != nil {
			return 0, err
		}
		t |= uapi.PerfSampleBranchCounters
	}

	return t, nil
}
