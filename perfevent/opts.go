// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import "github.com/aclements/perfevent/internal/uapi"

// Priv selects which privilege levels NOT to count events for. A
// field set to true excludes that level.
type Priv struct {
	User, Kernel, HV, Host, Guest, Idle bool
}

// Inherit controls whether child tasks created after the counter is
// opened also count events.
type Inherit int

const (
	// InheritChildren makes counts propagate to children created
	// by fork.
	InheritChildren Inherit = iota
	// InheritThreads additionally propagates to threads created
	// with CLONE_THREAD. Requires linux-5.13.
	InheritThreads
)

// OnExecve controls what happens to the counter across execve(2).
type OnExecve int

const (
	// EnableOnExecve enables a disabled counter on the next
	// execve.
	EnableOnExecve OnExecve = iota
	// RemoveOnExecve removes the counter from the task on the
	// next execve. Requires linux-5.13, and (per the kernel) must
	// be paired with OnSample.Sigtrap.
	RemoveOnExecve
)

// StatFormat selects which extra fields Counter.Stat decodes from
// the read() payload (see Stat).
type StatFormat struct {
	ID          bool
	TimeEnabled bool
	TimeRunning bool
	// LostRecords requires linux-6.0.
	LostRecords bool
	// group is set internally by CounterGroup; user code never
	// sets it directly on a leader Opts.
	group bool
}

func (f StatFormat) readFormat(min uapi.Version) (uint64, error) {
	var rf uint64
	if f.ID {
		rf |= uapi.PerfFormatID
	}
	if f.TimeEnabled {
		rf |= uapi.PerfFormatTotalTimeEnabled
	}
	if f.TimeRunning {
		rf |= uapi.PerfFormatTotalTimeRunning
	}
	if f.LostRecords {
		if min.Less(uapi.V6_0) {
			return 0, &UnsupportedError{"StatFormat.LostRecords", uapi.V6_0}
		}
		rf |= uapi.PerfFormatLost
	}
	if f.group {
		rf |= uapi.PerfFormatGroup
	}
	return rf, nil
}

// SampleOn controls when a counter overflows and generates a sample
// (and, if a Sampler is attached, a RecordSample). Exactly one of
// Freq or Count should be set; Freq takes priority if both are
// non-zero.
type SampleOn struct {
	// Freq requests approximately Freq samples per second; the
	// kernel dynamically retunes the sampling period to
	// approximate this rate.
	Freq uint64
	// Count requests one sample every Count occurrences of the
	// underlying event. Count == 0 means "never overflow".
	Count uint64
}

// SampleSkid is the requested precision of the instruction pointer
// recorded in a sample, trading off how aggressively the PMU may
// skid past the triggering instruction for how cheaply it can do so.
type SampleSkid int

const (
	SkidArbitrary SampleSkid = iota
	SkidConstant
	SkidTryZero
	SkidRequireZero
)

func (s SampleSkid) preciseIP() uint64 {
	switch s {
	case SkidConstant:
		return 1
	case SkidTryZero:
		return 2
	case SkidRequireZero:
		return 3
	default:
		return 0
	}
}

// Size is a byte count used for variable-length sample sub-fields
// (user stack dump size, AUX sample size).
type Size uint32

// CallChain enables call-chain (stack unwind) capture in samples.
type CallChain struct {
	// MaxStack bounds the number of frames the kernel unwinds per
	// sample; should be < /proc/sys/kernel/perf_event_max_stack.
	MaxStack uint16
}

// WeightKind selects between the single-value and structured weight
// sample fields.
type WeightKind int

const (
	WeightFull WeightKind = iota
	// WeightVars requires linux-5.12.
	WeightVars
)

// TargetPriv selects the privilege levels recorded in LBR branch
// stack entries. If all three fields are false, the levels are
// inherited from the enclosing Opts.Exclude.
type TargetPriv struct {
	User, Kernel, HV bool
}

// BranchType selects which categories of branch the LBR captures.
type BranchType struct {
	Any, AnyCall, AnyReturn, IndCall, IndJump, Cond, Call bool
	AbortTx, InTx, NoTx, CallStack                        bool
}

// EntryFormat controls which per-entry metadata the LBR decoder
// includes.
type EntryFormat struct {
	// Flags includes mispredict/predicted/in-tx/abort/branch-type
	// bits per entry (the default; set NoFlags to omit them).
	NoFlags bool
	// Cycles includes the cycle count since the last branch per
	// entry (the default; set NoCycles to omit it).
	NoCycles bool
	// TypeSave requests the raw extended branch type. Requires
	// linux-4.15.
	TypeSave bool
	// HWIndex requests the hardware LBR TOS index. Requires
	// linux-4.20.
	HWIndex bool
	// PrivSave requests per-entry privilege bits. Requires
	// linux-6.1.
	PrivSave bool
	// Counters requests the branch-counters extension. Requires
	// linux-6.8.
	Counters bool
}

// LBR configures last-branch-record (branch stack) capture.
type LBR struct {
	TargetPriv  TargetPriv
	BranchType  BranchType
	EntryFormat EntryFormat
}

// RegsMask is a bitmask of architecture registers to capture; the
// bit-to-register mapping is architecture defined (see
// perf_event.h's PERF_REG_* enums for the target arch).
type RegsMask uint64

// SampleFields selects which optional fields samples carry. A zero
// SampleFields requests no optional fields at all (only the fixed
// sample_id trailer fields apply, if RecordIDAll is set).
type SampleFields struct {
	Stat          bool
	Period        bool
	CGroup        bool
	UserStack     *Size
	CallChain     *CallChain
	DataAddr      bool
	DataPhysAddr  bool
	DataPageSize  bool // Requires linux-5.11.
	DataSource    bool
	CodeAddr      bool
	CodePageSize  bool // Requires linux-5.11.
	UserRegs      RegsMask
	IntrRegs      RegsMask
	Raw           bool
	LBR           *LBR
	Aux           *Size
	Transaction   bool
	Weight        *WeightKind
}

// MmapRecord controls which mmap records are generated.
type MmapRecord struct {
	// Code requests a record for executable mappings.
	Code bool
	// Data requests a record for non-executable (data) mappings.
	Data bool
	// UseBuildID requests the kernel report a build ID instead of
	// a device/inode pair when one is available. Requires
	// linux-5.12.
	UseBuildID bool
}

// ExtraRecord selects which informational (non-sample) record types
// the kernel emits.
type ExtraRecord struct {
	Task        bool
	Read        bool
	Comm        bool
	Mmap        *MmapRecord
	CGroup      bool // Requires linux-5.7.
	Ksymbol     bool // Requires linux-4.18.
	BPFEvent    bool // Requires linux-4.18.
	TextPoke    bool // Requires linux-5.9.
	CtxSwitch   bool
	Namespaces  bool // Requires linux-4.12.
}

// RecordIDFormat selects which fields the trailing sample_id (or
// leading, for Sample records) identifier carries.
type RecordIDFormat struct {
	ID, StreamID, CPU, Task, Time bool
}

// WakeUp controls how often the kernel raises readiness (EPOLLIN) on
// the perf fd for a Sampler's ring. Exactly one of Bytes or Samples
// should be set.
type WakeUp struct {
	// Bytes wakes the consumer once this many bytes of data ring
	// output have been written since the last wake-up.
	Bytes uint64
	// Samples wakes the consumer once this many sample records
	// have been written. Samples == 0 means "every record".
	Samples uint64
	// OnAuxBytes wakes the consumer once this many AUX bytes have
	// been written since the last AUX wake-up. Unlike Bytes/Samples
	// it has no "every record" default and no watermark-vs-count
	// union to select: it is its own independent attribute field
	// (aux_watermark), always in bytes.
	OnAuxBytes uint64
}

// Clock selects which clock the kernel uses for sample timestamps.
// Requires linux-2.6.38 is always available; this type exists so
// callers can opt out of the default (perf_clock, CLOCK_MONOTONIC)
// when correlating with wall-clock or other subsystems.
type Clock int

const (
	ClockDefault Clock = iota
	ClockRealtime
	ClockMonotonic
	ClockMonotonicRaw
	ClockBootTime
	ClockTAI
)

// AuxTracerAction pauses or resumes a leader's AUX tracer output from
// a sibling event's overflow. Requires linux-6.13.
type AuxTracerAction int

const (
	AuxTracerNone AuxTracerAction = iota
	AuxTracerPause
	AuxTracerResume
)

// OnSample is the action to take when SampleOn fires, beyond emitting
// a Record.
type OnSample struct {
	// Aux pauses or resumes the group leader's AUX tracer.
	// Requires linux-6.13.
	Aux AuxTracerAction
	// Sigtrap requests synchronous SIGTRAP delivery to the target
	// on overflow, with SigData delivered in siginfo. Requires
	// linux-5.13, and (if set) forces RemoveOnExecve semantics.
	Sigtrap   bool
	SigData   uint64
}

// Opts configures a Counter (or a CounterGroup leader).
//
// The zero Opts is a reasonable default: no exclusions, not
// inherited, disabled-on-create, no sampling (SampleOn.Count == 0,
// i.e. never overflow), no extra records.
type Opts struct {
	Exclude Priv

	// Inherit, if non-nil, lets child tasks inherit this counter.
	Inherit *Inherit

	// OnExecve controls behavior across execve. nil leaves the
	// counter attached and enabled state unchanged.
	OnExecve *OnExecve

	// Pinned requires the counter to always be on the PMU; it
	// fails to count (returning an error, not a crash) when the
	// PMU is oversubscribed rather than being silently
	// multiplexed.
	Pinned bool
	// Exclusive requests this be the only counter using its PMU
	// while it is scheduled.
	Exclusive bool

	StatFormat StatFormat

	// Enable starts the counter immediately; otherwise it starts
	// disabled and Counter.Enable must be called.
	Enable bool

	SampleOn     SampleOn
	SampleSkid   SampleSkid
	SampleFields SampleFields

	ExtraRecord ExtraRecord

	// RecordIDAll, if true, appends a sample_id trailer (per
	// RecordIDFormat) to every non-Sample record.
	RecordIDAll    bool
	RecordIDFormat RecordIDFormat

	WakeUp WakeUp

	OnSample OnSample

	// Clock selects the sample timestamp clock. The zero value
	// (ClockDefault) leaves the kernel default in place.
	Clock Clock

	// PauseAux starts the leader's AUX tracer paused. Requires
	// linux-6.13.
	PauseAux bool

	// AuxOutput routes this event's samples into the group
	// leader's AUX stream instead of the normal sample stream.
	// Only meaningful (and only settable) via sibling Opts; see
	// SiblingOpts.AuxOutput.
	auxOutput bool

	// MinKernel is the minimum kernel version the assembled
	// attribute must be valid for. Any enabled option that
	// requires a newer kernel fails Counter.New with
	// *UnsupportedError instead of risking an EINVAL from the
	// syscall. The zero value means uapi.DefaultMin.
	MinKernel uapi.Version
}

func (o *Opts) minKernel() uapi.Version {
	if o.MinKernel == (uapi.Version{}) {
		return uapi.DefaultMin
	}
	return o.MinKernel
}

// SiblingOpts configures a non-leader member of a CounterGroup. It
// omits everything the kernel requires to be identical across a
// group (clock) or restricts to the leader (Exclusive, Pinned), and
// narrows StatFormat (no PERF_FORMAT_GROUP: a sibling's own read()
// is never group-formatted).
type SiblingOpts struct {
	Exclude Priv

	Inherit  *Inherit
	OnExecve *OnExecve

	StatFormat StatFormat

	Enable bool

	SampleOn     SampleOn
	SampleSkid   SampleSkid
	SampleFields SampleFields

	ExtraRecord ExtraRecord

	RecordIDAll    bool
	RecordIDFormat RecordIDFormat

	WakeUp WakeUp

	// AuxOutput enables this sibling to generate data for the
	// leader's AUX tracer instead of its own sample stream.
	// Requires the leader to be an AUX event, and linux-5.4.
	AuxOutput bool

	OnSample OnSample

	MinKernel uapi.Version
}

func (o *SiblingOpts) minKernel() uapi.Version {
	if o.MinKernel == (uapi.Version{}) {
		return uapi.DefaultMin
	}
	return o.MinKernel
}
