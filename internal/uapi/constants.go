// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uapi

// This file is a hand-maintained transcription of
// include/uapi/linux/perf_event.h (no generator produces it): named
// integer constants with no Go-level type beyond their numeric width.
// Higher-level bitmask/enum types with String() methods live in
// package perfevent, which imports these as plain integers exactly as
// spec.md §2 describes the UAPI constants table being "consumed as
// named integers" by its callers.

// perf_type_id: the Type field of perf_event_attr.
const (
	PerfTypeHardware   = 0
	PerfTypeSoftware   = 1
	PerfTypeTracepoint = 2
	PerfTypeHWCache    = 3
	PerfTypeRaw        = 4
	PerfTypeBreakpoint = 5
)

// perf_hw_id: generalized hardware event config values under
// PerfTypeHardware.
const (
	PerfCountHWCPUCycles            = 0
	PerfCountHWInstructions         = 1
	PerfCountHWCacheReferences      = 2
	PerfCountHWCacheMisses          = 3
	PerfCountHWBranchInstructions   = 4
	PerfCountHWBranchMisses         = 5
	PerfCountHWBusCycles            = 6
	PerfCountHWStalledCyclesFrontend = 7
	PerfCountHWStalledCyclesBackend  = 8
	PerfCountHWRefCPUCycles          = 9
)

// perf_hw_cache_id / perf_hw_cache_op_id / perf_hw_cache_op_result_id:
// combine as id | (op << 8) | (result << 16) to form the config of a
// PerfTypeHardware cache event.
const (
	PerfCountHWCacheL1D  = 0
	PerfCountHWCacheL1I  = 1
	PerfCountHWCacheLL   = 2
	PerfCountHWCacheDTLB = 3
	PerfCountHWCacheITLB = 4
	PerfCountHWCacheBPU  = 5
	PerfCountHWCacheNode = 6

	PerfCountHWCacheOpRead     = 0
	PerfCountHWCacheOpWrite    = 1
	PerfCountHWCacheOpPrefetch = 2

	PerfCountHWCacheResultAccess = 0
	PerfCountHWCacheResultMiss   = 1
)

// perf_sw_ids: config values under PerfTypeSoftware.
const (
	PerfCountSWCPUClock        = 0
	PerfCountSWTaskClock       = 1
	PerfCountSWPageFaults      = 2
	PerfCountSWContextSwitches = 3
	PerfCountSWCPUMigrations   = 4
	PerfCountSWPageFaultsMin   = 5
	PerfCountSWPageFaultsMaj   = 6
	PerfCountSWAlignmentFaults = 7
	PerfCountSWEmulationFaults = 8
	PerfCountSWDummy           = 9
	PerfCountSWBPFOutput       = 10 // Since linux-4.4.
	PerfCountSWCgroupSwitches  = 11 // Since linux-5.13.
)

// perf_event_sample_format: bits of the SampleType field.
const (
	PerfSampleIP           uint64 = 1 << 0
	PerfSampleTID          uint64 = 1 << 1
	PerfSampleTime         uint64 = 1 << 2
	PerfSampleAddr         uint64 = 1 << 3
	PerfSampleRead         uint64 = 1 << 4
	PerfSampleCallchain    uint64 = 1 << 5
	PerfSampleID           uint64 = 1 << 6
	PerfSampleCPU          uint64 = 1 << 7
	PerfSamplePeriod       uint64 = 1 << 8
	PerfSampleStreamID     uint64 = 1 << 9
	PerfSampleRaw          uint64 = 1 << 10
	PerfSampleBranchStack  uint64 = 1 << 11
	PerfSampleRegsUser     uint64 = 1 << 12
	PerfSampleStackUser    uint64 = 1 << 13
	PerfSampleWeight       uint64 = 1 << 14
	PerfSampleDataSrc      uint64 = 1 << 15
	PerfSampleIdentifier   uint64 = 1 << 16
	PerfSampleTransaction  uint64 = 1 << 17
	PerfSampleRegsIntr     uint64 = 1 << 18
	PerfSamplePhysAddr     uint64 = 1 << 19 // Since linux-4.14.
	PerfSampleAux          uint64 = 1 << 20 // Since linux-4.17.
	PerfSampleCGroup       uint64 = 1 << 21 // Since linux-5.7.
	PerfSampleDataPageSize uint64 = 1 << 22 // Since linux-5.11.
	PerfSampleCodePageSize uint64 = 1 << 23 // Since linux-5.11.
	PerfSampleWeightStruct uint64 = 1 << 24 // Since linux-5.12.
)

// perf_branch_sample_type: bits of the BranchSampleType field.
const (
	PerfSampleBranchUser       uint64 = 1 << 0
	PerfSampleBranchKernel     uint64 = 1 << 1
	PerfSampleBranchHV         uint64 = 1 << 2
	PerfSampleBranchAny        uint64 = 1 << 3
	PerfSampleBranchAnyCall    uint64 = 1 << 4
	PerfSampleBranchAnyReturn  uint64 = 1 << 5
	PerfSampleBranchIndCall    uint64 = 1 << 6
	PerfSampleBranchAbortTx    uint64 = 1 << 7
	PerfSampleBranchInTx       uint64 = 1 << 8
	PerfSampleBranchNoTx       uint64 = 1 << 9
	PerfSampleBranchCond       uint64 = 1 << 10
	PerfSampleBranchCallStack  uint64 = 1 << 11
	PerfSampleBranchIndJump    uint64 = 1 << 12
	PerfSampleBranchCall       uint64 = 1 << 13
	PerfSampleBranchNoFlags    uint64 = 1 << 14
	PerfSampleBranchNoCycles   uint64 = 1 << 15
	PerfSampleBranchTypeSave   uint64 = 1 << 16 // Since linux-4.15.
	PerfSampleBranchHWIndex    uint64 = 1 << 17 // Since linux-4.20.
	PerfSampleBranchPrivSave   uint64 = 1 << 18 // Since linux-6.1.
	PerfSampleBranchCounters   uint64 = 1 << 19 // Since linux-6.8.
)

// perf_event_read_format: bits of the ReadFormat field.
const (
	PerfFormatTotalTimeEnabled uint64 = 1 << 0
	PerfFormatTotalTimeRunning uint64 = 1 << 1
	PerfFormatID               uint64 = 1 << 2
	PerfFormatGroup            uint64 = 1 << 3
	PerfFormatLost             uint64 = 1 << 4 // Since linux-6.0.
)

// Bits of the packed EventFlags word (the kernel's anonymous
// perf_event_attr bitfield). Ordered exactly as the UAPI header
// declares them; see DESIGN.md for why this differs from (extends)
// the teacher's own EventFlags constants.
const (
	AttrBitDisabled               = 0
	AttrBitInherit                = 1
	AttrBitPinned                 = 2
	AttrBitExclusive              = 3
	AttrBitExcludeUser            = 4
	AttrBitExcludeKernel          = 5
	AttrBitExcludeHV              = 6
	AttrBitExcludeIdle            = 7
	AttrBitMmap                   = 8
	AttrBitComm                   = 9
	AttrBitFreq                   = 10
	AttrBitInheritStat            = 11
	AttrBitEnableOnExec           = 12
	AttrBitTask                   = 13
	AttrBitWatermark              = 14
	AttrBitPreciseIPShift         = 15 // 2 bits: 15-16.
	AttrBitMmapData               = 17
	AttrBitSampleIDAll            = 18
	AttrBitExcludeHost            = 19
	AttrBitExcludeGuest           = 20
	AttrBitExcludeCallchainKernel = 21
	AttrBitExcludeCallchainUser   = 22
	AttrBitMmap2                  = 23
	AttrBitCommExec               = 24
	AttrBitUseClockID              = 25
	AttrBitContextSwitch           = 26
	AttrBitWriteBackward            = 27
	AttrBitNamespaces               = 28
	AttrBitKsymbol                  = 29
	AttrBitBPFEvent                 = 30 // Since linux-4.18.
	AttrBitAuxOutput                = 31 // Since linux-5.4.
	AttrBitCGroup                   = 32 // Since linux-5.7.
	AttrBitTextPoke                 = 33 // Since linux-5.9.
	AttrBitBuildID                  = 34 // Since linux-5.12.
	AttrBitInheritThread            = 35 // Since linux-5.13.
	AttrBitRemoveOnExec             = 36 // Since linux-5.13.
	AttrBitSigtrap                  = 37 // Since linux-5.13.
)

// Bits of the separate 3-bit aux-action bitfield added alongside
// sigtrap, since linux-6.13.
const (
	AttrAuxBitStartPaused = 0
	AttrAuxBitPause       = 1
	AttrAuxBitResume      = 2
)

// PERF_FLAG_*: the flags argument of perf_event_open.
const (
	PerfFlagFDNoGroup   = 1 << 0
	PerfFlagFDOutput    = 1 << 1
	PerfFlagPIDCgroup   = 1 << 2
	PerfFlagFDCloexec   = 1 << 3
)

// perf_event_ioc_*: ioctl request numbers on a perf fd.
const (
	IocEnable           = 0x2400
	IocDisable          = 0x2401
	IocRefresh          = 0x2402
	IocReset            = 0x2403
	IocPeriod           = 0x40082404
	IocSetOutput        = 0x2405
	IocSetFilter        = 0x40082406
	IocID               = 0x80082407
	IocSetBPF           = 0x40042408 // Since linux-4.1.
	IocPauseOutput      = 0x40042409 // Since linux-4.7.
	IocQueryBPF         = 0xc008240a // Since linux-4.16.
	IocModifyAttributes = 0x4008240b // Since linux-4.17.

	IocFlagGroup = 1
)

// hw_breakpoint_type / hw_breakpoint_len.
const (
	HwBreakpointEmpty = 0
	HwBreakpointR     = 1
	HwBreakpointW     = 2
	HwBreakpointRW    = 3
	HwBreakpointX     = 4

	HwBreakpointLen1 = 1
	HwBreakpointLen2 = 2
	HwBreakpointLen3 = 3 // Since linux-4.10.
	HwBreakpointLen4 = 4
	HwBreakpointLen5 = 5 // Since linux-4.10.
	HwBreakpointLen6 = 6 // Since linux-4.10.
	HwBreakpointLen7 = 7 // Since linux-4.10.
	HwBreakpointLen8 = 8
)

// linux/clockid clock ids usable with use_clockid.
const (
	ClockRealtime    = 0
	ClockMonotonic   = 1
	ClockBootTime    = 7
	ClockTAI         = 11
	ClockMonotonicRaw = 4
)

// AttrSizeVN is sizeof(struct perf_event_attr) for the current ABI
// version (v7, matching Latest).
const AttrSizeVN = 136

// perf_event_type: the Type field of perf_event_header.
const (
	RecordMmap            = 1
	RecordLost            = 2
	RecordComm            = 3
	RecordExit            = 4
	RecordThrottle        = 5
	RecordUnthrottle      = 6
	RecordFork            = 7
	RecordRead            = 8
	RecordSample          = 9
	RecordMmap2           = 10
	RecordAux             = 11 // Since linux-4.1.
	RecordItraceStart     = 12 // Since linux-4.1.
	RecordLostSamples     = 13 // Since linux-4.2.
	RecordSwitch          = 14 // Since linux-4.3.
	RecordSwitchCPUWide   = 15 // Since linux-4.3.
	RecordNamespaces      = 16 // Since linux-4.12.
	RecordKsymbol         = 17 // Since linux-4.18.
	RecordBPFEvent        = 18 // Since linux-4.18.
	RecordCGroup          = 19 // Since linux-5.7.
	RecordTextPoke        = 20 // Since linux-5.9.
	RecordAuxOutputHWID   = 21 // Since linux-5.18.
)

// perf_event_header.misc bits.
const (
	RecordMiscCPUModeMask  = 7
	RecordMiscMmapData     = 1 << 13
	RecordMiscCommExec     = 1 << 13
	RecordMiscSwitchOut    = 1 << 13
	RecordMiscExactIP      = 1 << 14
	RecordMiscSwitchOutPreempt = 1 << 14
	RecordMiscMmapBuildID  = 1 << 14
	RecordMiscExtReserved  = 1 << 15

	RecordMiscCPUModeUnknown = 0
	RecordMiscKernel         = 1
	RecordMiscUser           = 2
	RecordMiscHypervisor     = 3
	RecordMiscGuestKernel    = 4
	RecordMiscGuestUser      = 5
)

// AUX record flags (RecordAux.Flags).
const (
	AuxFlagTruncated = 1 << 0
	AuxFlagOverwrite = 1 << 1
	AuxFlagPartial   = 1 << 2
	AuxFlagCollision = 1 << 3
)
