// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"fmt"

	"github.com/aclements/perfevent/internal/uapi"
)

// An Event describes a specific performance event to monitor. It is
// the lowered, kernel-ready form of one of the event families below
// (Hardware, Software, HWCache, Raw, Breakpoint, Tracepoint, or a
// Kprobe/Uprobe probe).
//
// Event corresponds to the (type, config, config1, config2, bp_type)
// tuple the attribute assembler copies verbatim into the kernel
// attribute struct; it has no config3 component.
type Event struct {
	typ     uint32
	config  uint64
	config1 uint64
	config2 uint64
	bpType  uint32

	// strConfig1, if non-nil, is a NUL-terminated byte slice whose
	// address perf_event_open expects in config1 (Ext1) instead of
	// a literal integer (kprobe symbol names, uprobe paths). The
	// syscall layer keeps this alive until after the syscall
	// returns; see openPerfEvent in syscall_linux.go.
	strConfig1 []byte
}

// Hardware is a generalized hardware CPU event. Not all of these are
// available on all platforms; an unsupported one fails at
// Counter.New with an OS error (usually ENOENT) rather than at
// assembly time, since support is a hardware, not a kernel-version,
// property.
type Hardware int

const (
	CPUCycles Hardware = iota
	Instructions
	CacheReferences
	CacheMisses
	BranchInstructions
	BranchMisses
	BusCycles
	StalledCyclesFrontend
	StalledCyclesBackend
	RefCPUCycles
)

func (h Hardware) Event() Event {
	var config uint64
	switch h {
	case CPUCycles:
		config = uapi.PerfCountHWCPUCycles
	case Instructions:
		config = uapi.PerfCountHWInstructions
	case CacheReferences:
		config = uapi.PerfCountHWCacheReferences
	case CacheMisses:
		config = uapi.PerfCountHWCacheMisses
	case BranchInstructions:
		config = uapi.PerfCountHWBranchInstructions
	case BranchMisses:
		config = uapi.PerfCountHWBranchMisses
	case BusCycles:
		config = uapi.PerfCountHWBusCycles
	case StalledCyclesFrontend:
		config = uapi.PerfCountHWStalledCyclesFrontend
	case StalledCyclesBackend:
		config = uapi.PerfCountHWStalledCyclesBackend
	case RefCPUCycles:
		config = uapi.PerfCountHWRefCPUCycles
	default:
		panic(fmt.Sprintf("perfevent: unknown Hardware event %d", h))
	}
	return Event{typ: uapi.PerfTypeHardware, config: config}
}

// CacheType is the cache level or unit a HWCache event targets.
type CacheType int

const (
	CacheL1D CacheType = iota
	CacheL1I
	CacheLL
	CacheDTLB
	CacheITLB
	CacheBPU
	CacheNode
)

// CacheOp is the operation a HWCache event observes.
type CacheOp int

const (
	CacheOpRead CacheOp = iota
	CacheOpWrite
	CacheOpPrefetch
)

// CacheResult selects between cache accesses and cache misses for a
// HWCache event.
type CacheResult int

const (
	CacheResultAccess CacheResult = iota
	CacheResultMiss
)

// HWCache is a hardware cache event: a (cache level, operation,
// result) triple, e.g. (L1D, Read, Miss) for L1 data cache read
// misses.
type HWCache struct {
	Type   CacheType
	Op     CacheOp
	Result CacheResult
}

func (c HWCache) Event() Event {
	var ty uint64
	switch c.Type {
	case CacheL1D:
		ty = uapi.PerfCountHWCacheL1D
	case CacheL1I:
		ty = uapi.PerfCountHWCacheL1I
	case CacheLL:
		ty = uapi.PerfCountHWCacheLL
	case CacheDTLB:
		ty = uapi.PerfCountHWCacheDTLB
	case CacheITLB:
		ty = uapi.PerfCountHWCacheITLB
	case CacheBPU:
		ty = uapi.PerfCountHWCacheBPU
	case CacheNode:
		ty = uapi.PerfCountHWCacheNode
	default:
		panic(fmt.Sprintf("perfevent: unknown cache type %d", c.Type))
	}
	var op uint64
	switch c.Op {
	case CacheOpRead:
		op = uapi.PerfCountHWCacheOpRead
	case CacheOpWrite:
		op = uapi.PerfCountHWCacheOpWrite
	case CacheOpPrefetch:
		op = uapi.PerfCountHWCacheOpPrefetch
	default:
		panic(fmt.Sprintf("perfevent: unknown cache op %d", c.Op))
	}
	var result uint64
	switch c.Result {
	case CacheResultAccess:
		result = uapi.PerfCountHWCacheResultAccess
	case CacheResultMiss:
		result = uapi.PerfCountHWCacheResultMiss
	default:
		panic(fmt.Sprintf("perfevent: unknown cache result %d", c.Result))
	}
	return Event{
		typ:    uapi.PerfTypeHardware,
		config: ty | (op << 8) | (result << 16),
	}
}

// Software is a software event generated by the kernel itself, not
// by a PMU.
type Software int

const (
	CPUClock Software = iota
	TaskClock
	PageFaults
	ContextSwitches
	CPUMigrations
	MinorPageFaults
	MajorPageFaults
	AlignmentFaults
	EmulationFaults
	Dummy
	BPFOutput      // Since linux-4.4.
	CgroupSwitches // Since linux-5.13.
)

func (s Software) Event() Event {
	var config uint64
	switch s {
	case CPUClock:
		config = uapi.PerfCountSWCPUClock
	case TaskClock:
		config = uapi.PerfCountSWTaskClock
	case PageFaults:
		config = uapi.PerfCountSWPageFaults
	case ContextSwitches:
		config = uapi.PerfCountSWContextSwitches
	case CPUMigrations:
		config = uapi.PerfCountSWCPUMigrations
	case MinorPageFaults:
		config = uapi.PerfCountSWPageFaultsMin
	case MajorPageFaults:
		config = uapi.PerfCountSWPageFaultsMaj
	case AlignmentFaults:
		config = uapi.PerfCountSWAlignmentFaults
	case EmulationFaults:
		config = uapi.PerfCountSWEmulationFaults
	case Dummy:
		config = uapi.PerfCountSWDummy
	case BPFOutput:
		config = uapi.PerfCountSWBPFOutput
	case CgroupSwitches:
		config = uapi.PerfCountSWCgroupSwitches
	default:
		panic(fmt.Sprintf("perfevent: unknown Software event %d", s))
	}
	return Event{typ: uapi.PerfTypeSoftware, config: config}
}

// Raw is an implementation-specific (PMU-model-specific) event,
// passed through to the kernel uninterpreted.
type Raw struct {
	Config, Config1, Config2 uint64
}

func (r Raw) Event() Event {
	return Event{
		typ:     uapi.PerfTypeRaw,
		config:  r.Config,
		config1: r.Config1,
		config2: r.Config2,
	}
}

// Tracepoint monitors a kernel or user tracepoint by its numeric ID,
// as found under
// /sys/kernel/tracing/events/<category>/<name>/id.
type Tracepoint struct {
	ID uint64
}

func (t Tracepoint) Event() Event {
	return Event{typ: uapi.PerfTypeTracepoint, config: t.ID}
}

// BreakpointAccess selects the access type a Breakpoint triggers on.
type BreakpointAccess int

const (
	BreakpointRead BreakpointAccess = iota
	BreakpointWrite
	BreakpointReadWrite
	BreakpointExecute
)

// BreakpointLen is the size, in bytes, of the watched memory region.
// 3, 5, 6, and 7 byte breakpoints require linux-4.10 or newer;
// Breakpoint lowering rejects them when its minimum kernel version is
// older.
type BreakpointLen int

const (
	BreakpointLen1 BreakpointLen = 1
	BreakpointLen2 BreakpointLen = 2
	BreakpointLen3 BreakpointLen = 3
	BreakpointLen4 BreakpointLen = 4
	BreakpointLen5 BreakpointLen = 5
	BreakpointLen6 BreakpointLen = 6
	BreakpointLen7 BreakpointLen = 7
	BreakpointLen8 BreakpointLen = 8
)

// Breakpoint is a hardware watchpoint on a memory address, or (for
// BreakpointExecute) an execution breakpoint.
type Breakpoint struct {
	Access BreakpointAccess
	Addr   uint64
	// Len is ignored for BreakpointExecute.
	Len BreakpointLen
}

func (bp Breakpoint) lower(min uapi.Version) (Event, error) {
	var bpType uint32
	var bpLen uint64
	switch bp.Access {
	case BreakpointExecute:
		bpType = uapi.HwBreakpointX
	case BreakpointRead:
		bpType = uapi.HwBreakpointR
	case BreakpointWrite:
		bpType = uapi.HwBreakpointW
	case BreakpointReadWrite:
		bpType = uapi.HwBreakpointRW
	default:
		return Event{}, fmt.Errorf("perfevent: unknown breakpoint access %d", bp.Access)
	}
	if bpType != uapi.HwBreakpointX {
		switch bp.Len {
		case BreakpointLen1:
			bpLen = uapi.HwBreakpointLen1
		case BreakpointLen2:
			bpLen = uapi.HwBreakpointLen2
		case BreakpointLen4:
			bpLen = uapi.HwBreakpointLen4
		case BreakpointLen8:
			bpLen = uapi.HwBreakpointLen8
		case BreakpointLen3, BreakpointLen5, BreakpointLen6, BreakpointLen7:
			if min.Less(uapi.V4_10) {
				return Event{}, &UnsupportedError{Option: "Breakpoint.Len (3/5/6/7)", Need: uapi.V4_10}
			}
			switch bp.Len {
			case BreakpointLen3:
				bpLen = uapi.HwBreakpointLen3
			case BreakpointLen5:
				bpLen = uapi.HwBreakpointLen5
			case BreakpointLen6:
				bpLen = uapi.HwBreakpointLen6
			case BreakpointLen7:
				bpLen = uapi.HwBreakpointLen7
			}
		default:
			return Event{}, fmt.Errorf("perfevent: unknown breakpoint length %d", bp.Len)
		}
	}
	return Event{
		typ:     uapi.PerfTypeBreakpoint,
		config2: bpLen,
		bpType:  bpType,
		config1: bp.Addr,
	}, nil
}
