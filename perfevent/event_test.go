// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"testing"

	"github.com/aclements/perfevent/internal/uapi"
)

func TestHardwareEvent(t *testing.T) {
	ev := CPUCycles.Event()
	if ev.typ != uapi.PerfTypeHardware {
		t.Errorf("typ = %d, want PerfTypeHardware", ev.typ)
	}
	if ev.config != uapi.PerfCountHWCPUCycles {
		t.Errorf("config = %d, want PerfCountHWCPUCycles", ev.config)
	}
}

func TestHardwareEventPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown Hardware value")
		}
	}()
	Hardware(1000).Event()
}

func TestHWCacheEvent(t *testing.T) {
	ev := HWCache{Type: CacheL1D, Op: CacheOpRead, Result: CacheResultMiss}.Event()
	if ev.typ != uapi.PerfTypeHardware {
		t.Errorf("typ = %d, want PerfTypeHardware", ev.typ)
	}
	want := uapi.PerfCountHWCacheL1D | (uapi.PerfCountHWCacheOpRead << 8) | (uapi.PerfCountHWCacheResultMiss << 16)
	if ev.config != want {
		t.Errorf("config = %#x, want %#x", ev.config, want)
	}
}

func TestSoftwareEvent(t *testing.T) {
	ev := PageFaults.Event()
	if ev.typ != uapi.PerfTypeSoftware {
		t.Errorf("typ = %d, want PerfTypeSoftware", ev.typ)
	}
	if ev.config != uapi.PerfCountSWPageFaults {
		t.Errorf("config = %d, want PerfCountSWPageFaults", ev.config)
	}
}

func TestRawEvent(t *testing.T) {
	r := Raw{Config: 0x1234, Config1: 0x5678, Config2: 0x9abc}
	ev := r.Event()
	if ev.typ != uapi.PerfTypeRaw {
		t.Errorf("typ = %d, want PerfTypeRaw", ev.typ)
	}
	if ev.config != r.Config || ev.config1 != r.Config1 || ev.config2 != r.Config2 {
		t.Errorf("Event() = %+v, want fields to match Raw verbatim", ev)
	}
}

func TestTracepointEvent(t *testing.T) {
	ev := Tracepoint{ID: 42}.Event()
	if ev.typ != uapi.PerfTypeTracepoint || ev.config != 42 {
		t.Errorf("Event() = %+v, want {typ: PerfTypeTracepoint, config: 42}", ev)
	}
}

func TestBreakpointLower(t *testing.T) {
	bp := Breakpoint{Access: BreakpointWrite, Addr: 0x1000, Len: BreakpointLen4}
	ev, err := bp.lower(uapi.Latest)
	if err != nil {
		t.Fatal(err)
	}
	if ev.typ != uapi.PerfTypeBreakpoint {
		t.Errorf("typ = %d, want PerfTypeBreakpoint", ev.typ)
	}
	if ev.bpType != uapi.HwBreakpointW {
		t.Errorf("bpType = %d, want HwBreakpointW", ev.bpType)
	}
	if ev.config1 != 0x1000 {
		t.Errorf("config1 = %#x, want addr 0x1000", ev.config1)
	}
	if ev.config2 != uapi.HwBreakpointLen4 {
		t.Errorf("config2 = %d, want HwBreakpointLen4", ev.config2)
	}
}

func TestBreakpointLowerOddLenGated(t *testing.T) {
	bp := Breakpoint{Access: BreakpointRead, Addr: 0x2000, Len: BreakpointLen3}
	_, err := bp.lower(uapi.V4_1)
	if !IsUnsupported(err) {
		t.Fatalf("err = %v, want *UnsupportedError for 3-byte breakpoint pre-4.10", err)
	}
	ev, err := bp.lower(uapi.V4_10)
	if err != nil {
		t.Fatal(err)
	}
	if ev.config2 != uapi.HwBreakpointLen3 {
		t.Errorf("config2 = %d, want HwBreakpointLen3", ev.config2)
	}
}

func TestBreakpointLowerExecuteIgnoresLen(t *testing.T) {
	bp := Breakpoint{Access: BreakpointExecute, Addr: 0x3000}
	ev, err := bp.lower(uapi.Latest)
	if err != nil {
		t.Fatal(err)
	}
	if ev.bpType != uapi.HwBreakpointX {
		t.Errorf("bpType = %d, want HwBreakpointX", ev.bpType)
	}
	if ev.config2 != 0 {
		t.Errorf("config2 = %d, want 0 for execute breakpoints", ev.config2)
	}
}
