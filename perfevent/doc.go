// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfevent is a high-level binding to the Linux
// perf_event_open facility.
//
// A Counter configures and opens one performance event on a target
// process/CPU (or cgroup/CPU) pair and reads its running count with
// Counter.Stat. Multiple Counters can be composed into a CounterGroup
// so the kernel schedules them onto the PMU together. A Sampler mmaps
// a Counter's ring buffer so the kernel can additionally deliver
// sample, mmap, comm, and other Records as they happen, and an
// AuxTracer mmaps a second ring for a raw hardware trace byte stream
// such as Intel PT.
//
// The entry point's API surface is deliberately small: build an Event
// (Hardware, HWCache, Software, Raw, Tracepoint, or Kprobe/Uprobe), a
// Target, and an Opts, then call New. Breakpoint has no exported
// conversion to an Event.
package perfevent // import "github.com/aclements/perfevent/perfevent"
