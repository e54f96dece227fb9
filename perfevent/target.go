// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"os"

	"github.com/aclements/perfevent/internal/uapi"
)

// A Target names the process (or cgroup) and CPU a Counter monitors.
//
// The legal combinations are a kernel restriction (monitoring a
// cgroup on all CPUs, or any process on all CPUs, is rejected by
// perf_event_open itself); Target's constructors only expose the
// combinations the kernel accepts, rather than exposing a bare
// {pid, cpu, flags} struct a caller could misuse.
type Target struct {
	pid   int32
	cpu   int32
	flags uint64
}

// ForProcess monitors pid on whatever CPU it happens to run on. Use
// CurrentProcess (or ForProcess(0)) for the calling process.
//
// pid is a process or thread ID; see getpid(2)/gettid(2).
func ForProcess(pid int) Target {
	return Target{pid: int32(pid), cpu: -1}
}

// CurrentProcess monitors the calling process on any CPU.
func CurrentProcess() Target {
	return ForProcess(0)
}

// ForCPU monitors every process scheduled onto cpu.
func ForCPU(cpu int) Target {
	return Target{pid: -1, cpu: int32(cpu)}
}

// ForProcessOnCPU monitors pid, but only while it runs on cpu.
func ForProcessOnCPU(pid, cpu int) Target {
	return Target{pid: int32(pid), cpu: int32(cpu)}
}

// ForCgroupOnCPU monitors every task in the cgroup named by an open
// file descriptor on its cgroupfs directory (e.g.
// /sys/fs/cgroup/<name>), restricted to cpu.
//
// cgroup monitoring is system-wide and may require extra privileges;
// there is no "cgroup on all CPUs" combination because the kernel
// rejects it (PID_CGROUP together with cpu == -1), so that
// combination is simply not constructible here.
func ForCgroupOnCPU(cgroup *os.File, cpu int) Target {
	return Target{
		pid:   int32(cgroup.Fd()),
		cpu:   int32(cpu),
		flags: uapi.PerfFlagPIDCgroup,
	}
}
