// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"os"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/aclements/perfevent/internal/uapi"
)

// openPerfEvent calls perf_event_open(2) for ev/c against target,
// optionally as a member of the group led by groupFD (-1 for a new
// group of its own).
//
// If ev carries a strConfig1 (a kprobe symbol or uprobe path),
// openPerfEvent patches attr.Ext1 with its address immediately before
// the syscall and keeps the slice alive (via runtime.KeepAlive) until
// after the syscall returns, since the kernel only dereferences it
// during the call and a GC-moved or freed backing array would corrupt
// or crash the open.
func openPerfEvent(ev Event, c commonOpts, target Target, groupFD int) (*os.File, error) {
	attr, err := buildAttr(ev, c)
	if err != nil {
		return nil, err
	}

	flags := target.flags
	if ev.strConfig1 != nil {
		attr.Ext1 = uint64(uintptr(unsafe.Pointer(&ev.strConfig1[0])))
	}

	fd, err := unix.PerfEventOpen(&attr, int(target.pid), int(target.cpu), groupFD, int(flags|uapi.PerfFlagFDCloexec))
	runtime.KeepAlive(ev.strConfig1)
	if err != nil {
		return nil, errors.Wrap(err, "perf_event_open")
	}
	return os.NewFile(uintptr(fd), "perf_event"), nil
}

// perfIoctl issues request req on fd with argument arg, which is
// either an integer encoded directly in arg or the address of a
// larger argument (a uint64 period, a filter string, ...).
func perfIoctl(fd int, req uint, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), arg)
	if errno != 0 {
		return errors.Wrap(errno, "ioctl")
	}
	return nil
}

func ioctlEnable(fd int) error  { return perfIoctl(fd, uapi.IocEnable, 0) }
func ioctlDisable(fd int) error { return perfIoctl(fd, uapi.IocDisable, 0) }
func ioctlReset(fd int) error   { return perfIoctl(fd, uapi.IocReset, 0) }

// ioctlRefresh adds n to a disabled-by-count counter's remaining
// overflow count and (re)enables it; n must be positive.
func ioctlRefresh(fd int, n int) error {
	return perfIoctl(fd, uapi.IocRefresh, uintptr(n))
}

// ioctlPeriod changes a running counter's sample period.
func ioctlPeriod(fd int, period uint64) error {
	return perfIoctl(fd, uapi.IocPeriod, uintptr(unsafe.Pointer(&period)))
}

// ioctlSetOutput redirects fd's ring buffer to outputFD's (or, if
// outputFD is -1, detaches it so mmap can be used directly).
func ioctlSetOutput(fd, outputFD int) error {
	return perfIoctl(fd, uapi.IocSetOutput, uintptr(outputFD))
}

// ioctlSetFilter installs a ftrace filter expression on a tracepoint
// counter.
func ioctlSetFilter(fd int, filter string) error {
	b := append([]byte(filter), 0)
	err := perfIoctl(fd, uapi.IocSetFilter, uintptr(unsafe.Pointer(&b[0])))
	runtime.KeepAlive(b)
	return err
}

// ioctlID returns the unique event ID the kernel assigned fd, the
// same value PERF_FORMAT_ID/PERF_SAMPLE_ID report.
func ioctlID(fd int) (uint64, error) {
	var id uint64
	if err := perfIoctl(fd, uapi.IocID, uintptr(unsafe.Pointer(&id))); err != nil {
		return 0, err
	}
	return id, nil
}

// ioctlPauseOutput pauses or resumes a ring buffer in place. Records
// the kernel would have written while paused are dropped and counted
// as lost.
func ioctlPauseOutput(fd int, pause bool) error {
	var v uintptr
	if pause {
		v = 1
	}
	return perfIoctl(fd, uapi.IocPauseOutput, v)
}

// ioctlModifyAttributes atomically changes a running counter's
// attributes. The kernel only accepts this for breakpoint events,
// where it updates the breakpoint's address, type and length.
func ioctlModifyAttributes(fd int, attr *unix.PerfEventAttr) error {
	return perfIoctl(fd, uapi.IocModifyAttributes, uintptr(unsafe.Pointer(attr)))
}

// ioctlQueryBPF issues the QUERY_BPF ioctl with buf laid out as the
// kernel's struct perf_event_query_bpf: buf[0] is ids_len (the
// caller-supplied capacity), buf[1] receives prog_cnt, and buf[2:]
// receives up to cap(buf)-2 program IDs. Unlike perfIoctl's other
// callers, this returns the raw errno so Counter.QueryBPF can
// distinguish ENOSPC (partial success) from a hard failure.
func ioctlQueryBPF(fd int, buf []uint32) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(uapi.IocQueryBPF), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}
