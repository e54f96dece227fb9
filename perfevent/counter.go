// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"os"
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/aclements/perfevent/internal/uapi"
)

// A Counter is an open perf_event_open file descriptor counting (or
// sampling) one Event on one Target.
//
// A Counter owns its underlying file descriptor; at most one Sampler
// may ever be attached to it (Counter.Sampler and Counter.AuxTracer
// return ErrAlreadyExists on any later attempt, even after that
// Sampler is closed), since two Samplers would race reading the same
// kernel ring buffer's tail.
type Counter struct {
	f      *os.File
	ev     Event
	target Target
	opts   commonOpts

	// attr is the kernel attribute struct this Counter was last
	// opened (or SwitchTo'd) with, kept around so SwitchTo can patch
	// just the event-tuple fields before reissuing the full struct to
	// MODIFY_ATTRIBUTES.
	attr unix.PerfEventAttr

	// hasSampler is set (via atomic.CompareAndSwap) the first time
	// Sampler or AuxTracer succeeds, and never cleared: a Counter
	// with a ring buffer mmap'd can't safely hand out a second one
	// even after the first Sampler is closed, because undoing an
	// mmap and redoing it races the kernel's own bookkeeping.
	hasSampler atomic.Bool
}

// New opens a Counter for ev on target. The Counter starts disabled
// unless opts.Enable is set.
func New(ev Event, target Target, opts *Opts) (*Counter, error) {
	if opts == nil {
		opts = &Opts{}
	}
	c := opts.common()
	attr, err := buildAttr(ev, c)
	if err != nil {
		return nil, err
	}
	f, err := openPerfEvent(ev, c, target, -1)
	if err != nil {
		return nil, err
	}
	counter := &Counter{f: f, ev: ev, target: target, opts: c, attr: attr}
	runtime.SetFinalizer(counter, (*Counter).Close)
	return counter, nil
}

// FD returns the underlying perf_event_open file descriptor. It
// remains valid until Close.
func (c *Counter) FD() int { return int(c.f.Fd()) }

// Enable starts (or resumes) counting.
func (c *Counter) Enable() error { return ioctlEnable(c.FD()) }

// Disable stops counting without losing the current count.
func (c *Counter) Disable() error { return ioctlDisable(c.FD()) }

// Reset zeroes the count.
func (c *Counter) Reset() error { return ioctlReset(c.FD()) }

// Refresh re-enables a counter that disabled itself after its
// SampleOn.Count overflowed n times, allowing n more before it
// disables again. It is the non-sampling analogue of repeatedly
// calling Enable.
func (c *Counter) Refresh(n int) error { return ioctlRefresh(c.FD(), n) }

// SetPeriod changes the running sample period (or, under
// SampleOn.Freq, the initial period estimate).
func (c *Counter) SetPeriod(period uint64) error { return ioctlPeriod(c.FD(), period) }

// SetFilter installs an ftrace filter expression, restricting which
// occurrences of a Tracepoint event actually count.
func (c *Counter) SetFilter(filter string) error { return ioctlSetFilter(c.FD(), filter) }

// ID returns the event ID the kernel assigned this Counter, the same
// value a StatFormat.ID read or a RecordIDFormat.ID sample_id reports.
func (c *Counter) ID() (uint64, error) { return ioctlID(c.FD()) }

// AttachBPF attaches the BPF program identified by fd (as returned by
// a prior bpf(2) BPF_PROG_LOAD call) to this Counter's tracepoint.
// Requires linux-4.1.
func (c *Counter) AttachBPF(fd int) error {
	return perfIoctl(c.FD(), uapi.IocSetBPF, uintptr(fd))
}

// QueryBPF reports the IDs of every BPF program attached to this
// Counter's tracepoint, across all events sharing it, into a buffer
// sized for at most cap IDs. If cap is too small, the kernel still
// fills as many IDs as fit and reports the rest via lost instead of
// failing the call. Requires linux-4.16.
func (c *Counter) QueryBPF(cap int) (ids []uint32, lost int, err error) {
	buf := make([]uint32, 2+cap)
	buf[0] = uint32(cap)
	ferr := ioctlQueryBPF(c.FD(), buf)
	switch ferr {
	case nil:
		progCnt := int(buf[1])
		return append([]uint32(nil), buf[2:2+progCnt]...), 0, nil
	case unix.ENOSPC:
		progCnt := int(buf[1])
		return append([]uint32(nil), buf[2:2+cap]...), progCnt - cap, nil
	default:
		return nil, 0, errors.Wrap(ferr, "perf_event_query_bpf ioctl")
	}
}

// SwitchTo atomically reconfigures this Counter to monitor a
// different event without closing and reopening its file descriptor.
// The kernel only supports this for breakpoint events. Requires
// linux-4.17.
func (c *Counter) SwitchTo(ev Event) error {
	attr := c.attr
	attr.Type = ev.typ
	attr.Config = ev.config
	attr.Ext1 = ev.config1
	attr.Ext2 = ev.config2
	attr.Bp_type = ev.bpType
	if err := ioctlModifyAttributes(c.FD(), &attr); err != nil {
		return err
	}
	c.attr = attr
	c.ev = ev
	return nil
}

// Close releases the Counter's file descriptor. It does not unmap a
// Sampler/AuxTracer ring attached to it; Sampler.Close does that.
func (c *Counter) Close() error {
	runtime.SetFinalizer(c, nil)
	return c.f.Close()
}

func (c *Counter) takeSampler() error {
	if !c.hasSampler.CompareAndSwap(false, true) {
		return ErrAlreadyExists
	}
	return nil
}

// Sampler attaches a ring buffer to this Counter and returns a
// Sampler that iterates its records. dataPages is the number of
// 4KiB pages to reserve for sample data, rounded up to a power of two
// plus the fixed metadata page; it must be > 0 for the counter to
// produce records at all (a Counter with no Sampler can still be
// read with Stat).
func (c *Counter) Sampler(dataPages int) (*Sampler, error) {
	if err := c.takeSampler(); err != nil {
		return nil, err
	}
	s, err := newSampler(c, dataPages, 0)
	if err != nil {
		c.hasSampler.Store(false)
		return nil, errors.Wrap(err, "attaching sampler")
	}
	return s, nil
}

// AuxTracer attaches an AUX-area ring buffer to this Counter (for
// hardware tracing events such as Intel PT or CoreSight) alongside a
// Sampler with dataPages of normal sample data. auxPages is the
// number of 4KiB pages to reserve for the AUX area.
func (c *Counter) AuxTracer(dataPages, auxPages int) (*Sampler, *AuxTracer, error) {
	if err := c.takeSampler(); err != nil {
		return nil, nil, err
	}
	s, err := newSampler(c, dataPages, auxPages)
	if err != nil {
		c.hasSampler.Store(false)
		return nil, nil, errors.Wrap(err, "attaching aux tracer")
	}
	return s, s.aux, nil
}
