// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"github.com/aclements/perfevent/internal/uapi"
)

// A CounterGroup is a group leader Counter plus its sibling members.
// The kernel schedules a group onto the PMU atomically: either every
// member is counting, or none are. Group.Read decodes every member's
// count in one read() of the leader.
//
// CounterGroup is not safe for concurrent use: Add mutates the
// leader's effective read_format, so every Add and Read on one group
// must happen from a single goroutine at a time (the same
// restriction the kernel's own group bookkeeping implies, and that
// the original Rust implementation encodes by making CounterGroup
// !Send).
type CounterGroup struct {
	leader   *Counter
	siblings []*Counter
}

// NewGroup opens ev as the leader of a new CounterGroup. The leader is
// opened with PERF_FORMAT_GROUP in its read_format, which NewGroup
// sets internally on a copy of opts (the flag is not an exported
// StatFormat field).
func NewGroup(ev Event, target Target, opts *Opts) (*CounterGroup, error) {
	if opts == nil {
		opts = &Opts{}
	}
	o := *opts
	o.StatFormat.group = true
	leader, err := New(ev, target, &o)
	if err != nil {
		return nil, err
	}
	return &CounterGroup{leader: leader}, nil
}

// Leader returns the group's leader Counter.
func (g *CounterGroup) Leader() *Counter { return g.leader }

// Siblings returns the group's non-leader members, in the order they
// were Added.
func (g *CounterGroup) Siblings() []*Counter {
	out := make([]*Counter, len(g.siblings))
	copy(out, g.siblings)
	return out
}

// Add opens ev as a new sibling of the group, monitoring the same
// Target as the leader (the kernel requires every group member to
// share one target and, since linux-4.3, one clock).
func (g *CounterGroup) Add(ev Event, opts *SiblingOpts) (*Counter, error) {
	if opts == nil {
		opts = &SiblingOpts{}
	}
	c := opts.common()
	attr, err := buildAttr(ev, c)
	if err != nil {
		return nil, err
	}
	f, err := openPerfEvent(ev, c, g.leader.target, g.leader.FD())
	if err != nil {
		return nil, err
	}
	sibling := &Counter{f: f, ev: ev, target: g.leader.target, opts: c, attr: attr}

	g.siblings = append(g.siblings, sibling)
	g.leader.opts.statFormat.group = true
	return sibling, nil
}

// Enable starts every member of the group atomically.
func (g *CounterGroup) Enable() error {
	return perfIoctl(g.leader.FD(), uapi.IocEnable, uapi.IocFlagGroup)
}

// Disable stops every member of the group atomically.
func (g *CounterGroup) Disable() error {
	return perfIoctl(g.leader.FD(), uapi.IocDisable, uapi.IocFlagGroup)
}

// Reset zeroes every member's count atomically.
func (g *CounterGroup) Reset() error {
	return perfIoctl(g.leader.FD(), uapi.IocReset, uapi.IocFlagGroup)
}

// Close closes the leader and every sibling.
func (g *CounterGroup) Close() error {
	var first error
	for _, s := range g.siblings {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := g.leader.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Read decodes a group-formatted read() of the leader, giving the
// leader's own Stat plus one SiblingStat per group member in Add
// order.
func (g *CounterGroup) Read() (Stat, error) {
	readFormat, err := g.leader.opts.statFormat.readFormat(g.leader.opts.minKernel)
	if err != nil {
		return Stat{}, err
	}
	buf := make([]byte, statReadSize(readFormat, len(g.siblings)+1))
	n, err := g.leader.f.Read(buf)
	if err != nil && n == 0 {
		return Stat{}, err
	}
	return decodeStat(buf[:n], readFormat), nil
}
