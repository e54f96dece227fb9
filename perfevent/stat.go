// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"github.com/aclements/perfevent/internal/uapi"
)

// Stat is a decoded read() payload: the current value of a Counter,
// plus whichever optional fields its StatFormat requested.
//
// This mirrors struct read_format from perf_event.h:
//
//	struct read_format {
//		{ u64 value;
//		  { u64 time_enabled; } && PERF_FORMAT_TOTAL_TIME_ENABLED
//		  { u64 time_running; } && PERF_FORMAT_TOTAL_TIME_RUNNING
//		  { u64 id;           } && PERF_FORMAT_ID
//		  { u64 lost;         } && PERF_FORMAT_LOST
//		} && !PERF_FORMAT_GROUP
//		{ u64 nr;
//		  { u64 time_enabled; } && PERF_FORMAT_TOTAL_TIME_ENABLED
//		  { u64 time_running; } && PERF_FORMAT_TOTAL_TIME_RUNNING
//		  { u64 value;
//		    { u64 id;   } && PERF_FORMAT_ID
//		    { u64 lost; } && PERF_FORMAT_LOST
//		  } cntr[nr];
//		} && PERF_FORMAT_GROUP
//	};
type Stat struct {
	Count uint64

	// ID is the event ID (see Counter.ID), present if
	// StatFormat.ID was set.
	ID uint64

	// TimeEnabled and TimeRunning, present if StatFormat.TimeEnabled
	// / TimeRunning were set, let a caller detect and correct for
	// PMU multiplexing: see ScaledCount.
	TimeEnabled uint64
	TimeRunning uint64

	// LostRecords is the number of records the kernel dropped for
	// this event, present if StatFormat.LostRecords was set
	// (requires linux-6.0).
	LostRecords uint64

	// Siblings holds one entry per non-leader CounterGroup member,
	// present only when this Stat was decoded from a group read
	// (CounterGroup.Read). A leaf Counter's Stat never has
	// siblings.
	Siblings []SiblingStat
}

// SiblingStat is one member's entry within a group Stat.
type SiblingStat struct {
	Count uint64
	// ID is present if the group's StatFormat.ID was set.
	ID uint64
	// LostRecords is present if the group's StatFormat.LostRecords
	// was set.
	LostRecords uint64
}

// ScaledCount estimates the true count had the counter run for all
// of TimeEnabled instead of only TimeRunning, linearly extrapolating
// from the fraction of time the PMU actually scheduled it. If
// TimeRunning is zero (the counter never ran) or equals TimeEnabled
// (no multiplexing occurred), ScaledCount returns Count unscaled.
//
// This is the same correction perf-stat applies to multiplexed
// counter groups.
func (s Stat) ScaledCount() float64 {
	if s.TimeRunning == 0 || s.TimeRunning == s.TimeEnabled {
		return float64(s.Count)
	}
	return float64(s.Count) * float64(s.TimeEnabled) / float64(s.TimeRunning)
}

// decodeStat decodes a read() payload according to readFormat (the
// same bitmask passed to perf_event_attr.read_format).
func decodeStat(data []byte, readFormat uint64) Stat {
	d := bufDecoder{buf: data}
	group := readFormat&uapi.PerfFormatGroup != 0
	hasEnabled := readFormat&uapi.PerfFormatTotalTimeEnabled != 0
	hasRunning := readFormat&uapi.PerfFormatTotalTimeRunning != 0
	hasID := readFormat&uapi.PerfFormatID != 0
	hasLost := readFormat&uapi.PerfFormatLost != 0

	var s Stat
	if !group {
		s.Count = d.u64()
		s.TimeEnabled = d.u64If(hasEnabled)
		s.TimeRunning = d.u64If(hasRunning)
		s.ID = d.u64If(hasID)
		s.LostRecords = d.u64If(hasLost)
		return s
	}

	nr := d.u64()
	s.TimeEnabled = d.u64If(hasEnabled)
	s.TimeRunning = d.u64If(hasRunning)
	members := make([]SiblingStat, nr)
	for i := range members {
		members[i] = SiblingStat{
			Count:       d.u64(),
			ID:          d.u64If(hasID),
			LostRecords: d.u64If(hasLost),
		}
	}
	// The first member is the leader; the rest are its siblings.
	if len(members) > 0 {
		s.Count = members[0].Count
		s.ID = members[0].ID
		s.LostRecords = members[0].LostRecords
		s.Siblings = members[1:]
	}
	return s
}

// statReadSize returns the exact byte length decodeStat expects for
// readFormat given nr group members (1 for a non-group read).
func statReadSize(readFormat uint64, nr int) int {
	fixed := 8
	if readFormat&uapi.PerfFormatTotalTimeEnabled != 0 {
		fixed += 8
	}
	if readFormat&uapi.PerfFormatTotalTimeRunning != 0 {
		fixed += 8
	}
	if readFormat&uapi.PerfFormatGroup == 0 {
		per := 0
		if readFormat&uapi.PerfFormatID != 0 {
			per += 8
		}
		if readFormat&uapi.PerfFormatLost != 0 {
			per += 8
		}
		return fixed + per
	}
	per := 8
	if readFormat&uapi.PerfFormatID != 0 {
		per += 8
	}
	if readFormat&uapi.PerfFormatLost != 0 {
		per += 8
	}
	return fixed + per*nr
}

// Stat reads this Counter's current value. Once a Counter has become
// a CounterGroup leader with members (CounterGroup.Add), use
// CounterGroup.Read instead: Stat always sizes its read for a single
// count.
func (c *Counter) Stat() (Stat, error) {
	readFormat, err := c.opts.statFormat.readFormat(c.opts.minKernel)
	if err != nil {
		return Stat{}, err
	}
	buf := make([]byte, statReadSize(readFormat, 1))
	n, err := c.f.Read(buf)
	if err != nil && n == 0 {
		return Stat{}, err
	}
	return decodeStat(buf[:n], readFormat), nil
}
