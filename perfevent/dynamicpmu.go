// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	kprobeTypePath     = "/sys/bus/event_source/devices/kprobe/type"
	kprobeRetprobePath = "/sys/bus/event_source/devices/kprobe/format/retprobe"
	uprobeTypePath     = "/sys/bus/event_source/devices/uprobe/type"
)

// readSysfsType reads a decimal PMU type integer from a sysfs file
// such as .../kprobe/type.
func readSysfsType(path string) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("perfevent: reading dynamic PMU type: %w", err)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("perfevent: parsing dynamic PMU type %q: %w", path, err)
	}
	return uint32(n), nil
}

// readRetprobeBit reads the "config:<N>" format line from a format
// file such as .../kprobe/format/retprobe and returns N, the bit
// index of the retprobe flag within Event.config.
func readRetprobeBit(path string) (uint, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("perfevent: reading retprobe bit: %w", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		const prefix = "config:"
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimPrefix(line, prefix), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("perfevent: parsing retprobe bit in %q: %w", path, err)
		}
		return uint(n), nil
	}
	if err := s.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("perfevent: %q has no config: line", path)
}

// Kprobe is a kernel probe inserted at a function symbol (plus
// offset) or a raw kernel address.
type Kprobe struct {
	// Symbol, if non-empty, names the kernel function to probe.
	// Offset is added to its entry address.
	Symbol string
	Offset uint64
	// Addr is used instead of Symbol when Symbol is empty.
	Addr uint64
	// Return probes fire on function return instead of entry.
	Return bool
}

// Event resolves the kprobe PMU type from sysfs and lowers this
// probe to an Event. It performs I/O and can fail if the kprobe PMU
// is unavailable (e.g. CONFIG_KPROBE_EVENTS is unset).
func (k Kprobe) Event() (Event, error) {
	ty, err := readSysfsType(kprobeTypePath)
	if err != nil {
		return Event{}, err
	}
	var config uint64
	if k.Return {
		bit, err := readRetprobeBit(kprobeRetprobePath)
		if err != nil {
			return Event{}, err
		}
		config = 1 << bit
	}
	e := Event{typ: ty, config: config}
	if k.Symbol != "" {
		e.strConfig1 = append([]byte(k.Symbol), 0)
		e.config2 = k.Offset
	} else {
		e.config2 = k.Addr
	}
	return e, nil
}

// Uprobe is a user-space probe inserted at an offset within an
// executable or shared library.
type Uprobe struct {
	// Path to the ELF binary or library to probe.
	Path string
	// Offset within Path, typically a function's offset from the
	// start of its containing section.
	Offset uint64
	// Return probes fire on function return instead of entry.
	Return bool
}

// Event resolves the uprobe PMU type from sysfs and lowers this probe
// to an Event.
func (u Uprobe) Event() (Event, error) {
	ty, err := readSysfsType(uprobeTypePath)
	if err != nil {
		return Event{}, err
	}
	var config uint64
	if u.Return {
		// The kernel only exposes one retprobe bit format file,
		// shared between kprobe and uprobe PMUs.
		bit, err := readRetprobeBit(kprobeRetprobePath)
		if err != nil {
			return Event{}, err
		}
		config = 1 << bit
	}
	return Event{
		typ:        ty,
		config:     config,
		strConfig1: append([]byte(u.Path), 0),
		config2:    u.Offset,
	}, nil
}
