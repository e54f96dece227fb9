// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadSysfsType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "type")
	if err := os.WriteFile(path, []byte("6\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ty, err := readSysfsType(path)
	if err != nil {
		t.Fatal(err)
	}
	if ty != 6 {
		t.Errorf("readSysfsType() = %d, want 6", ty)
	}
}

func TestReadSysfsTypeMissingFile(t *testing.T) {
	_, err := readSysfsType(filepath.Join(t.TempDir(), "nonexistent"))
	if err == nil {
		t.Error("expected error reading a nonexistent sysfs file")
	}
}

func TestReadRetprobeBit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "retprobe")
	if err := os.WriteFile(path, []byte("config:0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	bit, err := readRetprobeBit(path)
	if err != nil {
		t.Fatal(err)
	}
	if bit != 0 {
		t.Errorf("readRetprobeBit() = %d, want 0", bit)
	}
}

func TestReadRetprobeBitNoConfigLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "retprobe")
	if err := os.WriteFile(path, []byte("nr_addr_filters:0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := readRetprobeBit(path)
	if err == nil {
		t.Error("expected error for a format file with no config: line")
	}
}

func TestKprobeStructFields(t *testing.T) {
	k := Kprobe{Symbol: "do_sys_open", Offset: 4}
	if k.Symbol == "" || k.Offset != 4 {
		t.Fatal("sanity: test setup")
	}
	// Event() does real sysfs I/O (kprobeTypePath); only exercised on
	// a kernel with CONFIG_KPROBE_EVENTS, so just confirm the fields
	// that don't require I/O are set as expected on the struct itself.
	if k.Return {
		t.Error("zero-value Return should be false")
	}
}
