// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"testing"

	"golang.org/x/sys/unix"
)

func newTestDataRing(size int) (*dataRing, *unix.PerfEventMmapPage) {
	meta := &unix.PerfEventMmapPage{}
	ring := make([]byte, size)
	return newDataRing(meta, ring), meta
}

func TestDataRingPopNonWrapping(t *testing.T) {
	r, meta := newTestDataRing(16)
	for i := range r.ring {
		r.ring[i] = byte(i)
	}
	meta.Data_head = 8

	c, ok := r.pop(8)
	if !ok {
		t.Fatal("pop(8) = false, want true")
	}
	if len(c.Bytes) != 8 || c.Bytes[0] != 0 || c.Bytes[7] != 7 {
		t.Errorf("Bytes = %v, want [0..7]", c.Bytes)
	}
	// Non-wrapping chunks defer the tail publish until Release.
	if r.tail != 0 {
		t.Errorf("tail = %d before Release, want 0", r.tail)
	}
	c.Release()
	if r.tail != 8 {
		t.Errorf("tail = %d after Release, want 8", r.tail)
	}
	if meta.Data_tail != 8 {
		t.Errorf("Data_tail = %d, want 8", meta.Data_tail)
	}
}

func TestDataRingPopWrapping(t *testing.T) {
	r, meta := newTestDataRing(16)
	for i := range r.ring {
		r.ring[i] = byte(i)
	}
	// Start the tail near the end of the ring so an 8-byte pop wraps.
	r.tail = 12
	meta.Data_head = 20

	c, ok := r.pop(8)
	if !ok {
		t.Fatal("pop(8) = false, want true")
	}
	want := []byte{12, 13, 14, 15, 0, 1, 2, 3}
	for i, b := range want {
		if c.Bytes[i] != b {
			t.Errorf("Bytes[%d] = %d, want %d", i, c.Bytes[i], b)
		}
	}
	// Wrapping chunks publish the tail immediately.
	if r.tail != 20 {
		t.Errorf("tail = %d, want 20 immediately after a wrapping pop", r.tail)
	}
	if meta.Data_tail != 20 {
		t.Errorf("Data_tail = %d, want 20", meta.Data_tail)
	}
	// Release should be a harmless no-op.
	c.Release()
	if r.tail != 20 {
		t.Errorf("tail changed after Release on a wrapping chunk: %d", r.tail)
	}
}

func TestDataRingPopInsufficientData(t *testing.T) {
	r, meta := newTestDataRing(16)
	meta.Data_head = 4

	_, ok := r.pop(8)
	if ok {
		t.Error("pop(8) = true with only 4 bytes available, want false")
	}
}

func TestDataRingAvailable(t *testing.T) {
	r, meta := newTestDataRing(16)
	meta.Data_head = 10
	r.tail = 3
	if got := r.available(); got != 7 {
		t.Errorf("available() = %d, want 7", got)
	}
}
