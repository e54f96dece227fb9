// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"reflect"
	"testing"
)

func TestBufDecoder(t *testing.T) {
	buf := []byte{
		0xef, 0xbe, // u16 0xbeef
		0x78, 0x56, 0x34, 0x12, // u32 0x12345678
		1, 2, 3, 4, 5, 6, 7, 8, // u64 0x0807060504030201
		'h', 'i', 0, 'x', // cstring "hi"
	}
	d := bufDecoder{buf: buf}
	if got, want := d.u16(), uint16(0xbeef); got != want {
		t.Errorf("u16() = %#x, want %#x", got, want)
	}
	if got, want := d.u32(), uint32(0x12345678); got != want {
		t.Errorf("u32() = %#x, want %#x", got, want)
	}
	if got, want := d.u64(), uint64(0x0807060504030201); got != want {
		t.Errorf("u64() = %#x, want %#x", got, want)
	}
	if got, want := d.cstring(), "hi"; got != want {
		t.Errorf("cstring() = %q, want %q", got, want)
	}
	if got, want := d.bytes(1), []byte("x"); !reflect.DeepEqual(got, want) {
		t.Errorf("bytes(1) = %v, want %v", got, want)
	}
	if d.len() != 0 {
		t.Errorf("len() = %d, want 0", d.len())
	}
}

func TestBufDecoderConditional(t *testing.T) {
	d := bufDecoder{buf: []byte{9, 0, 0, 0, 0, 0, 0, 0}}
	if got := d.u64If(false); got != 0 {
		t.Errorf("u64If(false) = %d, want 0 (and should not consume)", got)
	}
	if got, want := d.u64If(true), uint64(9); got != want {
		t.Errorf("u64If(true) = %d, want %d", got, want)
	}
	if d.len() != 0 {
		t.Errorf("len() = %d, want 0", d.len())
	}
}

func TestBufDecoderU64s(t *testing.T) {
	d := bufDecoder{buf: []byte{
		1, 0, 0, 0, 0, 0, 0, 0,
		2, 0, 0, 0, 0, 0, 0, 0,
	}}
	got := d.u64s(2)
	want := []uint64{1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("u64s(2) = %v, want %v", got, want)
	}
}
