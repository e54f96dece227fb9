// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import "encoding/binary"

// bufDecoder sequentially decodes little-endian fields out of a
// kernel-supplied byte buffer (a read() payload or a ring buffer
// record), advancing as it goes. The kernel's own structures are
// exactly this shape: a fixed prefix followed by a run of optional
// fields gated by a bitmask the caller already knows (read_format,
// sample_type, ...), so each decode call takes the gating condition
// directly rather than returning a pointer the caller has to check.
type bufDecoder struct {
	buf []byte
}

func (b *bufDecoder) len() int { return len(b.buf) }

func (b *bufDecoder) skip(n int) {
	b.buf = b.buf[n:]
}

func (b *bufDecoder) bytes(n int) []byte {
	x := b.buf[:n:n]
	b.buf = b.buf[n:]
	return x
}

func (b *bufDecoder) u16() uint16 {
	x := binary.LittleEndian.Uint16(b.buf)
	b.buf = b.buf[2:]
	return x
}

func (b *bufDecoder) u32() uint32 {
	x := binary.LittleEndian.Uint32(b.buf)
	b.buf = b.buf[4:]
	return x
}

func (b *bufDecoder) u64() uint64 {
	x := binary.LittleEndian.Uint64(b.buf)
	b.buf = b.buf[8:]
	return x
}

func (b *bufDecoder) u64s(n int) []uint64 {
	x := make([]uint64, n)
	for i := range x {
		x[i] = binary.LittleEndian.Uint64(b.buf[i*8:])
	}
	b.buf = b.buf[n*8:]
	return x
}

func (b *bufDecoder) u16If(cond bool) uint16 {
	if cond {
		return b.u16()
	}
	return 0
}

func (b *bufDecoder) u32If(cond bool) uint32 {
	if cond {
		return b.u32()
	}
	return 0
}

func (b *bufDecoder) u64If(cond bool) uint64 {
	if cond {
		return b.u64()
	}
	return 0
}

func (b *bufDecoder) cstring() string {
	for i, c := range b.buf {
		if c == 0 {
			x := string(b.buf[:i])
			b.buf = b.buf[i+1:]
			return x
		}
	}
	x := string(b.buf)
	b.buf = b.buf[len(b.buf):]
	return x
}

// alignFrom skips the NUL padding the kernel inserts after a
// record's trailing C-string field so the fixed-width data that
// follows (typically a sample_id trailer) starts on an 8-byte
// boundary relative to the record's start. origLen is the length of
// the record body bufDecoder was first handed.
func (b *bufDecoder) alignFrom(origLen int) {
	consumed := origLen - b.len()
	if pad := -consumed & 7; pad > 0 {
		b.skip(pad)
	}
}
