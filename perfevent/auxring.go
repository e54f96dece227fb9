// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// auxRing is the optional AUX-area ring, used by hardware tracers
// (Intel PT, CoreSight, ARM SPE) that emit raw byte streams rather
// than framed records. It shares the data ring's head/tail protocol
// but has no record framing of its own: AuxTracer decides how much of
// it to take at a time, since only the caller knows how to parse the
// tracer-specific byte stream.
type auxRing struct {
	meta *unix.PerfEventMmapPage
	ring []byte
	mask uint64
	tail uint64
}

func newAuxRing(meta *unix.PerfEventMmapPage, ring []byte) *auxRing {
	return &auxRing{
		meta: meta,
		ring: ring,
		mask: uint64(len(ring) - 1),
		tail: atomic.LoadUint64(&meta.Aux_tail),
	}
}

func (r *auxRing) head() uint64 {
	return atomic.LoadUint64(&r.meta.Aux_head)
}

func (r *auxRing) publishTail() {
	atomic.StoreUint64(&r.meta.Aux_tail, r.tail)
}

func (r *auxRing) available() uint64 {
	return r.head() - r.tail
}

// take leases up to maxLen bytes of the currently available AUX data.
// Like dataRing.pop, a span that doesn't straddle the ring's wrap
// point is lent directly from the mmap (Release it when done); one
// that does is copied out and released immediately.
func (r *auxRing) take(maxLen int) (Chunk, bool) {
	avail := r.available()
	if avail == 0 {
		return Chunk{}, false
	}
	n := uint64(maxLen)
	if n > avail {
		n = avail
	}

	start := r.tail & r.mask
	newTail := r.tail + n

	if start+n <= uint64(len(r.ring)) {
		return Chunk{
			Bytes:      r.ring[start : start+n],
			aux:        r,
			auxNewTail: newTail,
		}, true
	}

	buf := make([]byte, n)
	first := uint64(len(r.ring)) - start
	copy(buf, r.ring[start:])
	copy(buf[first:], r.ring[:n-first])
	r.tail = newTail
	r.publishTail()
	return Chunk{Bytes: buf, aux: r, published: true}, true
}
