// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// dataRing is the kernel's mmap'd sample data ring: one writer (the
// kernel) and one reader (us) sharing a byte-addressed circular
// buffer, coordinated through the head/tail offsets in the leading
// metadata page.
//
// The kernel publishes new data by storing Data_head with release
// ordering (everything it wrote is visible once the store is); we
// load it with acquire ordering to match. We are the sole reader, so
// our own Data_tail load is relaxed (we wrote it last); the store
// that publishes it back to the kernel uses release ordering so the
// kernel never sees a tail that claims bytes we haven't finished
// reading.
//
// Go's sync/atomic load/store on uint64 provide sequential
// consistency, which is strictly stronger than the acquire/release
// this protocol needs; there is no weaker portable primitive to reach
// for here, so this is the idiomatic way to express it.
type dataRing struct {
	meta *unix.PerfEventMmapPage
	ring []byte // mmap[meta.Data_offset : meta.Data_offset+meta.Data_size], a power-of-two length
	mask uint64

	tail uint64 // our private copy; published to meta.Data_tail as chunks are consumed
}

func newDataRing(meta *unix.PerfEventMmapPage, ring []byte) *dataRing {
	return &dataRing{
		meta: meta,
		ring: ring,
		mask: uint64(len(ring) - 1),
		tail: atomic.LoadUint64(&meta.Data_tail),
	}
}

func (r *dataRing) head() uint64 {
	return atomic.LoadUint64(&r.meta.Data_head)
}

func (r *dataRing) publishTail() {
	atomic.StoreUint64(&r.meta.Data_tail, r.tail)
}

// A Chunk is a lease on n bytes of ring buffer content. If the
// requested span did not straddle the ring's wraparound point, Bytes
// aliases the mmap directly and the kernel is not told those bytes
// are free again until Release is called (nothing releases a Chunk
// automatically; one that is never Released keeps its bytes leased).
// If the span did
// straddle the wrap, Bytes is a copy and the ring is already marked
// free as of Chunk's creation, since there is no single mmap region
// left to keep on lease.
type Chunk struct {
	Bytes []byte

	ring    *dataRing
	newTail uint64

	aux        *auxRing
	auxNewTail uint64

	published bool
}

// Release returns a borrowed (non-wrapping) Chunk's bytes to the
// ring. It is a no-op for a copied (wrapping) Chunk, whose bytes were
// already released when it was created.
func (c *Chunk) Release() {
	if c.published {
		return
	}
	c.published = true
	if c.ring != nil {
		c.ring.tail = c.newTail
		c.ring.publishTail()
		return
	}
	c.aux.tail = c.auxNewTail
	c.aux.publishTail()
}

// pop leases the next n available bytes from the ring, or reports
// false if fewer than n bytes are available. See Chunk for the
// borrowed-vs-copied distinction.
func (r *dataRing) pop(n int) (Chunk, bool) {
	head := r.head()
	avail := head - r.tail
	if avail < uint64(n) {
		return Chunk{}, false
	}

	start := r.tail & r.mask
	newTail := r.tail + uint64(n)

	if start+uint64(n) <= uint64(len(r.ring)) {
		// Doesn't wrap: lend the mmap region directly and defer
		// the tail publish to Release, so the kernel can't reuse
		// these bytes while the caller still holds them.
		return Chunk{
			Bytes:   r.ring[start : start+uint64(n)],
			ring:    r,
			newTail: newTail,
		}, true
	}

	// Wraps: there's no contiguous slice to lend, so copy out and
	// publish the tail immediately.
	buf := make([]byte, n)
	first := uint64(len(r.ring)) - start
	copy(buf, r.ring[start:])
	copy(buf[first:], r.ring[:uint64(n)-first])
	r.tail = newTail
	r.publishTail()
	return Chunk{Bytes: buf, ring: r, published: true}, true
}

// available reports how many bytes are currently readable without
// blocking.
func (r *dataRing) available() uint64 {
	return r.head() - r.tail
}
