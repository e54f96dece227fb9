// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"math"
	"os"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/aclements/perfevent/internal/uapi"
)

// A Sampler iterates the records a Counter produces once it has
// PERF_RECORD_* events to report: samples (if SampleOn is set),
// mmap/comm/task events (if ExtraRecord asks for them), and the
// occasional lost-records notification.
//
// Next is not safe for concurrent use; a Sampler has exactly one
// reader, matching the ring buffer's single-consumer protocol.
type Sampler struct {
	counter *Counter
	mmap    []byte
	data    *dataRing
	meta    *unix.PerfEventMmapPage

	aux *AuxTracer

	fields     SampleFields
	idf        RecordIDFormat
	readFormat uint64
}

// An AuxTracer reads the AUX-area ring buffer attached alongside a
// Sampler by Counter.AuxTracer, used by hardware tracing events
// (Intel PT, CoreSight, ARM SPE) whose output has no PERF_RECORD_*
// framing of its own.
type AuxTracer struct {
	ring *auxRing
}

// perfBufferSize rounds wantPages up to the nearest power of two and
// adds one page for the leading metadata page, matching the only
// buffer sizes the kernel accepts from perf_event_open's mmap.
func perfBufferSize(wantPages int) int {
	if wantPages <= 0 {
		return os.Getpagesize()
	}
	n := int(math.Pow(2, math.Ceil(math.Log2(float64(wantPages)))))
	return (n + 1) * os.Getpagesize()
}

func newSampler(c *Counter, dataPages, auxPages int) (s *Sampler, err error) {
	fd := c.FD()
	dataLen := perfBufferSize(dataPages)
	mmap, err := unix.Mmap(fd, 0, dataLen, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, "mmap")
	}
	defer func() {
		if err != nil {
			unix.Munmap(mmap)
		}
	}()

	meta := (*unix.PerfEventMmapPage)(unsafe.Pointer(&mmap[0]))
	data := newDataRing(meta, mmap[meta.Data_offset:meta.Data_offset+meta.Data_size])

	readFormat, err := c.opts.statFormat.readFormat(c.opts.minKernel)
	if err != nil {
		unix.Munmap(mmap)
		return nil, err
	}

	s = &Sampler{
		counter:    c,
		mmap:       mmap,
		data:       data,
		meta:       meta,
		fields:     c.opts.sampleFields,
		idf:        c.opts.recordIDFormat,
		readFormat: readFormat,
	}

	if auxPages > 0 {
		auxLen := perfBufferSize(auxPages) - os.Getpagesize() // no extra metadata page for the AUX area itself
		meta.Aux_offset = meta.Data_offset + meta.Data_size
		meta.Aux_size = uint64(auxLen)
		auxMmap, err2 := unix.Mmap(fd, int64(meta.Aux_offset), auxLen, unix.PROT_READ, unix.MAP_SHARED)
		if err2 != nil {
			return nil, errors.Wrap(err2, "mmap aux")
		}
		s.aux = &AuxTracer{ring: newAuxRing(meta, auxMmap)}
	}

	runtime.SetFinalizer(s, (*Sampler).Close)
	return s, nil
}

// FD returns the underlying Counter's file descriptor, suitable for
// use with epoll/poll to wait for records without spinning (see
// AsyncReader).
func (s *Sampler) FD() int { return s.counter.FD() }

// Available reports how many bytes of undecoded record data are
// currently sitting in the ring buffer.
func (s *Sampler) Available() uint64 { return s.data.available() }

// Next decodes and returns the next available record, or
// ErrNoRecord if the ring buffer is empty. Use FD with epoll, or poll
// Available, to wait for more without busy-looping.
func (s *Sampler) Next() (Record, error) {
	hdrChunk, ok := s.data.pop(8)
	if !ok {
		return nil, ErrNoRecord
	}
	typ := leUint32(hdrChunk.Bytes[0:4])
	misc := leUint16(hdrChunk.Bytes[4:6])
	size := leUint16(hdrChunk.Bytes[6:8])
	hdrChunk.Release()

	if size < 8 {
		return nil, errors.Errorf("perfevent: corrupt record header (size %d)", size)
	}
	bodyChunk, ok := s.data.pop(int(size) - 8)
	if !ok {
		return nil, errors.New("perfevent: truncated record in ring buffer")
	}
	defer bodyChunk.Release()

	// Non-sample records carry a sample_id trailer only when
	// RecordIDAll (sample_id_all) is set.
	idf := s.idf
	if typ != uapi.RecordSample && !s.counter.opts.recordIDAll {
		idf = RecordIDFormat{}
	}
	return decodeRecord(RecordHeader{Type: typ, Misc: misc}, bodyChunk.Bytes, s.fields, idf, s.readFormat)
}

// Pause stops the kernel from writing any further records into this
// Sampler's ring buffer, without disabling the underlying Counter.
// It lets a reader drain the buffer with Next without racing a
// concurrent writer; call Resume afterward to continue recording.
func (s *Sampler) Pause() error { return ioctlPauseOutput(s.FD(), true) }

// Resume undoes a prior Pause.
func (s *Sampler) Resume() error { return ioctlPauseOutput(s.FD(), false) }

// AuxTracer returns the attached AUX-area ring reader, or nil if none
// was requested (Counter.Sampler rather than Counter.AuxTracer).
func (s *Sampler) AuxTracer() *AuxTracer { return s.aux }

// Take leases up to maxLen bytes of the raw AUX byte stream. See
// Chunk for the borrowed-vs-copied distinction.
func (a *AuxTracer) Take(maxLen int) (Chunk, bool) { return a.ring.take(maxLen) }

// Available reports how many undecoded AUX bytes are waiting.
func (a *AuxTracer) Available() uint64 { return a.ring.available() }

// Close unmaps the Sampler's ring buffer(s). The owning Counter
// remains open and usable with Stat.
func (s *Sampler) Close() error {
	runtime.SetFinalizer(s, nil)
	if s.aux != nil {
		if err := unix.Munmap(s.aux.ring.ring); err != nil {
			return errors.Wrap(err, "munmap aux")
		}
	}
	if err := unix.Munmap(s.mmap); err != nil {
		return errors.Wrap(err, "munmap")
	}
	return nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
