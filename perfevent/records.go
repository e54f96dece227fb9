// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"github.com/aclements/perfevent/internal/uapi"
)

// RecordHeader is the fixed 8-byte prefix of every ring buffer
// record: struct perf_event_header.
type RecordHeader struct {
	Type uint32
	Misc uint16
}

// CPUMode reports which of the Misc bits' low 3-bit submode the
// record was taken in (kernel, user, hypervisor, ...).
func (h RecordHeader) CPUMode() uint16 { return h.Misc & uapi.RecordMiscCPUModeMask }

// A Record is one decoded entry from a Sampler's ring buffer. The
// concrete type reveals which PERF_RECORD_* kind it is; switch on it
// or compare Header().Type against the uapi Record* constants.
type Record interface {
	Header() RecordHeader
}

// SampleID is the optional per-record identification trailer the
// kernel appends to non-sample records when the originating Counter's
// Opts.RecordIDAll is set, holding the fields its RecordIDFormat
// selects. Sample records carry
// the same information inline in SampleRecord instead.
type SampleID struct {
	PID, TID         uint32
	Time             uint64
	ID, StreamID     uint64
	CPU, CPURes      uint32
}

func decodeSampleID(d *bufDecoder, idf RecordIDFormat) SampleID {
	var s SampleID
	if idf.Task {
		s.PID = d.u32()
		s.TID = d.u32()
	}
	if idf.Time {
		s.Time = d.u64()
	}
	if idf.ID {
		s.ID = d.u64()
	}
	if idf.StreamID {
		s.StreamID = d.u64()
	}
	if idf.CPU {
		s.CPU = d.u32()
		s.CPURes = d.u32()
	}
	return s
}

// any reports whether idf requests any trailer field at all;
// an all-zero RecordIDFormat means the Counter never appends one.
func (idf RecordIDFormat) any() bool {
	return idf.ID || idf.StreamID || idf.CPU || idf.Task || idf.Time
}

// MmapEvent is PERF_RECORD_MMAP: a process mapped an executable (or,
// with ExtraRecord.Mmap.Data, a data) region.
type MmapEvent struct {
	H                RecordHeader
	PID, TID         uint32
	Addr, Len, PgOff uint64
	Filename         string
	SampleID         SampleID
}

func (r *MmapEvent) Header() RecordHeader { return r.H }

// Mmap2Event is PERF_RECORD_MMAP2, MmapEvent plus file identity and
// protection bits, enabled by ExtraRecord.Mmap with a kernel new
// enough for mmap2 (linux-3.12) or build-id identification
// (linux-5.12, ExtraRecord.Mmap.UseBuildID).
type Mmap2Event struct {
	H                      RecordHeader
	PID, TID               uint32
	Addr, Len, PgOff       uint64
	MajorDev, MinorDev     uint32
	Ino, InoGeneration     uint64
	BuildID                []byte // only if Misc&RecordMiscMmapBuildID
	Major, Minor           uint32 // not populated; see MajorDev, MinorDev
	Prot, Flags            uint32
	Filename               string
	SampleID               SampleID
}

func (r *Mmap2Event) Header() RecordHeader { return r.H }

// CommEvent is PERF_RECORD_COMM: a process's comm (executable name)
// changed, typically from exec.
type CommEvent struct {
	H        RecordHeader
	PID, TID uint32
	Comm     string
	SampleID SampleID
}

func (r *CommEvent) Header() RecordHeader { return r.H }

// ExitEvent is PERF_RECORD_EXIT.
type ExitEvent struct {
	H                  RecordHeader
	PID, PPID          uint32
	TID, PTID          uint32
	Time               uint64
	SampleID           SampleID
}

func (r *ExitEvent) Header() RecordHeader { return r.H }

// ForkEvent is PERF_RECORD_FORK.
type ForkEvent struct {
	H                  RecordHeader
	PID, PPID          uint32
	TID, PTID          uint32
	Time               uint64
	SampleID           SampleID
}

func (r *ForkEvent) Header() RecordHeader { return r.H }

// LostEvent is PERF_RECORD_LOST: the kernel had to drop this many
// records because the ring buffer was full.
type LostEvent struct {
	H        RecordHeader
	ID       uint64
	Lost     uint64
	SampleID SampleID
}

func (r *LostEvent) Header() RecordHeader { return r.H }

// LostSamplesEvent is PERF_RECORD_LOST_SAMPLES (linux-4.2): like
// LostEvent, but specifically for samples dropped under
// SampleOn.Freq/Count, reported even without ExtraRecord asking for
// loss notifications.
type LostSamplesEvent struct {
	H        RecordHeader
	Lost     uint64
	SampleID SampleID
}

func (r *LostSamplesEvent) Header() RecordHeader { return r.H }

// ThrottleEvent/UnthrottleEvent are PERF_RECORD_THROTTLE and
// PERF_RECORD_UNTHROTTLE: the kernel disabled (or re-enabled) a
// Counter because it was consuming too much CPU delivering samples.
type ThrottleEvent struct {
	H        RecordHeader
	Time     uint64
	ID       uint64
	StreamID uint64
	SampleID SampleID
}

func (r *ThrottleEvent) Header() RecordHeader { return r.H }

type UnthrottleEvent struct {
	H        RecordHeader
	Time     uint64
	ID       uint64
	StreamID uint64
	SampleID SampleID
}

func (r *UnthrottleEvent) Header() RecordHeader { return r.H }

// ReadEvent is PERF_RECORD_READ: the count of an inherited Counter's
// child task, reported when that task exits, used when
// ExtraRecord.Read is set.
type ReadEvent struct {
	H        RecordHeader
	PID, TID uint32
	Value    Stat
	SampleID SampleID
}

func (r *ReadEvent) Header() RecordHeader { return r.H }

// SwitchEvent is PERF_RECORD_SWITCH (linux-4.3): a context switch
// into or out of the monitored task, requested by
// ExtraRecord.CtxSwitch.
type SwitchEvent struct {
	H        RecordHeader // Misc&RecordMiscSwitchOut tells direction
	SampleID SampleID
}

func (r *SwitchEvent) Header() RecordHeader { return r.H }

// SwitchCPUWideEvent is PERF_RECORD_SWITCH_CPU_WIDE, the cpu-wide
// counterpart naming the other process involved.
type SwitchCPUWideEvent struct {
	H            RecordHeader
	NextPrevPID  uint32
	NextPrevTID  uint32
	SampleID     SampleID
}

func (r *SwitchCPUWideEvent) Header() RecordHeader { return r.H }

// NamespacesEvent is PERF_RECORD_NAMESPACES (linux-4.12), requested by
// ExtraRecord.Namespaces.
type NamespacesEvent struct {
	H                RecordHeader
	PID, TID         uint32
	Namespaces       []NamespaceInfo
	SampleID         SampleID
}

func (r *NamespacesEvent) Header() RecordHeader { return r.H }

// NamespaceInfo is one entry of NamespacesEvent.Namespaces.
type NamespaceInfo struct {
	Dev, Inode uint64
}

// KsymbolEvent is PERF_RECORD_KSYMBOL (linux-4.18), requested by
// ExtraRecord.Ksymbol.
type KsymbolEvent struct {
	H        RecordHeader
	Addr     uint64
	Len      uint32
	KsymType uint16
	Flags    uint16
	Name     string
	SampleID SampleID
}

func (r *KsymbolEvent) Header() RecordHeader { return r.H }

// BPFEventRecord is PERF_RECORD_BPF_EVENT (linux-4.18), requested by
// ExtraRecord.BPFEvent. Named with a Record suffix to avoid colliding
// with Opts.BPFEvent-adjacent configuration types.
type BPFEventRecord struct {
	H        RecordHeader
	Type     uint16
	Flags    uint16
	ID       uint32
	Tag      [8]byte
	SampleID SampleID
}

func (r *BPFEventRecord) Header() RecordHeader { return r.H }

// CGroupEvent is PERF_RECORD_CGROUP (linux-5.7), requested by
// ExtraRecord.CGroup.
type CGroupEvent struct {
	H        RecordHeader
	ID       uint64
	Path     string
	SampleID SampleID
}

func (r *CGroupEvent) Header() RecordHeader { return r.H }

// TextPokeEvent is PERF_RECORD_TEXT_POKE (linux-5.9), requested by
// ExtraRecord.TextPoke.
type TextPokeEvent struct {
	H        RecordHeader
	Addr     uint64
	OldLen   uint16
	NewLen   uint16
	OldByte  []byte
	NewByte  []byte
	SampleID SampleID
}

func (r *TextPokeEvent) Header() RecordHeader { return r.H }

// AuxEvent is PERF_RECORD_AUX (linux-4.1): the AUX ring buffer gained
// (or lost) data; AuxOffset/AuxSize locate it within the AUX area, and
// Flags reports truncation/overwrite/collision.
type AuxEvent struct {
	H         RecordHeader
	AuxOffset uint64
	AuxSize   uint64
	Flags     uint64
	SampleID  SampleID
}

func (r *AuxEvent) Header() RecordHeader { return r.H }

// ItraceStartEvent is PERF_RECORD_ITRACE_START (linux-4.1).
type ItraceStartEvent struct {
	H        RecordHeader
	PID, TID uint32
}

func (r *ItraceStartEvent) Header() RecordHeader { return r.H }

// AuxOutputHWIDEvent is PERF_RECORD_AUX_OUTPUT_HW_ID (linux-5.18).
type AuxOutputHWIDEvent struct {
	H      RecordHeader
	HWID   uint64
	SampleID SampleID
}

func (r *AuxOutputHWIDEvent) Header() RecordHeader { return r.H }

// UnknownEvent is returned for a PERF_RECORD_* type this package does
// not yet decode; Raw holds the undecoded body.
type UnknownEvent struct {
	H   RecordHeader
	Raw []byte
}

func (r *UnknownEvent) Header() RecordHeader { return r.H }

func decodeRecord(h RecordHeader, body []byte, fields SampleFields, idf RecordIDFormat, readFormat uint64) (Record, error) {
	d := bufDecoder{buf: body}
	bodyLen := len(body)
	switch h.Type {
	case uapi.RecordSample:
		return decodeSample(h, &d, fields, idf)
	case uapi.RecordMmap:
		r := &MmapEvent{H: h}
		r.PID, r.TID = d.u32(), d.u32()
		r.Addr, r.Len, r.PgOff = d.u64(), d.u64(), d.u64()
		r.Filename = d.cstring()
		if idf.any() {
			d.alignFrom(bodyLen)
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordMmap2:
		r := &Mmap2Event{H: h}
		r.PID, r.TID = d.u32(), d.u32()
		r.Addr, r.Len, r.PgOff = d.u64(), d.u64(), d.u64()
		if h.Misc&uapi.RecordMiscMmapBuildID != 0 {
			bidLen := d.buf[0]
			d.skip(1 + 3) // length byte plus reserved padding
			r.BuildID = append([]byte(nil), d.bytes(int(bidLen))...)
			d.skip(20 - int(bidLen)) // build_id field is a fixed 20-byte array
		} else {
			r.MajorDev, r.MinorDev = d.u32(), d.u32()
			r.Ino, r.InoGeneration = d.u64(), d.u64()
		}
		r.Prot, r.Flags = d.u32(), d.u32()
		r.Filename = d.cstring()
		if idf.any() {
			d.alignFrom(bodyLen)
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordComm:
		r := &CommEvent{H: h}
		r.PID, r.TID = d.u32(), d.u32()
		r.Comm = d.cstring()
		if idf.any() {
			d.alignFrom(bodyLen)
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordExit:
		r := &ExitEvent{H: h}
		r.PID, r.PPID = d.u32(), d.u32()
		r.TID, r.PTID = d.u32(), d.u32()
		r.Time = d.u64()
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordFork:
		r := &ForkEvent{H: h}
		r.PID, r.PPID = d.u32(), d.u32()
		r.TID, r.PTID = d.u32(), d.u32()
		r.Time = d.u64()
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordLost:
		r := &LostEvent{H: h}
		r.ID, r.Lost = d.u64(), d.u64()
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordLostSamples:
		r := &LostSamplesEvent{H: h}
		r.Lost = d.u64()
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordThrottle:
		r := &ThrottleEvent{H: h}
		r.Time, r.ID, r.StreamID = d.u64(), d.u64(), d.u64()
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordUnthrottle:
		r := &UnthrottleEvent{H: h}
		r.Time, r.ID, r.StreamID = d.u64(), d.u64(), d.u64()
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordRead:
		r := &ReadEvent{H: h}
		r.PID, r.TID = d.u32(), d.u32()
		r.Value = decodeStat(d.bytes(d.len()-sampleIDLen(idf)), readFormat)
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordSwitch:
		r := &SwitchEvent{H: h}
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordSwitchCPUWide:
		r := &SwitchCPUWideEvent{H: h}
		r.NextPrevPID, r.NextPrevTID = d.u32(), d.u32()
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordNamespaces:
		r := &NamespacesEvent{H: h}
		r.PID, r.TID = d.u32(), d.u32()
		n := d.u64()
		r.Namespaces = make([]NamespaceInfo, n)
		for i := range r.Namespaces {
			r.Namespaces[i] = NamespaceInfo{Dev: d.u64(), Inode: d.u64()}
		}
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordKsymbol:
		r := &KsymbolEvent{H: h}
		r.Addr = d.u64()
		r.Len = d.u32()
		r.KsymType = d.u16()
		r.Flags = d.u16()
		r.Name = d.cstring()
		if idf.any() {
			d.alignFrom(bodyLen)
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordBPFEvent:
		r := &BPFEventRecord{H: h}
		r.Type = d.u16()
		r.Flags = d.u16()
		r.ID = d.u32()
		copy(r.Tag[:], d.bytes(8))
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordCGroup:
		r := &CGroupEvent{H: h}
		r.ID = d.u64()
		r.Path = d.cstring()
		if idf.any() {
			d.alignFrom(bodyLen)
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordTextPoke:
		r := &TextPokeEvent{H: h}
		r.Addr = d.u64()
		r.OldLen = d.u16()
		r.NewLen = d.u16()
		r.OldByte = append([]byte(nil), d.bytes(int(r.OldLen))...)
		r.NewByte = append([]byte(nil), d.bytes(int(r.NewLen))...)
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordAux:
		r := &AuxEvent{H: h}
		r.AuxOffset, r.AuxSize, r.Flags = d.u64(), d.u64(), d.u64()
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	case uapi.RecordItraceStart:
		r := &ItraceStartEvent{H: h}
		r.PID, r.TID = d.u32(), d.u32()
		return r, nil
	case uapi.RecordAuxOutputHWID:
		r := &AuxOutputHWIDEvent{H: h}
		r.HWID = d.u64()
		if idf.any() {
			r.SampleID = decodeSampleID(&d, idf)
		}
		return r, nil
	default:
		return &UnknownEvent{H: h, Raw: append([]byte(nil), body...)}, nil
	}
}

// sampleIDLen is used only by the RecordRead decode to find where the
// fixed-format read_format payload ends and the trailing sample_id
// begins.
func sampleIDLen(idf RecordIDFormat) int {
	n := 0
	if idf.Task {
		n += 8
	}
	if idf.Time {
		n += 8
	}
	if idf.ID {
		n += 8
	}
	if idf.StreamID {
		n += 8
	}
	if idf.CPU {
		n += 8
	}
	return n
}
