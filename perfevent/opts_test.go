// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"testing"

	"github.com/aclements/perfevent/internal/uapi"
)

func TestStatFormatReadFormat(t *testing.T) {
	f := StatFormat{ID: true, TimeEnabled: true}
	rf, err := f.readFormat(uapi.Latest)
	if err != nil {
		t.Fatal(err)
	}
	want := uapi.PerfFormatID | uapi.PerfFormatTotalTimeEnabled
	if rf != want {
		t.Errorf("readFormat() = %#x, want %#x", rf, want)
	}
}

func TestStatFormatLostRecordsGated(t *testing.T) {
	f := StatFormat{LostRecords: true}
	_, err := f.readFormat(uapi.V5_13)
	if !IsUnsupported(err) {
		t.Fatalf("readFormat with old kernel: err = %v, want *UnsupportedError", err)
	}
	rf, err := f.readFormat(uapi.V6_0)
	if err != nil {
		t.Fatal(err)
	}
	if rf&uapi.PerfFormatLost == 0 {
		t.Error("readFormat() should set PerfFormatLost on linux-6.0+")
	}
}

func TestSampleSkidPreciseIP(t *testing.T) {
	cases := []struct {
		skid SampleSkid
		want uint64
	}{
		{SkidArbitrary, 0},
		{SkidConstant, 1},
		{SkidTryZero, 2},
		{SkidRequireZero, 3},
	}
	for _, c := range cases {
		if got := c.skid.preciseIP(); got != c.want {
			t.Errorf("SampleSkid(%d).preciseIP() = %d, want %d", c.skid, got, c.want)
		}
	}
}

func TestOptsMinKernelDefault(t *testing.T) {
	o := &Opts{}
	if got := o.minKernel(); got != uapi.DefaultMin {
		t.Errorf("minKernel() = %v, want %v", got, uapi.DefaultMin)
	}
	o.MinKernel = uapi.V5_13
	if got := o.minKernel(); got != uapi.V5_13 {
		t.Errorf("minKernel() = %v, want %v", got, uapi.V5_13)
	}
}
