// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import "github.com/aclements/go-moremath/stats"

// SamplePeriodHistogram summarizes the distribution of per-sample
// periods seen on a freq-sampled Counter (RecordSample.Period, when
// SampleFields.Period is set). Under SampleOn.Freq, the kernel
// continuously retunes the period to hit the target rate, so the
// raw period stream is noisy; this reports the usual descriptive
// statistics over a batch of them instead of the raw series.
type SamplePeriodHistogram struct {
	Min, Max, Mean, StdDev float64
	N                      int
}

// NewSamplePeriodHistogram summarizes periods, a batch of
// RecordSample.Period values collected from one Counter's Sampler.
func NewSamplePeriodHistogram(periods []uint64) SamplePeriodHistogram {
	if len(periods) == 0 {
		return SamplePeriodHistogram{}
	}
	vals := make([]float64, len(periods))
	for i, p := range periods {
		vals[i] = float64(p)
	}
	sample := stats.Sample{Xs: vals}
	min, max := sample.Bounds()
	return SamplePeriodHistogram{
		Min:    min,
		Max:    max,
		Mean:   sample.Mean(),
		StdDev: sample.StdDev(),
		N:      len(periods),
	}
}
