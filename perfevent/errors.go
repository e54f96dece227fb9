// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"errors"
	"fmt"

	"github.com/aclements/perfevent/internal/uapi"
)

// UnsupportedError is returned by the attribute assembler (Counter.New,
// CounterGroup.Add) when an enabled Opts field requires a kernel
// newer than the configured minimum (Opts.MinKernel). It is always
// returned before any syscall is attempted.
type UnsupportedError struct {
	// Option names the Opts field (or combination of fields) that
	// required a newer kernel.
	Option string
	// Need is the minimum kernel version that option requires.
	Need uapi.Version
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("perfevent: %s requires linux >= %s", e.Option, e.Need)
}

// ErrAlreadyExists is returned by Counter.Sampler and
// Counter.AuxTracer when a Sampler has already been attached to the
// Counter. Only one Sampler may exist per perf fd because
// two Samplers would race on tail publication in the same kernel
// ring buffer.
var ErrAlreadyExists = errors.New("perfevent: sampler already exists for this counter")

// ErrNoRecord is returned by Sampler.Next when the ring buffer
// currently has no complete record waiting. It is not a fatal
// condition: wait on Sampler.FD with epoll/poll, or poll
// Sampler.Available, and call Next again.
var ErrNoRecord = errors.New("perfevent: no record available")

// ErrClosed is returned by a blocked AsyncReader.ReadRecord when
// Close is called concurrently.
var ErrClosed = errors.New("perfevent: reader closed")

// IsUnsupported reports whether err is (or wraps) an *UnsupportedError.
func IsUnsupported(err error) bool {
	var u *UnsupportedError
	return errors.As(err, &u)
}
