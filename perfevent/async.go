// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfevent

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// AsyncReader adapts a Sampler's polling interface (Next/ErrNoRecord)
// into a blocking ReadRecord, using epoll to sleep until the kernel
// has published more data instead of spinning Next in a busy loop.
//
// Each AsyncReader owns one epoll instance plus a close eventfd so
// Close can wake a blocked ReadRecord the same way it wakes a blocked
// EpollWait elsewhere in this ecosystem: by adding a second fd to the
// epoll set and writing to it.
type AsyncReader struct {
	s       *Sampler
	epollFd int
	closeFd int
}

// NewAsyncReader wraps s for blocking reads. The caller remains
// responsible for closing s separately; closing the AsyncReader only
// releases its own epoll/eventfd resources.
func NewAsyncReader(s *Sampler) (*AsyncReader, error) {
	epollFd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "can't create epoll fd")
	}
	closeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epollFd)
		return nil, errors.Wrap(err, "can't create close eventfd")
	}

	if err := epollAdd(epollFd, s.FD()); err != nil {
		unix.Close(epollFd)
		unix.Close(closeFd)
		return nil, err
	}
	if err := epollAdd(epollFd, closeFd); err != nil {
		unix.Close(epollFd)
		unix.Close(closeFd)
		return nil, err
	}

	return &AsyncReader{s: s, epollFd: epollFd, closeFd: closeFd}, nil
}

func epollAdd(epollFd, fd int) error {
	event := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	return errors.Wrap(unix.EpollCtl(epollFd, unix.EPOLL_CTL_ADD, fd, &event), "can't add fd to epoll")
}

// ReadRecord returns the next record, blocking until one is available
// or ctx is done. Close unblocks any in-progress ReadRecord with
// ErrClosed.
func (a *AsyncReader) ReadRecord(ctx context.Context) (Record, error) {
	for {
		rec, err := a.s.Next()
		if err == nil {
			return rec, nil
		}
		if err != ErrNoRecord {
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// With a cancelable ctx, wake up periodically so the
		// ctx.Err check above runs even if no record arrives.
		timeout := -1
		if ctx.Done() != nil {
			timeout = 100
		}
		events := make([]unix.EpollEvent, 2)
		n, err := unix.EpollWait(a.epollFd, events, timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, errors.Wrap(err, "epoll_wait")
		}
		for i := 0; i < n; i++ {
			if int(events[i].Fd) == a.closeFd {
				return nil, ErrClosed
			}
		}
	}
}

// Close unblocks any pending ReadRecord (returning ErrClosed) and
// releases the AsyncReader's epoll/eventfd resources.
func (a *AsyncReader) Close() error {
	var buf [8]byte
	buf[0] = 1
	unix.Write(a.closeFd, buf[:])
	err1 := unix.Close(a.epollFd)
	err2 := unix.Close(a.closeFd)
	if err1 != nil {
		return err1
	}
	return err2
}
