//go:build unix

package server

import (
	"errors"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// readable reports whether ln has a pending connection, without blocking.
func readable(ln net.Listener) (bool, error) {
	sc, ok := ln.(syscall.Conn)
	if !ok {
		return true, nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return false, err
	}

	var (
		n       int
		pollErr error
	)
	err = raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, pollErr = unix.Poll(fds, 0)
		if n > 0 && fds[0].Revents&unix.POLLIN == 0 {
			n = 0
		}
	})
	if err != nil {
		return false, err
	}
	if pollErr != nil {
		return false, pollErr
	}
	return n > 0, nil
}

// isTransient reports errors that only mean "nothing to do this cycle".
func isTransient(err error) bool {
	if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
