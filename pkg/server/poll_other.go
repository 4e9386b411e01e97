//go:build !unix

package server

import (
	"errors"
	"net"
)

// readable always reports ready; the accept deadline keeps Poll from blocking.
func readable(net.Listener) (bool, error) {
	return true, nil
}

// isTransient reports errors that only mean "nothing to do this cycle".
func isTransient(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
