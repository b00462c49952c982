package errors

import (
	"database/sql/driver"
	"errors"
	"net"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreUnreachable means the persistent store itself cannot be
	// reached. It is the only condition the detectors propagate instead of
	// substituting a neutral default.
	ErrStoreUnreachable = errors.New("store unreachable")
)

// Substitution records a neutral-default fallback taken by a component
// after a store read failed or returned no usable data. Substitutions are
// logged and counted, never silently dropped.
type Substitution struct {
	Component string
	Reason    string
}

// IsStoreUnreachable distinguishes "the store is down" from "one query
// failed". Connection-level failures propagate to the caller; anything
// else is handled by the owning component as a data-unavailable
// substitution.
func IsStoreUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStoreUnreachable) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
