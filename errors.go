// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package rig

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceUnavailable indicates a kernel path could not be opened,
	// or could not be exclusively locked because another process (or an
	// earlier open in this one) already holds it.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrIOFault indicates a read or write transferred fewer bytes than
	// requested.
	ErrIOFault = errors.New("i/o fault")

	// ErrNotInitialized indicates an operation on a pin, channel or device
	// that was never successfully opened.
	ErrNotInitialized = errors.New("not initialized")

	// ErrInvalidReading indicates a conversion that would divide by zero or
	// produce a negative sensor resistance, typically a saturated channel.
	ErrInvalidReading = errors.New("invalid reading")
)

// DegradedError wraps a fault that leaves the device usable - the readout
// keeps running in simulated mode - so the caller can decide whether to
// proceed without the failed interface.
type DegradedError struct {
	Err error
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("running degraded: %v", e.Err)
}

func (e *DegradedError) Unwrap() error {
	return e.Err
}
