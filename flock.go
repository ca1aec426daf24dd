// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package rig

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// lockedFile is an open file holding an exclusive advisory lock on its path.
// The lock guarantees the rig control process is the only one on the system
// driving the resource. The kernel drops the lock when the descriptor
// closes, so the lock and the handle are released together and cannot leak
// on an error path.
type lockedFile struct {
	path string
	file *os.File
}

// openLocked opens path with the given flag and takes an exclusive
// non-blocking flock on it. On open or lock failure any partially opened
// descriptor is closed and ErrResourceUnavailable is returned.
func openLocked(path string, flag int) (*lockedFile, error) {
	f, err := os.OpenFile(path, flag, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrResourceUnavailable, path, err)
	}
	if err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: lock %s: %v", ErrResourceUnavailable, path, err)
	}
	return &lockedFile{path: path, file: f}, nil
}

// Close releases the descriptor, and with it the lock.
func (lf *lockedFile) Close() error {
	if lf == nil || lf.file == nil {
		return nil
	}
	err := lf.file.Close()
	lf.file = nil
	return err
}

// writeString writes s at the start of the file, as sysfs attributes expect.
func (lf *lockedFile) writeString(s string) error {
	n, err := lf.file.WriteAt([]byte(s), 0)
	if err != nil || n != len(s) {
		return fmt.Errorf("%w: write %s: %v", ErrIOFault, lf.path, err)
	}
	return nil
}

// readAt reads from the start of the file, returning the bytes available.
func (lf *lockedFile) readAt(buf []byte) (int, error) {
	n, err := lf.file.ReadAt(buf, 0)
	if n == 0 && err != nil {
		return 0, fmt.Errorf("%w: read %s: %v", ErrIOFault, lf.path, err)
	}
	return n, nil
}

// write performs a sequential full-length write, as used for device nodes
// where each write is a discrete bus transaction.
func (lf *lockedFile) write(buf []byte) error {
	n, err := lf.file.Write(buf)
	if err != nil || n != len(buf) {
		return fmt.Errorf("%w: write %s: %v", ErrIOFault, lf.path, err)
	}
	return nil
}

// read performs a sequential full-length read.
func (lf *lockedFile) read(buf []byte) error {
	n, err := lf.file.Read(buf)
	if err != nil || n != len(buf) {
		return fmt.Errorf("%w: read %s: %v", ErrIOFault, lf.path, err)
	}
	return nil
}
