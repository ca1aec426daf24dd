// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package rig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// Direction of a digital pin.
type Direction int

// A pin is configured as either an input or an output.
const (
	Input Direction = iota
	Output
)

// Level represents the high (true) or low (false) level of a pin.
type Level bool

// Level of pin, High / Low.
const (
	Low  Level = false
	High Level = true
)

// resourceState tracks ownership of a kernel resource, replacing sentinel
// descriptor values.
type resourceState int

const (
	unopened resourceState = iota
	owned
	failed
)

// Pin is a single exported sysfs GPIO pin, identified by its BCM number.
// While open it holds the exclusive lock on its value node.
type Pin struct {
	cfg    *Config
	number int
	dir    Direction
	state  resourceState
	value  *lockedFile
	buf    [3]byte
}

// openPin exports the pin, sets its direction, and opens and locks its
// value node for the lifetime of the Pin.
func openPin(cfg *Config, number int, dir Direction) (*Pin, error) {
	p := &Pin{cfg: cfg, number: number, dir: dir, state: failed}
	if err := exportPin(cfg, number); err != nil {
		return nil, err
	}
	dpath := fmt.Sprintf("%s/gpio%d/direction", cfg.GPIODir, number)
	df, err := openLocked(dpath, os.O_WRONLY)
	if err != nil {
		unexportPin(cfg, number)
		return nil, err
	}
	ds := "out"
	if dir == Input {
		ds = "in"
	}
	err = df.writeString(ds)
	df.Close()
	if err != nil {
		unexportPin(cfg, number)
		return nil, err
	}
	flag := os.O_WRONLY
	if dir == Input {
		flag = os.O_RDONLY
	}
	vpath := fmt.Sprintf("%s/gpio%d/value", cfg.GPIODir, number)
	if p.value, err = openLocked(vpath, flag); err != nil {
		unexportPin(cfg, number)
		return nil, err
	}
	p.state = owned
	return p, nil
}

// exportPin writes the pin number to the export node and waits for the
// kernel to materialize the pin's control files. An already exported pin is
// left as is.
func exportPin(cfg *Config, number int) error {
	dpath := fmt.Sprintf("%s/gpio%d/direction", cfg.GPIODir, number)
	if unix.Access(dpath, unix.F_OK) == nil {
		return nil
	}
	ef, err := openLocked(cfg.GPIODir+"/export", os.O_WRONLY)
	if err != nil {
		return err
	}
	err = ef.writeString(strconv.Itoa(number))
	ef.Close()
	if err != nil {
		return err
	}
	return waitForNode(dpath, cfg)
}

// unexportPin releases the pin back to the kernel. Best effort and
// idempotent - an already removed pin is not an error.
func unexportPin(cfg *Config, number int) {
	uf, err := openLocked(cfg.GPIODir+"/unexport", os.O_WRONLY)
	if err != nil {
		return
	}
	uf.writeString(strconv.Itoa(number))
	uf.Close()
}

// waitForNode retry-polls until path exists, bounded by cfg.SetupTimeout.
// Exported nodes can take >100ms to appear on older Pis.
func waitForNode(path string, cfg *Config) error {
	deadline := time.Now().Add(cfg.SetupTimeout)
	for {
		if unix.Access(path, unix.F_OK) == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s not present after %v", ErrResourceUnavailable, path, cfg.SetupTimeout)
		}
		time.Sleep(cfg.SetupPoll)
	}
}

// Read returns the current level of the pin.
func (p *Pin) Read() (Level, error) {
	if p == nil || p.state != owned {
		return Low, fmt.Errorf("%w: gpio pin", ErrNotInitialized)
	}
	n, err := p.value.readAt(p.buf[:])
	if err != nil {
		return Low, err
	}
	if n < 1 {
		return Low, fmt.Errorf("%w: read %s: empty", ErrIOFault, p.value.path)
	}
	return p.buf[0] == '1', nil
}

// Write sets the level of the pin.
func (p *Pin) Write(l Level) error {
	if p == nil || p.state != owned {
		return fmt.Errorf("%w: gpio pin", ErrNotInitialized)
	}
	s := "0"
	if l == High {
		s = "1"
	}
	return p.value.writeString(s)
}

// Number returns the BCM number of the pin.
func (p *Pin) Number() int {
	return p.number
}

// Close releases the value node and unexports the pin. Safe to call on an
// already closed pin.
func (p *Pin) Close() {
	if p == nil || p.state != owned {
		return
	}
	p.value.Close()
	p.value = nil
	p.state = unopened
	unexportPin(p.cfg, p.number)
}

// ready reports whether the pin was successfully opened and is still held.
func (p *Pin) ready() bool {
	return p != nil && p.state == owned
}
