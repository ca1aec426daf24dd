// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

// Package rig controls the calibration rig hardware - the illumination
// trigger, status pins, PWM driven light sources and the 4 channel ADC used
// for temperature and voltage monitoring - through the Linux sysfs GPIO and
// PWM trees and the i2c-dev character device.
//
// Every kernel resource is opened with an exclusive advisory lock so the
// rig control process is the only one on the system driving the pins.
// Adjusting GPIO and PWM settings on a machine not wired as the rig is
// dangerous, so nothing short of explicit permission setup will let these
// routines run.
//
// The pin assignments, PWM channel indices and the ADC slave address are
// fixed configuration constants of one rig layout, not runtime discovered.
// This is deliberately not a general purpose GPIO library.
package rig

import (
	"fmt"
	"sync"
	"time"
)

// State is the lifecycle state of the Device.
type State int

// Device lifecycle states.
const (
	Uninitialized State = iota
	Initializing
	Ready
	Faulted
	Closed
)

// Device is the façade over the rig hardware. It owns the trigger, light
// and spare pins, the PWM controller and the ADC readout. Exactly one
// Device should exist per rig; collaborators receive it by reference rather
// than through a global lookup.
type Device struct {
	cfg Config

	// mu guards the lifecycle state and the pin set.
	mu      sync.Mutex
	state   State
	trigger *Pin
	light   *Pin
	spare   *Pin

	pwm *PWM
	adc *ADC
}

// New creates a Device for the given rig layout. No hardware is touched
// until Init.
func New(cfg Config) *Device {
	d := &Device{cfg: cfg}
	d.adc = newADC(&d.cfg)
	// PWM channels 0 and 1 are monitored on ADC channels 2 and 3.
	d.pwm = newPWM(&d.cfg, func(ch int, mv float64) {
		d.adc.storeSimulated(ch+2, mv)
	})
	return d
}

// Init brings the rig up: the three digital outputs, the PWM channels, and
// the ADC with its background readout. Pin and PWM faults are fatal and
// returned as is. A missing ADC is recoverable - the fault is returned
// wrapped in a DegradedError and the readout runs in simulated mode. In
// every failure case the readout is still started, so monitoring consumers
// always receive a stream of values.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = Initializing
	if err := d.initLocked(); err != nil {
		if _, ok := err.(*DegradedError); ok {
			d.state = Ready
		} else {
			d.state = Faulted
		}
		d.adc.start()
		return err
	}
	d.adc.start()
	d.state = Ready
	return nil
}

func (d *Device) initLocked() error {
	// Resources already held from an earlier attempt are kept - the locks
	// guarantee a fresh acquire of the same path would fail.
	var err error
	if !d.light.ready() {
		if d.light, err = openPin(&d.cfg, d.cfg.LightPin, Output); err != nil {
			return err
		}
	}
	if !d.trigger.ready() {
		if d.trigger, err = openPin(&d.cfg, d.cfg.TriggerPin, Output); err != nil {
			return err
		}
	}
	if !d.spare.ready() {
		if d.spare, err = openPin(&d.cfg, d.cfg.SparePin, Output); err != nil {
			return err
		}
	}
	if err = d.pwm.Init(); err != nil {
		return err
	}
	// A re-init must not leave a stale readout on a dangling handle.
	d.adc.stop()
	if err = d.adc.open(); err != nil {
		return &DegradedError{Err: err}
	}
	if err = d.adc.configure(); err != nil {
		d.adc.close()
		return &DegradedError{Err: err}
	}
	return nil
}

// Shutdown tears the rig down in reverse order: light off, digital pins
// released and unexported, PWM disabled and unexported, readout stopped and
// the device handle closed. Every step is best effort so a failure in one
// cannot skip the rest. Safe to call repeatedly.
func (d *Device) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.light != nil {
		d.light.Write(Low)
		d.light.Close()
		d.light = nil
	}
	if d.trigger != nil {
		d.trigger.Close()
		d.trigger = nil
	}
	if d.spare != nil {
		d.spare.Close()
		d.spare = nil
	}
	d.pwm.Close()
	d.adc.close()
	d.state = Closed
}

// State returns the lifecycle state of the device.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Pulse drives count pulses on the trigger pin, each 1µs high followed by
// wait low.
func (d *Device) Pulse(count int, wait time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.trigger.ready() {
		return fmt.Errorf("%w: trigger pin", ErrNotInitialized)
	}
	for i := 0; i < count; i++ {
		if err := d.trigger.Write(High); err != nil {
			return err
		}
		time.Sleep(time.Microsecond)
		if err := d.trigger.Write(Low); err != nil {
			return err
		}
		time.Sleep(wait)
	}
	return nil
}

// SetLight switches the light pin.
func (d *Device) SetLight(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.light.ready() {
		return fmt.Errorf("%w: light pin", ErrNotInitialized)
	}
	return d.light.Write(Level(on))
}

// SetSpare switches the spare pin.
func (d *Device) SetSpare(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.spare.ready() {
		return fmt.Errorf("%w: spare pin", ErrNotInitialized)
	}
	return d.spare.Write(Level(on))
}

// SetPWM commands a channel with a duty cycle in [0,1] and a frequency in
// Hz, clamped per PWM.Set.
func (d *Device) SetPWM(channel int, duty, freq float64) error {
	return d.pwm.Set(channel, duty, freq)
}

// DutyCycle returns the last commanded duty cycle for a PWM channel.
func (d *Device) DutyCycle(channel int) float64 {
	return d.pwm.Get(channel)
}

// SetADCRange selects the ADC full-scale range.
func (d *Device) SetADCRange(r Range) error {
	return d.adc.SetRange(r)
}

// SetADCRate selects the ADC sample rate.
func (d *Device) SetADCRate(r Rate) error {
	return d.adc.SetRate(r)
}

// SetReferenceVoltage records the measured divider reference for a channel,
// in mV.
func (d *Device) SetReferenceVoltage(channel int, mv float64) {
	d.adc.SetReferenceVoltage(channel, mv)
}

// ReadADC returns the latest voltage for the channel in mV, without
// blocking on the readout.
func (d *Device) ReadADC(channel int) float64 {
	return d.adc.Read(channel)
}

// ReadNTCCelsius interprets the channel as an NTC thermistor and returns
// degrees Celsius.
func (d *Device) ReadNTCCelsius(channel int) (float64, error) {
	return NTCCelsius(d.adc.Read(channel), d.adc.ReferenceVoltage(channel))
}

// ReadRTDCelsius interprets the channel as a platinum RTD and returns
// degrees Celsius.
func (d *Device) ReadRTDCelsius(channel int) (float64, error) {
	return RTDCelsius(d.adc.Read(channel), d.adc.ReferenceVoltage(channel))
}

// StatusGPIO reports whether all three digital pins are held.
func (d *Device) StatusGPIO() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trigger.ready() && d.light.ready() && d.spare.ready()
}

// StatusPWM reports whether both PWM channels are held.
func (d *Device) StatusPWM() bool {
	return d.pwm.Ready()
}

// StatusADC reports whether the ADC device is held.
func (d *Device) StatusADC() bool {
	return d.adc.available()
}
