// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package rig

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"
)

// NumPWMChannels is the number of channels on the PWM chip.
const NumPWMChannels = 2

// MaxPWMFrequency is the highest commandable frequency in Hz. The Pi's PWM
// clock becomes unstable past this, though the period can be set down to the
// nanosecond.
const MaxPWMFrequency = 1e5

// simSupplyMilliVolts is the nominal supply used to project a duty cycle
// into the readout table when no PWM hardware is present.
const simSupplyMilliVolts = 5000.0

// pwmChannel holds the locked control nodes for one sysfs PWM channel and
// the last commanded duty cycle.
type pwmChannel struct {
	state     resourceState
	enable    *lockedFile
	duty      *lockedFile
	period    *lockedFile
	dutyCycle float64
}

// PWM drives the two hardware PWM channels of the rig. A channel that could
// not be opened falls back to a simulated state: the commanded duty cycle is
// still tracked, and is projected into the ADC readout so downstream
// monitoring stays consistent on hardware-less benches.
type PWM struct {
	cfg *Config
	mu  sync.Mutex
	ch  [NumPWMChannels]pwmChannel

	// sim publishes a simulated supply voltage for a channel with no
	// hardware behind it.
	sim func(channel int, mv float64)
}

func newPWM(cfg *Config, sim func(int, float64)) *PWM {
	p := &PWM{cfg: cfg, sim: sim}
	for i := range p.ch {
		p.ch[i].dutyCycle = 0.5
	}
	return p
}

// Init exports both channels and takes exclusive locks on their enable,
// duty_cycle and period nodes. If any open or lock fails, every PWM
// descriptor opened so far is closed - partial PWM state is never left
// behind.
func (p *PWM) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readyLocked() {
		return nil
	}
	for i := range p.ch {
		if err := p.exportChannel(i); err != nil {
			p.releaseLocked()
			return err
		}
	}
	for i := range p.ch {
		c := &p.ch[i]
		base := fmt.Sprintf("%s/pwm%d", p.cfg.PWMDir, i)
		var err error
		if c.enable, err = openLocked(base+"/enable", os.O_WRONLY); err != nil {
			p.releaseLocked()
			return err
		}
		if c.duty, err = openLocked(base+"/duty_cycle", os.O_WRONLY); err != nil {
			p.releaseLocked()
			return err
		}
		if c.period, err = openLocked(base+"/period", os.O_WRONLY); err != nil {
			p.releaseLocked()
			return err
		}
	}
	for i := range p.ch {
		p.ch[i].state = owned
	}
	return nil
}

// exportChannel makes the channel's sysfs nodes appear, bounded by the
// setup timeout. Caller holds p.mu.
func (p *PWM) exportChannel(channel int) error {
	epath := fmt.Sprintf("%s/pwm%d/enable", p.cfg.PWMDir, channel)
	if unix.Access(epath, unix.F_OK) == nil {
		return nil
	}
	ef, err := openLocked(p.cfg.PWMDir+"/export", os.O_WRONLY)
	if err != nil {
		return err
	}
	err = ef.writeString(strconv.Itoa(channel))
	ef.Close()
	if err != nil {
		return err
	}
	return waitForNode(epath, p.cfg)
}

// releaseLocked closes every open PWM descriptor and marks the channels
// failed. Caller holds p.mu.
func (p *PWM) releaseLocked() {
	for i := range p.ch {
		c := &p.ch[i]
		c.enable.Close()
		c.duty.Close()
		c.period.Close()
		c.enable, c.duty, c.period = nil, nil, nil
		c.state = failed
	}
}

// Set programs the channel with a duty cycle in [0,1] and a frequency in Hz.
// Out of range values are clamped. The write ordering disable, period, duty,
// enable is mandatory - the kernel rejects a duty cycle longer than the
// currently programmed period.
//
// On a channel with no hardware no device write occurs; the commanded duty
// cycle is projected into the simulated readout instead. The duty cycle is
// retained either way and can be read back with Get.
func (p *PWM) Set(channel int, duty, freq float64) error {
	if freq <= 0 {
		return fmt.Errorf("%w: pwm frequency %vHz", ErrInvalidReading, freq)
	}
	if freq > MaxPWMFrequency {
		freq = MaxPWMFrequency
	}
	if duty < 0 {
		duty = 0
	} else if duty > 1 {
		duty = 1
	}
	channel = clampChannel(channel, NumPWMChannels)

	p.mu.Lock()
	defer p.mu.Unlock()
	c := &p.ch[channel]
	if c.state == owned {
		period := int64(1e9 / freq)
		dutyNs := int64(float64(period) * duty)
		if err := c.enable.writeString("0"); err != nil {
			return err
		}
		if err := c.period.writeString(strconv.FormatInt(period, 10)); err != nil {
			return err
		}
		if err := c.duty.writeString(strconv.FormatInt(dutyNs, 10)); err != nil {
			return err
		}
		if err := c.enable.writeString("1"); err != nil {
			return err
		}
	} else if p.sim != nil {
		p.sim(channel, duty*simSupplyMilliVolts)
	}
	c.dutyCycle = duty
	return nil
}

// Get returns the last commanded duty cycle for the channel, regardless of
// whether hardware writes took place.
func (p *PWM) Get(channel int) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch[clampChannel(channel, NumPWMChannels)].dutyCycle
}

// Ready reports whether both channels hold their hardware nodes.
func (p *PWM) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readyLocked()
}

func (p *PWM) readyLocked() bool {
	for i := range p.ch {
		if p.ch[i].state != owned {
			return false
		}
	}
	return true
}

// Close disables both channels, releases the locks, and unexports the
// channels. Safe to call repeatedly.
func (p *PWM) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.ch {
		c := &p.ch[i]
		if c.state != owned {
			continue
		}
		c.enable.writeString("0")
		c.enable.Close()
		c.duty.Close()
		c.period.Close()
		c.enable, c.duty, c.period = nil, nil, nil
		c.state = unopened
		if uf, err := openLocked(p.cfg.PWMDir+"/unexport", os.O_WRONLY); err == nil {
			uf.writeString(strconv.Itoa(i))
			uf.Close()
		}
	}
}
