// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package rig

import (
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// NumADCChannels is the number of logical inputs on the ADC.
const NumADCChannels = 4

// i2cSlave is the I2C_SLAVE ioctl from linux/i2c-dev.h, used to address the
// ADC on the bus.
const i2cSlave = 0x0703

// adcFullScaleCounts is the positive full-scale count of the 16 bit
// converter.
const adcFullScaleCounts = 32768.0

// Range selects the programmable gain amplifier full-scale input range.
type Range uint8

// Full-scale input ranges, 6.144V down to 0.256V.
const (
	Range6V Range = iota
	Range4V
	Range2V
	Range1V
	RangeHalfV
	RangeQuarterV
)

// fullScaleMilliVolts maps a Range code to the full-scale input in mV.
var fullScaleMilliVolts = [...]float64{6144, 4096, 2048, 1024, 512, 256}

// milliVoltsPerCount returns the conversion factor for the range. Codes
// beyond the table behave as the smallest range, as the device does.
func (r Range) milliVoltsPerCount() float64 {
	if int(r) >= len(fullScaleMilliVolts) {
		r = RangeQuarterV
	}
	return fullScaleMilliVolts[r] / adcFullScaleCounts
}

// Rate selects the device sample rate.
type Rate uint8

// Sample rates, 8 to 860 samples per second.
const (
	Rate8SPS Rate = iota
	Rate16SPS
	Rate32SPS
	Rate64SPS
	Rate128SPS
	Rate250SPS
	Rate475SPS
	Rate860SPS
)

// adcConfigBytes builds the 3 byte configuration transaction: the config
// register pointer, then [start | mux | PGA | continuous mode], then
// [data rate | default comparator bits].
func adcConfigBytes(channel int, rng Range, rate Rate) [3]byte {
	mux := byte(channel)&0x3 | 0x4 // input against ground, single ended
	return [3]byte{
		1,
		1<<7 | mux<<4 | byte(rng&0x7)<<1,
		byte(rate&0x7)<<5 | 0x03,
	}
}

// ADC owns the I2C device handle for the 4 channel converter and runs the
// background readout cycle. The readout continuously publishes the latest
// converted voltage per channel into a table of atomic cells, so foreground
// reads never block on the poller and never observe a torn value.
type ADC struct {
	cfg *Config

	// mu guards the device conversation - whoever holds it owns the bus -
	// along with the range, rate and channel selection.
	mu      sync.Mutex
	dev     *lockedFile
	state   resourceState
	rng     Range
	rate    Rate
	channel int

	// bindSlave addresses the converter on the open bus descriptor.
	bindSlave func(fd, addr int) error

	// mV readings and reference voltages, stored as float64 bits.
	readings [NumADCChannels]atomic.Uint64
	vref     [NumADCChannels]atomic.Uint64

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

func newADC(cfg *Config) *ADC {
	a := &ADC{
		cfg:  cfg,
		rng:  Range4V,
		rate: Rate250SPS,
		bindSlave: func(fd, addr int) error {
			return unix.IoctlSetInt(fd, i2cSlave, addr)
		},
	}
	for i := 0; i < NumADCChannels; i++ {
		a.readings[i].Store(math.Float64bits(2500))
		a.vref[i].Store(math.Float64bits(5000))
	}
	return a
}

// open opens and locks the ADC character device and selects the slave
// address. On failure the partially opened handle is closed.
func (a *ADC) open() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == owned {
		return nil
	}
	dev, err := openLocked(a.cfg.I2CDev, os.O_RDWR)
	if err != nil {
		a.state = failed
		return err
	}
	if err = a.bindSlave(int(dev.file.Fd()), a.cfg.I2CAddr); err != nil {
		dev.Close()
		a.state = failed
		return fmt.Errorf("%w: no ADC at i2c address %#x: %v", ErrResourceUnavailable, a.cfg.I2CAddr, err)
	}
	a.dev = dev
	a.state = owned
	return nil
}

// configure pushes the current configuration to the device. A no-op without
// hardware.
func (a *ADC) configure() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != owned {
		return nil
	}
	return a.pushConfigLocked()
}

// SetRange selects the full-scale range, re-pushing the device
// configuration only when it actually changed.
func (a *ADC) SetRange(r Range) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r == a.rng {
		return nil
	}
	a.rng = r
	if a.state != owned {
		return nil
	}
	return a.pushConfigLocked()
}

// SetRate selects the sample rate, re-pushing the device configuration only
// when it actually changed.
func (a *ADC) SetRate(r Rate) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r == a.rate {
		return nil
	}
	a.rate = r
	if a.state != owned {
		return nil
	}
	return a.pushConfigLocked()
}

// pushConfigLocked writes the configuration bytes, waits for the device to
// settle, then resets the register pointer to the conversion register so
// subsequent reads return samples. Caller holds a.mu.
func (a *ADC) pushConfigLocked() error {
	cb := adcConfigBytes(a.channel, a.rng, a.rate)
	if err := a.dev.write(cb[:]); err != nil {
		return err
	}
	time.Sleep(a.cfg.SettleDelay)
	return a.dev.write([]byte{0})
}

// readRawLocked reads one 16 bit signed sample, most significant byte
// first. Caller holds a.mu.
func (a *ADC) readRawLocked() (int16, error) {
	var buf [2]byte
	if err := a.dev.read(buf[:]); err != nil {
		return 0, err
	}
	return int16(uint16(buf[0])<<8 | uint16(buf[1])), nil
}

// sample selects the channel, reconfigures the device, and publishes the
// converted reading. On failure the channel's previous value is retained.
func (a *ADC) sample(channel int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != owned {
		return fmt.Errorf("%w: adc device", ErrNotInitialized)
	}
	a.channel = channel
	if err := a.pushConfigLocked(); err != nil {
		return err
	}
	raw, err := a.readRawLocked()
	if err != nil {
		return err
	}
	a.readings[channel].Store(math.Float64bits(float64(raw) * a.rng.milliVoltsPerCount()))
	return nil
}

// start launches the background readout cycle. A no-op if already running.
func (a *ADC) start() {
	if a.running.Load() {
		return
	}
	a.done = make(chan struct{})
	a.running.Store(true)
	a.wg.Add(1)
	go a.run()
}

// stop halts the readout and joins it. It must complete before the device
// handle is closed, and does. A no-op if not running.
func (a *ADC) stop() {
	if !a.running.Load() {
		return
	}
	a.running.Store(false)
	close(a.done)
	a.wg.Wait()
}

// close stops the readout and releases the device.
func (a *ADC) close() {
	a.stop()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dev != nil {
		a.dev.Close()
		a.dev = nil
	}
	if a.state == owned {
		a.state = unopened
	}
}

// run cycles the channels in order, publishing the latest reading for each.
// Without a device the existing values are left untouched - readings are
// never invented from a dead bus - and the loop just sleeps. A transient
// error mid-cycle retains the channel's previous value and moves on.
func (a *ADC) run() {
	defer a.wg.Done()
	for {
		if a.available() {
			for ch := 0; ch < NumADCChannels; ch++ {
				if !a.running.Load() {
					return
				}
				a.sample(ch)
				if !a.sleep(a.cfg.ChannelDelay) {
					return
				}
			}
		}
		if !a.sleep(a.cfg.CycleDelay) {
			return
		}
	}
}

// sleep waits for d, returning false if the readout was stopped meanwhile.
func (a *ADC) sleep(d time.Duration) bool {
	select {
	case <-a.done:
		return false
	case <-time.After(d):
		return true
	}
}

// available reports whether the device handle is held.
func (a *ADC) available() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == owned
}

// Read returns the latest measured (or simulated) voltage in mV for the
// channel. It never blocks on the poller.
func (a *ADC) Read(channel int) float64 {
	return math.Float64frombits(a.readings[clampChannel(channel, NumADCChannels)].Load())
}

// storeSimulated publishes mv as the channel's reading. Used by the PWM
// fallback so hardware-less monitoring observes the commanded duty cycle.
func (a *ADC) storeSimulated(channel int, mv float64) {
	a.readings[clampChannel(channel, NumADCChannels)].Store(math.Float64bits(mv))
}

// SetReferenceVoltage sets the independently measured reference for the
// channel's voltage divider, in mV.
func (a *ADC) SetReferenceVoltage(channel int, mv float64) {
	a.vref[clampChannel(channel, NumADCChannels)].Store(math.Float64bits(mv))
}

// ReferenceVoltage returns the channel's reference voltage in mV.
func (a *ADC) ReferenceVoltage(channel int) float64 {
	return math.Float64frombits(a.vref[clampChannel(channel, NumADCChannels)].Load())
}
