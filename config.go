// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package rig

import "time"

// BCM pin assignments for the fixed layout of the calibration rig.
// These are the SoC GPIO numbers, not the J8 header positions.
const (
	DefaultTriggerPin = 21
	DefaultLightPin   = 26
	DefaultSparePin   = 20
)

// Config holds the kernel paths, pin assignments and timing parameters for
// one rig. The defaults match the production wiring; the paths and timings
// are configurable so the package can be exercised against a fake sysfs
// tree.
type Config struct {
	// BCM numbers of the three digital output pins.
	TriggerPin int
	LightPin   int
	SparePin   int

	// Sysfs class directories and the ADC character device.
	GPIODir string
	PWMDir  string
	I2CDev  string

	// 7-bit I2C slave address of the ADC.
	I2CAddr int

	// Interval and deadline for retry-polling sysfs nodes into existence
	// after an export. The deadline bounds bring-up so an initialization
	// failure is observable in predictable time.
	SetupPoll    time.Duration
	SetupTimeout time.Duration

	// ADC timing: delay for the device to settle after a configuration
	// write, delay between channel reads, and delay between full cycles.
	SettleDelay  time.Duration
	ChannelDelay time.Duration
	CycleDelay   time.Duration
}

// DefaultConfig returns the production layout of the rig.
func DefaultConfig() Config {
	return Config{
		TriggerPin:   DefaultTriggerPin,
		LightPin:     DefaultLightPin,
		SparePin:     DefaultSparePin,
		GPIODir:      "/sys/class/gpio",
		PWMDir:       "/sys/class/pwm/pwmchip0",
		I2CDev:       "/dev/i2c-1",
		I2CAddr:      0x48,
		SetupPoll:    100 * time.Millisecond,
		SetupTimeout: 5 * time.Second,
		SettleDelay:  100 * time.Millisecond,
		ChannelDelay: 100 * time.Millisecond,
		CycleDelay:   50 * time.Millisecond,
	}
}

// clampChannel coerces a channel index into [0, n).
func clampChannel(ch, n int) int {
	if ch < 0 {
		return 0
	}
	if ch >= n {
		return n - 1
	}
	return ch
}
