// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

// Test suite for the PWM controller.
package rig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPWMInit(t *testing.T) {
	cfg := testConfig(t)
	makePWMTree(t, cfg)
	p := newPWM(&cfg, nil)
	require.NoError(t, p.Init())
	defer p.Close()
	assert.True(t, p.Ready())
}

func TestPWMInitNoTree(t *testing.T) {
	cfg := testConfig(t)
	p := newPWM(&cfg, nil)
	assert.ErrorIs(t, p.Init(), ErrResourceUnavailable)
	assert.False(t, p.Ready())
}

// A second controller must not be able to take the channels, and the failed
// init must leave no partial state behind in the loser.
func TestPWMInitExclusive(t *testing.T) {
	cfg := testConfig(t)
	makePWMTree(t, cfg)
	p := newPWM(&cfg, nil)
	require.NoError(t, p.Init())
	defer p.Close()
	q := newPWM(&cfg, nil)
	assert.ErrorIs(t, q.Init(), ErrResourceUnavailable)
	assert.False(t, q.Ready())
}

func TestPWMSet(t *testing.T) {
	cfg := testConfig(t)
	makePWMTree(t, cfg)
	p := newPWM(&cfg, nil)
	require.NoError(t, p.Init())
	defer p.Close()

	require.NoError(t, p.Set(0, 0.5, 1e5))
	assert.Equal(t, "10000", nodeContent(t, cfg.PWMDir+"/pwm0/period"))
	assert.Equal(t, "5000", nodeContent(t, cfg.PWMDir+"/pwm0/duty_cycle"))
	assert.Equal(t, "1", nodeContent(t, cfg.PWMDir+"/pwm0/enable"))
	assert.Equal(t, 0.5, p.Get(0))
}

// Requesting a frequency beyond the chip limit produces the same period as
// requesting the limit.
func TestPWMSetFrequencyClamp(t *testing.T) {
	cfg := testConfig(t)
	makePWMTree(t, cfg)
	p := newPWM(&cfg, nil)
	require.NoError(t, p.Init())
	defer p.Close()

	require.NoError(t, p.Set(0, 0.5, 1e8))
	require.NoError(t, p.Set(1, 0.5, 1e5))
	assert.Equal(t,
		nodeContent(t, cfg.PWMDir+"/pwm1/period"),
		nodeContent(t, cfg.PWMDir+"/pwm0/period"))
}

func TestPWMSetDutyCycleClamp(t *testing.T) {
	cfg := testConfig(t)
	makePWMTree(t, cfg)
	p := newPWM(&cfg, nil)
	require.NoError(t, p.Init())
	defer p.Close()

	require.NoError(t, p.Set(0, 1.5, 1e5))
	high := nodeContent(t, cfg.PWMDir+"/pwm0/duty_cycle")
	require.NoError(t, p.Set(1, 1.0, 1e5))
	assert.Equal(t, nodeContent(t, cfg.PWMDir+"/pwm1/duty_cycle"), high)
	assert.Equal(t, 1.0, p.Get(0))

	require.NoError(t, p.Set(0, -0.2, 1e5))
	assert.Equal(t, 0.0, p.Get(0))
	assert.Equal(t, "1", nodeContent(t, cfg.PWMDir+"/pwm0/enable"))
}

func TestPWMSetBadFrequency(t *testing.T) {
	cfg := testConfig(t)
	p := newPWM(&cfg, nil)
	assert.ErrorIs(t, p.Set(0, 0.5, 0), ErrInvalidReading)
	assert.ErrorIs(t, p.Set(0, 0.5, -10), ErrInvalidReading)
}

// Without hardware the commanded duty cycle is projected into the readout
// path and still tracked for Get.
func TestPWMSetSimulated(t *testing.T) {
	cfg := testConfig(t)
	var simCh int
	var simMV float64
	p := newPWM(&cfg, func(ch int, mv float64) {
		simCh, simMV = ch, mv
	})
	// no Init - channels unopened
	require.NoError(t, p.Set(0, 0.4, 1000))
	assert.Equal(t, 0, simCh)
	assert.InDelta(t, 2000.0, simMV, 1e-9)
	assert.Equal(t, 0.4, p.Get(0))

	require.NoError(t, p.Set(1, 0.25, 1000))
	assert.Equal(t, 1, simCh)
	assert.InDelta(t, 1250.0, simMV, 1e-9)
	assert.Equal(t, 0.25, p.Get(1))
}

func TestPWMGetDefault(t *testing.T) {
	cfg := testConfig(t)
	p := newPWM(&cfg, nil)
	assert.Equal(t, 0.5, p.Get(0))
	assert.Equal(t, 0.5, p.Get(1))
	// out of range channels clamp
	assert.Equal(t, 0.5, p.Get(-1))
	assert.Equal(t, 0.5, p.Get(7))
}

func TestPWMCloseClosed(t *testing.T) {
	cfg := testConfig(t)
	makePWMTree(t, cfg)
	p := newPWM(&cfg, nil)
	require.NoError(t, p.Init())
	p.Close()
	assert.False(t, p.Ready())
	p.Close()
	// the channels were released
	q := newPWM(&cfg, nil)
	require.NoError(t, q.Init())
	q.Close()
}
