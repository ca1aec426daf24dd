// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

// Test suite for the temperature conversions.
package rig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// With the sensor at its nominal 10k the divider splits the reference
// evenly, so 2500mV against a 5000mV reference sits exactly at the nominal
// temperature.
func TestNTCCelsiusNominal(t *testing.T) {
	c, err := NTCCelsius(2500, 5000)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, c, 0.01)
}

func TestNTCCelsiusMonotonic(t *testing.T) {
	// NTC resistance falls with temperature, so a lower divider voltage
	// means a hotter sensor.
	hot, err := NTCCelsius(2000, 5000)
	require.NoError(t, err)
	cold, err := NTCCelsius(3000, 5000)
	require.NoError(t, err)
	assert.Greater(t, hot, 25.0)
	assert.Less(t, cold, 25.0)
}

func TestRTDCelsiusNominal(t *testing.T) {
	c, err := RTDCelsius(2500, 5000)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, c, 0.01)
}

func TestRTDCelsiusLinear(t *testing.T) {
	// R = 2*R0 wants v = 2/3 vref; T = (R-R0)/(R0*a).
	c, err := RTDCelsius(2.0/3.0*5000, 5000)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/0.003916, c, 0.01)
}

// A reading at or beyond the reference implies a saturated or open channel
// and must be rejected rather than dividing by zero.
func TestConversionInvalidReading(t *testing.T) {
	patterns := []struct {
		name string
		mv   float64
		vref float64
	}{
		{"at reference", 5000, 5000},
		{"above reference", 5100, 5000},
		{"zero", 0, 5000},
		{"negative", -100, 5000},
		{"zero reference", 2500, 0},
	}
	for _, p := range patterns {
		t.Run(p.name, func(t *testing.T) {
			_, err := NTCCelsius(p.mv, p.vref)
			assert.ErrorIs(t, err, ErrInvalidReading)
			_, err = RTDCelsius(p.mv, p.vref)
			assert.ErrorIs(t, err, ErrInvalidReading)
		})
	}
}
