// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

package rig

import (
	"fmt"
	"math"
)

// The temperature sensors form the grounded leg of a voltage divider
// against a fixed 10k resistor, with the ADC reading the midpoint. The
// ~700k input impedance of the ADC is treated as negligible. The reference
// voltage must be measured independently for an accurate readout.
const (
	dividerOhms = 10000.0

	ntcBeta          = 3500.0
	ntcNominalOhms   = 10000.0
	ntcNominalKelvin = 298.15

	rtdAlpha         = 0.003916
	rtdNominalOhms   = 10000.0
	rtdNominalKelvin = 273.15

	kelvinOffset = 273.15
)

// sensorResistance derives the sensor resistance from the measured and
// reference voltages (both mV). A reading at or above the reference, or at
// or below zero, implies a saturated or disconnected channel and yields
// ErrInvalidReading rather than a division by zero.
func sensorResistance(mv, vrefMV float64) (float64, error) {
	if mv <= 0 || vrefMV-mv <= 0 {
		return 0, fmt.Errorf("%w: %.1fmV against %.1fmV reference", ErrInvalidReading, mv, vrefMV)
	}
	return dividerOhms * mv / (vrefMV - mv), nil
}

// NTCCelsius interprets a channel voltage as a 10k B-3500 NTC thermistor
// reading, using the simplified Steinhart-Hart beta equation
// 1/T = 1/T0 + ln(R/R0)/B. The result is in degrees Celsius.
func NTCCelsius(mv, vrefMV float64) (float64, error) {
	r, err := sensorResistance(mv, vrefMV)
	if err != nil {
		return 0, err
	}
	return ntcNominalKelvin*ntcBeta/(ntcBeta+ntcNominalKelvin*math.Log(r/ntcNominalOhms)) - kelvinOffset, nil
}

// RTDCelsius interprets a channel voltage as a 10k platinum RTD reading,
// using the linear model R = R0(1 + a(T - T0)). The result is in degrees
// Celsius.
func RTDCelsius(mv, vrefMV float64) (float64, error) {
	r, err := sensorResistance(mv, vrefMV)
	if err != nil {
		return 0, err
	}
	return rtdNominalKelvin + (r-rtdNominalOhms)/(rtdNominalOhms*rtdAlpha) - kelvinOffset, nil
}
