// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

// Test suite for the digital pin controller.
package rig

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPinOutput(t *testing.T) {
	cfg := testConfig(t)
	makeGPIOTree(t, cfg, 21)
	p, err := openPin(&cfg, 21, Output)
	require.NoError(t, err)
	require.True(t, p.ready())
	defer p.Close()
	assert.Equal(t, 21, p.Number())
	assert.Equal(t, "out", nodeContent(t, cfg.GPIODir+"/gpio21/direction"))

	require.NoError(t, p.Write(High))
	assert.Equal(t, "1", nodeContent(t, cfg.GPIODir+"/gpio21/value"))
	require.NoError(t, p.Write(Low))
	assert.Equal(t, "0", nodeContent(t, cfg.GPIODir+"/gpio21/value"))
}

func TestOpenPinInput(t *testing.T) {
	cfg := testConfig(t)
	makeGPIOTree(t, cfg, 4)
	p, err := openPin(&cfg, 4, Input)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, "in", nodeContent(t, cfg.GPIODir+"/gpio4/direction"))

	l, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, Low, l)
	require.NoError(t, os.WriteFile(cfg.GPIODir+"/gpio4/value", []byte("1"), 0600))
	l, err = p.Read()
	require.NoError(t, err)
	assert.Equal(t, High, l)
}

func TestOpenPinNoTree(t *testing.T) {
	cfg := testConfig(t)
	p, err := openPin(&cfg, 21, Output)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

// An export that never materializes must fail within the setup deadline,
// not spin forever.
func TestOpenPinExportTimeout(t *testing.T) {
	cfg := testConfig(t)
	makeGPIOTree(t, cfg) // export nodes only, no pin directory
	start := time.Now()
	p, err := openPin(&cfg, 21, Output)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrResourceUnavailable)
	assert.Less(t, time.Since(start), 10*cfg.SetupTimeout)
}

func TestPinValueLockHeld(t *testing.T) {
	cfg := testConfig(t)
	makeGPIOTree(t, cfg, 21)
	p, err := openPin(&cfg, 21, Output)
	require.NoError(t, err)
	defer p.Close()
	// the value node is held for the lifetime of the pin
	lf, err := openLocked(fmt.Sprintf("%s/gpio21/value", cfg.GPIODir), os.O_WRONLY)
	assert.Nil(t, lf)
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestPinCloseUnexports(t *testing.T) {
	cfg := testConfig(t)
	makeGPIOTree(t, cfg, 21)
	p, err := openPin(&cfg, 21, Output)
	require.NoError(t, err)
	p.Close()
	assert.Equal(t, "21", nodeContent(t, cfg.GPIODir+"/unexport"))
	assert.False(t, p.ready())
	assert.ErrorIs(t, p.Write(High), ErrNotInitialized)
	// closing again is a no-op
	p.Close()
}

func TestPinNilSafe(t *testing.T) {
	var p *Pin
	assert.False(t, p.ready())
	assert.ErrorIs(t, p.Write(High), ErrNotInitialized)
	_, err := p.Read()
	assert.ErrorIs(t, err, ErrNotInitialized)
	p.Close()
}
