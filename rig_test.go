// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

// Helpers shared by the test suite. Tests run against a fake sysfs tree in
// a temp directory, so no rig hardware is required.
package rig

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testConfig returns a Config pointing into a temp directory, with timings
// shortened to keep the suite fast. None of the trees exist until made.
func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.GPIODir = filepath.Join(dir, "gpio")
	cfg.PWMDir = filepath.Join(dir, "pwmchip0")
	cfg.I2CDev = filepath.Join(dir, "i2c-1")
	cfg.SetupPoll = time.Millisecond
	cfg.SetupTimeout = 50 * time.Millisecond
	cfg.SettleDelay = 0
	cfg.ChannelDelay = time.Millisecond
	cfg.CycleDelay = time.Millisecond
	return cfg
}

// makeGPIOTree fakes the kernel side of the GPIO class for the given pins,
// with the pin control files already materialized.
func makeGPIOTree(t *testing.T, cfg Config, pins ...int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.GPIODir, 0700))
	makeNode(t, filepath.Join(cfg.GPIODir, "export"))
	makeNode(t, filepath.Join(cfg.GPIODir, "unexport"))
	for _, pin := range pins {
		pd := fmt.Sprintf("%s/gpio%d", cfg.GPIODir, pin)
		require.NoError(t, os.MkdirAll(pd, 0700))
		makeNode(t, pd+"/direction")
		makeNode(t, pd+"/value")
	}
}

// makePWMTree fakes the kernel side of the PWM chip with both channels
// already materialized.
func makePWMTree(t *testing.T, cfg Config) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.PWMDir, 0700))
	makeNode(t, filepath.Join(cfg.PWMDir, "export"))
	makeNode(t, filepath.Join(cfg.PWMDir, "unexport"))
	for ch := 0; ch < NumPWMChannels; ch++ {
		cd := fmt.Sprintf("%s/pwm%d", cfg.PWMDir, ch)
		require.NoError(t, os.MkdirAll(cd, 0700))
		makeNode(t, cd+"/enable")
		makeNode(t, cd+"/duty_cycle")
		makeNode(t, cd+"/period")
	}
}

func makeNode(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("0"), 0600))
}

func nodeContent(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}
