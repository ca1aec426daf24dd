// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/warthog618/rig"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "rigctl",
	Short: "rigctl is a utility to control the calibration rig hardware",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func logErr(cmd *cobra.Command, err error) {
	fmt.Fprintf(os.Stderr, "rigctl %s: %s\n", cmd.Name(), err)
}

// openDevice initialises the rig. A degraded device (no ADC - readings are
// simulated) is reported on stderr but still returned; anything else is
// fatal.
func openDevice() (*rig.Device, error) {
	dev := rig.New(rig.DefaultConfig())
	if err := dev.Init(); err != nil {
		var de *rig.DegradedError
		if !errors.As(err, &de) {
			dev.Shutdown()
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "rigctl: %s\n", err)
	}
	return dev, nil
}

func parseChannel(arg string, max int) (int, error) {
	ch, err := strconv.ParseUint(arg, 10, 8)
	if err != nil || int(ch) >= max {
		return 0, fmt.Errorf("can't parse channel '%s'", arg)
	}
	return int(ch), nil
}

func parseLevel(arg string) (bool, error) {
	switch arg {
	case "high", "hi", "true", "on", "1":
		return true, nil
	case "low", "lo", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("can't parse level '%s'", arg)
}
