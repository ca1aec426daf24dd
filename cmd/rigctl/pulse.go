// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	pulseCmd.Flags().DurationVarP(&pulseOpts.Wait, "wait", "w", 100*time.Microsecond,
		"low time between pulses")
	rootCmd.AddCommand(pulseCmd)
}

var (
	pulseCmd = &cobra.Command{
		Use:     "pulse <count>",
		Short:   "Fire trigger pulses",
		Long:    "Fire a train of 1µs trigger pulses with a configurable low time between them.",
		Args:    cobra.ExactArgs(1),
		RunE:    pulse,
		Example: "  rigctl pulse 10 -w 200us",
	}
	pulseOpts = struct {
		Wait time.Duration
	}{}
)

func pulse(cmd *cobra.Command, args []string) error {
	count, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("can't parse count '%s'", args[0])
	}
	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Shutdown()
	return dev.Pulse(int(count), pulseOpts.Wait)
}
