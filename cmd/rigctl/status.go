// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the state of the rig interfaces",
	RunE:  status,
}

func status(cmd *cobra.Command, args []string) error {
	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Shutdown()
	fmt.Printf("gpio: %v\n", dev.StatusGPIO())
	fmt.Printf("pwm:  %v\n", dev.StatusPWM())
	fmt.Printf("adc:  %v\n", dev.StatusADC())
	return nil
}
