// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/warthog618/rig"
)

func init() {
	pwmCmd.AddCommand(pwmSetCmd)
	pwmCmd.AddCommand(pwmGetCmd)
	rootCmd.AddCommand(pwmCmd)
}

var (
	pwmCmd = &cobra.Command{
		Use:   "pwm",
		Short: "Control the PWM light sources",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	pwmSetCmd = &cobra.Command{
		Use:     "set <channel> <duty> <frequency>",
		Short:   "Command a channel with a duty cycle [0-1] and frequency in Hz",
		Args:    cobra.ExactArgs(3),
		RunE:    pwmSet,
		Example: "  rigctl pwm set 0 0.4 1000",
	}
	pwmGetCmd = &cobra.Command{
		Use:   "get <channel>",
		Short: "Report the last commanded duty cycle for a channel",
		Args:  cobra.ExactArgs(1),
		RunE:  pwmGet,
	}
)

func pwmSet(cmd *cobra.Command, args []string) error {
	ch, err := parseChannel(args[0], rig.NumPWMChannels)
	if err != nil {
		return err
	}
	duty, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("can't parse duty cycle '%s'", args[1])
	}
	freq, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("can't parse frequency '%s'", args[2])
	}
	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Shutdown()
	return dev.SetPWM(ch, duty, freq)
}

func pwmGet(cmd *cobra.Command, args []string) error {
	ch, err := parseChannel(args[0], rig.NumPWMChannels)
	if err != nil {
		return err
	}
	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Shutdown()
	fmt.Printf("pwm%d: %.3f\n", ch, dev.DutyCycle(ch))
	return nil
}
