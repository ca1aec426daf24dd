// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(lightCmd)
	rootCmd.AddCommand(spareCmd)
}

var (
	lightCmd = &cobra.Command{
		Use:     "light <on|off>",
		Short:   "Switch the illumination pin",
		Args:    cobra.ExactArgs(1),
		RunE:    light,
		Example: "  rigctl light on",
	}
	spareCmd = &cobra.Command{
		Use:     "spare <on|off>",
		Short:   "Switch the spare pin",
		Args:    cobra.ExactArgs(1),
		RunE:    spare,
		Example: "  rigctl spare off",
	}
)

func light(cmd *cobra.Command, args []string) error {
	on, err := parseLevel(args[0])
	if err != nil {
		return err
	}
	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Shutdown()
	return dev.SetLight(on)
}

func spare(cmd *cobra.Command, args []string) error {
	on, err := parseLevel(args[0])
	if err != nil {
		return err
	}
	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Shutdown()
	return dev.SetSpare(on)
}
