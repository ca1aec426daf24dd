// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/warthog618/rig"
)

func init() {
	tempCmd.PersistentFlags().Float64VarP(&tempOpts.Vref, "vref", "v", 5000,
		"divider reference voltage in mV")
	tempCmd.PersistentFlags().DurationVarP(&tempOpts.Settle, "settle", "t", time.Second,
		"time to let the readout settle before sampling")
	tempCmd.AddCommand(ntcCmd)
	tempCmd.AddCommand(rtdCmd)
	rootCmd.AddCommand(tempCmd)
}

var (
	tempCmd = &cobra.Command{
		Use:   "temp",
		Short: "Read channel temperatures",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	ntcCmd = &cobra.Command{
		Use:     "ntc <channel>...",
		Short:   "Read channels as 10k B-3500 NTC thermistors",
		Args:    cobra.MinimumNArgs(1),
		RunE:    ntc,
		Example: "  rigctl temp ntc 0 1 -v 4960",
	}
	rtdCmd = &cobra.Command{
		Use:   "rtd <channel>...",
		Short: "Read channels as 10k platinum RTDs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  rtd,
	}
	tempOpts = struct {
		Vref   float64
		Settle time.Duration
	}{}
)

func ntc(cmd *cobra.Command, args []string) error {
	return temp(cmd, args, (*rig.Device).ReadNTCCelsius)
}

func rtd(cmd *cobra.Command, args []string) error {
	return temp(cmd, args, (*rig.Device).ReadRTDCelsius)
}

func temp(cmd *cobra.Command, args []string, read func(*rig.Device, int) (float64, error)) error {
	cc := []int(nil)
	for _, arg := range args {
		ch, err := parseChannel(arg, rig.NumADCChannels)
		if err != nil {
			return err
		}
		cc = append(cc, ch)
	}
	dev, err := openDevice()
	if err != nil {
		return err
	}
	defer dev.Shutdown()
	for _, ch := range cc {
		dev.SetReferenceVoltage(ch, tempOpts.Vref)
	}
	time.Sleep(tempOpts.Settle)
	for _, ch := range cc {
		t, err := read(dev, ch)
		if err != nil {
			// a bad reading on one channel shouldn't hide the others
			logErr(cmd, err)
			continue
		}
		fmt.Printf("ch%d: %.2f°C\n", ch, t)
	}
	return nil
}
