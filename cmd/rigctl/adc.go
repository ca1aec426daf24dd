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
	adcCmd.Flags().Uint8VarP(&adcOpts.Range, "range", "r", uint8(rig.Range4V),
		"full-scale range code (0-5)")
	adcCmd.Flags().Uint8VarP(&adcOpts.Rate, "rate", "s", uint8(rig.Rate250SPS),
		"sample rate code (0-7)")
	adcCmd.Flags().DurationVarP(&adcOpts.Settle, "settle", "t", time.Second,
		"time to let the readout settle before sampling")
	rootCmd.AddCommand(adcCmd)
}

var (
	adcCmd = &cobra.Command{
		Use:     "adc <channel>...",
		Short:   "Read ADC channel voltages in mV",
		Args:    cobra.MinimumNArgs(1),
		RunE:    adc,
		Example: "  rigctl adc 0 1 -r 2",
	}
	adcOpts = struct {
		Range  uint8
		Rate   uint8
		Settle time.Duration
	}{}
)

func adc(cmd *cobra.Command, args []string) error {
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
	if err = dev.SetADCRange(rig.Range(adcOpts.Range)); err != nil {
		return err
	}
	if err = dev.SetADCRate(rig.Rate(adcOpts.Rate)); err != nil {
		return err
	}
	time.Sleep(adcOpts.Settle)
	for _, ch := range cc {
		fmt.Printf("adc%d: %.1fmV\n", ch, dev.ReadADC(ch))
	}
	return nil
}
