// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warthog618/config"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/json"
	"github.com/warthog618/config/pflag"
	"github.com/warthog618/rig"
)

// This example continuously prints the four ADC channel voltages and the
// temperatures derived from channels 0 and 1. The rig layout defaults are
// defined in loadConfig but can be altered via configuration (env, flag or
// config file). With no hardware present the readout runs in simulated mode,
// so the monitor still demonstrates the PWM duty cycle projection.
func main() {
	cfg := loadConfig()
	rc := rig.DefaultConfig()
	rc.TriggerPin = int(cfg.GetInt("trigger"))
	rc.LightPin = int(cfg.GetInt("light"))
	rc.SparePin = int(cfg.GetInt("spare"))
	rc.GPIODir = cfg.GetString("gpio-dir")
	rc.PWMDir = cfg.GetString("pwm-dir")
	rc.I2CDev = cfg.GetString("i2c-dev")

	dev := rig.New(rc)
	if err := dev.Init(); err != nil {
		var de *rig.DegradedError
		if !errors.As(err, &de) {
			dev.Shutdown()
			log.Fatal(err)
		}
		log.Print(err)
	}
	defer dev.Shutdown()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	tick := time.NewTicker(cfg.GetDuration("period"))
	defer tick.Stop()
	for {
		select {
		case <-sig:
			return
		case <-tick.C:
			for ch := 0; ch < rig.NumADCChannels; ch++ {
				fmt.Printf("adc%d=%7.1fmV ", ch, dev.ReadADC(ch))
			}
			if t, err := dev.ReadNTCCelsius(0); err == nil {
				fmt.Printf("ntc0=%6.2fC ", t)
			}
			if t, err := dev.ReadRTDCelsius(1); err == nil {
				fmt.Printf("rtd1=%6.2fC", t)
			}
			fmt.Println()
		}
	}
}

// Config defines the minimal configuration interface.
type Config interface {
	GetDuration(k string) time.Duration
	GetInt(k string) int64
	GetString(k string) string
}

func loadConfig() Config {
	defaultConfig := map[string]interface{}{
		"trigger":  rig.DefaultTriggerPin,
		"light":    rig.DefaultLightPin,
		"spare":    rig.DefaultSparePin,
		"gpio-dir": "/sys/class/gpio",
		"pwm-dir":  "/sys/class/pwm/pwmchip0",
		"i2c-dev":  "/dev/i2c-1",
		"period":   "1s",
	}
	def := dict.New(dict.WithMap(defaultConfig))
	shortFlags := map[byte]string{
		'c': "config-file",
	}
	fget, err := pflag.New(pflag.WithShortFlags(shortFlags))
	if err != nil {
		panic(err)
	}
	eget, err := env.New(env.WithEnvPrefix("RIG_"))
	if err != nil {
		panic(err)
	}
	// flags beat environment, and both beat any file appended below
	sources := config.NewStack(fget, eget)
	cfg := config.NewConfig(config.Decorate(sources, config.WithDefault(def)))

	// the file location can itself come from flag or env, so resolve it
	// through the stack built so far.
	configFile, err := cfg.GetString("config.file")
	if err == nil {
		// a file named on the command line has to exist
		jget, err := json.New(json.FromFile(configFile))
		if err != nil {
			panic(err)
		}
		sources.Append(jget)
	} else {
		// otherwise pick up monitor.json if one is lying around
		jget, err := json.New(json.FromFile("monitor.json"))
		if err == nil {
			sources.Append(jget)
		} else {
			if _, ok := err.(*os.PathError); !ok {
				panic(err)
			}
		}
	}
	m := cfg.GetMust("", config.WithPanic())
	return m
}
