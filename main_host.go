//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"tab5/app"
	"tab5/hal"
	"tab5/hal/desktop"
	"tab5/hal/host"
)

func main() {
	var cfg host.HeadlessConfig
	var fail string
	var rgb888 bool
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 100, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&fail, "fail", "", "Comma separated bring-up stages to fail.")
	flag.BoolVar(&rgb888, "rgb888", false, "Use an RGB888 panel instead of RGB565.")
	flag.Parse()

	faults, err := host.ParseFaults(fail)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	appCfg := app.Config{Format: hal.PixelFormatRGB565}
	if rgb888 {
		appCfg.Format = hal.PixelFormatRGB888
	}
	newApp := func(b hal.Board) func() error {
		return app.NewWithConfig(b, appCfg)
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		b := host.New(host.Config{Faults: faults})
		if err := host.RunHeadless(ctx, b, newApp, cfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	b := host.New(host.Config{Faults: faults, Codec: desktop.NewChime()})
	if err := desktop.RunWindow(b, newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
