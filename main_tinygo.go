//go:build tinygo && baremetal

package main

import (
	"tab5/app"
	"tab5/hal/mcu"
)

func main() {
	app.RunWithConfig(mcu.New(), app.Config{
		Width:        mcu.PanelWidth,
		Height:       mcu.PanelHeight,
		SingleBuffer: true,
	})
}
