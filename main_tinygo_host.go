//go:build tinygo && !baremetal

package main

import (
	"tab5/app"
	"tab5/hal/host"
)

// TinyGo host targets (linux, wasm) run the simulated board.
func main() {
	app.Run(host.New(host.Config{}))
}
