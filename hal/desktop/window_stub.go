//go:build !tinygo && !cgo

package desktop

import (
	"errors"

	"tab5/hal"
	"tab5/hal/host"
)

func RunWindow(_ *host.Board, _ func(hal.Board) func() error) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}

// NewChime returns nil without an audio backend.
func NewChime() hal.Codec { return nil }
