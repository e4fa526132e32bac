//go:build !(tinygo && baremetal && bootdebug)

package app

import "tab5/hal"

func withBootDiag(b hal.Board) hal.Board { return b }
