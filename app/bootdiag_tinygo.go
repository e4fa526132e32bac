//go:build tinygo && baremetal && bootdebug

package app

import (
	"machine"

	"tab5/hal"
)

// withBootDiag mirrors every log line to USB CDC so early bring-up can be
// followed without a UART adapter.
func withBootDiag(b hal.Board) hal.Board {
	return diagBoard{Board: b, l: diagLogger{next: b.Logger()}}
}

type diagBoard struct {
	hal.Board
	l diagLogger
}

func (d diagBoard) Logger() hal.Logger { return d.l }

type diagLogger struct {
	next hal.Logger
}

func (l diagLogger) WriteLineString(s string) {
	if l.next != nil {
		l.next.WriteLineString(s)
	}
	if usb := machine.USBCDC; usb != nil {
		_, _ = usb.Write([]byte("bootdiag: " + s + "\r\n"))
	}
}

func (l diagLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}
