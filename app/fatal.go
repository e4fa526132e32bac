package app

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"tab5/hal"
	"tab5/internal/bringup"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	fatalFontHeight int16 = 10
	fatalFontOffset int16 = 6
)

// showFatal logs a bring-up failure and, when the display came up, paints
// it on the panel. It does not return control to the tick loop.
func showFatal(b hal.Board, dev *bringup.DeviceSet, err error) {
	lines := []string{"Tab5 bring-up failed:"}
	lines = append(lines, strings.Split(err.Error(), ": ")...)

	if l := b.Logger(); l != nil {
		for _, line := range lines {
			l.WriteLineString("app: " + line)
		}
	}

	if dev == nil || dev.Display == nil {
		return
	}
	d := dev.Display

	font := &proggy.TinySZ8pt7b
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outboxWidth)
	if fontWidth <= 0 {
		return
	}

	d.Clear(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	fg := color.RGBA{R: 0xC0, G: 0x00, B: 0x00, A: 0xFF}

	w, h := d.Size()
	cols := w / fontWidth
	if cols <= 0 {
		cols = 1
	}
	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if y+fatalFontHeight > h {
				_ = d.Display()
				return
			}
			chunk, rest := takeRunes(line, cols)
			tinyfont.WriteLine(d, font, 0, y+fatalFontOffset, chunk, fg)
			y += fatalFontHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = d.Display()
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
