//go:build !tinygo && cgo

// Package desktop shows a simulated board in an Ebiten window. The mouse
// (or a touch screen) drives the simulated digitizer.
package desktop

import (
	"image"

	"tab5/hal"
	"tab5/hal/host"
	"tab5/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// TPS matches the engine tick interval.
const TPS = 100

// Until the panel starts the window shows a landscape placeholder.
const (
	idleWidth  = 1280
	idleHeight = 720
)

// RunWindow runs newApp on b inside a desktop window. It blocks until the
// window closes, Escape is pressed, or a step fails.
func RunWindow(b *host.Board, newApp func(hal.Board) func() error) error {
	step := newApp(b)

	g := &game{b: b, step: step}
	ebiten.SetWindowTitle("Tab5 (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(idleWidth, idleHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(TPS)
	return ebiten.RunGame(g)
}

type game struct {
	b    *host.Board
	step func() error

	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte

	pressed bool
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.pollPointer()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *game) pollPointer() {
	x, y, ok := g.contact()
	if !ok {
		if g.pressed {
			g.b.Release()
			g.pressed = false
		}
		return
	}
	w, h := g.Layout(0, 0)
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	g.b.Touch([2]uint16{uint16(x), uint16(y)})
	g.pressed = true
}

// contact returns the first touch, else the cursor while the left button
// is held.
func (g *game) contact() (int, int, bool) {
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return x, y, true
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return x, y, true
	}
	return 0, 0, false
}

func (g *game) Draw(screen *ebiten.Image) {
	fb := g.b.HostPanel().Framebuffer()
	if fb == nil {
		return
	}
	rot := g.b.HostPanel().Rotation()
	pw, ph := fb.Width(), fb.Height()
	lw, lh := hal.LogicalSize(rot, pw, ph)

	if g.img == nil || g.img.Bounds().Dx() != lw || g.img.Bounds().Dy() != lh {
		g.img = image.NewRGBA(image.Rect(0, 0, lw, lh))
		g.scratch = make([]byte, fb.StrideBytes()*ph)
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(lw, lh)
	}

	fb.Snapshot(g.scratch)
	derotate(g.img, g.scratch, fb.Format(), fb.StrideBytes(), rot, pw, ph)

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	fb := g.b.HostPanel().Framebuffer()
	if fb == nil {
		return idleWidth, idleHeight
	}
	return hal.LogicalSize(g.b.HostPanel().Rotation(), fb.Width(), fb.Height())
}
