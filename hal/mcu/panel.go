//go:build tinygo && baremetal

package mcu

import (
	"errors"
	"machine"
	"time"

	"tab5/hal"

	"tinygo.org/x/drivers"
)

const spiFrequency = 40_000_000

var (
	errPanelStarted = errors.New("panel already started")
	errPanelFormat  = errors.New("panel: unsupported pixel format")
)

// spiPanel drives an ILI9488-family controller. Content arrives already
// rotated in software, so SetRotation only records the value.
type spiPanel struct {
	pins Pins
	spi  *machine.SPI
	fb   *framebuffer
	rot  drivers.Rotation

	txBuf []byte
}

func newSPIPanel(p Pins) *spiPanel {
	return &spiPanel{pins: p, spi: machine.SPI1, txBuf: make([]byte, 4096)}
}

func (d *spiPanel) Start(cfg hal.PanelConfig) (hal.Framebuffer, error) {
	if d.fb != nil {
		return nil, errPanelStarted
	}
	if err := checkPanel(cfg); err != nil {
		return nil, err
	}
	var colmod byte
	switch cfg.Format {
	case hal.PixelFormatRGB565:
		colmod = 0x55
	case hal.PixelFormatRGB888:
		colmod = 0x66
	default:
		return nil, errPanelFormat
	}
	if d.spi == nil {
		return nil, errors.New("SPI1 unavailable")
	}
	if err := d.spi.Configure(machine.SPIConfig{
		SCK:       d.pins.SCK,
		SDO:       d.pins.SDO,
		SDI:       d.pins.SDI,
		Frequency: spiFrequency,
	}); err != nil {
		return nil, err
	}

	for _, p := range []machine.Pin{d.pins.CS, d.pins.DC, d.pins.Reset, d.pins.Lite} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	d.pins.CS.High()
	d.pins.DC.High()
	d.pins.Lite.Low()

	d.reset()
	d.init(colmod)

	d.fb = newFramebuffer(d, cfg)
	return d.fb, nil
}

func (d *spiPanel) SetRotation(rot drivers.Rotation) error {
	d.rot = rot
	return nil
}

func (d *spiPanel) SetBacklight(on bool) error {
	d.pins.Lite.Set(on)
	return nil
}

func (d *spiPanel) reset() {
	d.pins.Reset.High()
	d.pins.Reset.Low()
	time.Sleep(64 * time.Millisecond)
	d.pins.Reset.High()
	time.Sleep(140 * time.Millisecond)
}

func (d *spiPanel) init(colmod byte) {
	d.cmd(0xC0, 0x17, 0x15)             // PWCTRL1
	d.cmd(0xC1, 0x41)                   // PWCTRL2
	d.cmd(0xC5, 0x00, 0x12, 0x80, 0x40) // VMCTRL
	d.cmd(0x3A, colmod)                 // COLMOD
	d.cmd(0xB1, 0xA0, 0x11)             // FRMCTRL1
	d.cmd(0x36, 0x08)                   // MADCTL: BGR
	d.cmd(0x11)                         // SLPOUT
	time.Sleep(120 * time.Millisecond)
	d.cmd(0x29) // DISPON
}

func (d *spiPanel) cmd(cmd byte, data ...byte) {
	d.pins.CS.Low()
	d.pins.DC.Low()
	d.spi.Tx([]byte{cmd}, nil)
	d.pins.DC.High()
	if len(data) > 0 {
		d.spi.Tx(data, nil)
	}
	d.pins.CS.High()
}

func (d *spiPanel) setWindow(x0, y0, x1, y1 uint16) {
	d.cmd(0x2A, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1))
	d.cmd(0x2B, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
	d.cmd(0x2C)
}

// blit streams buf to the panel. Pixels are stored little-endian (RGB565)
// or B, G, R (RGB888); the controller wants the most significant byte first.
func (d *spiPanel) blit(buf []byte, w, h int, f hal.PixelFormat) error {
	bpp := f.BytesPerPixel()
	total := w * h * bpp
	if w <= 0 || h <= 0 || bpp == 0 || len(buf) < total {
		return errors.New("invalid framebuffer")
	}

	d.setWindow(0, 0, uint16(w-1), uint16(h-1))

	d.pins.CS.Low()
	d.pins.DC.High()

	chunk := d.txBuf[:len(d.txBuf)/bpp*bpp]
	for off := 0; off < total; {
		n := len(chunk)
		if remain := total - off; n > remain {
			n = remain
		}
		src := buf[off : off+n]
		for i := 0; i < n; i += bpp {
			for j := 0; j < bpp; j++ {
				chunk[i+j] = src[i+bpp-1-j]
			}
		}
		d.spi.Tx(chunk[:n], nil)
		off += n
	}

	d.pins.CS.High()
	return nil
}

// framebuffer keeps one or two buffers in RAM. With two, Present flips so
// drawing continues on the buffer that is not being streamed.
type framebuffer struct {
	lcd    *spiPanel
	cfg    hal.PanelConfig
	stride int
	bufs   [2][]byte
	back   int
}

func newFramebuffer(lcd *spiPanel, cfg hal.PanelConfig) *framebuffer {
	stride := cfg.Width * cfg.Format.BytesPerPixel()
	f := &framebuffer{lcd: lcd, cfg: cfg, stride: stride}
	f.bufs[0] = make([]byte, stride*cfg.Height)
	if cfg.Buffers > 1 {
		f.bufs[1] = make([]byte, stride*cfg.Height)
	}
	return f
}

func (f *framebuffer) Width() int              { return f.cfg.Width }
func (f *framebuffer) Height() int             { return f.cfg.Height }
func (f *framebuffer) Format() hal.PixelFormat { return f.cfg.Format }
func (f *framebuffer) StrideBytes() int        { return f.stride }
func (f *framebuffer) Buffer() []byte          { return f.bufs[f.back] }

func (f *framebuffer) ClearRGB(r, g, b uint8) {
	hal.Fill(f.Buffer(), f.cfg.Format, hal.RGBA(r, g, b))
}

func (f *framebuffer) Present() error {
	front := f.Buffer()
	if err := f.lcd.blit(front, f.cfg.Width, f.cfg.Height, f.cfg.Format); err != nil {
		return err
	}
	if f.bufs[1] != nil {
		f.back ^= 1
		copy(f.bufs[f.back], front)
	}
	return nil
}
