package engine

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyterm"
)

// Object is anything a Screen can draw.
type Object interface {
	Draw(d *Display)
}

// Screen is the ordered set of objects drawn on a display.
type Screen struct {
	bg   color.RGBA
	objs []Object
}

func NewScreen() *Screen {
	return &Screen{bg: color.RGBA{A: 0xFF}}
}

func (s *Screen) Background() color.RGBA { return s.bg }

func (s *Screen) SetBackground(c color.RGBA) { s.bg = c }

// Add appends objects; later objects draw on top.
func (s *Screen) Add(objs ...Object) {
	s.objs = append(s.objs, objs...)
}

// Objects returns the objects in draw order.
func (s *Screen) Objects() []Object { return s.objs }

func (s *Screen) draw(d *Display) {
	for _, o := range s.objs {
		o.Draw(d)
	}
}

// Align selects a label's horizontal anchor.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
)

// Label is a single line of text. Y is the top of the line.
type Label struct {
	d      *Display
	font   tinyfont.Fonter
	height int16
	offset int16
	text   string
	color  color.RGBA
	x      int16
	y      int16
	align  Align
	hidden bool
}

// NewLabel adds a label to d's screen. height is the line height and
// offset the baseline distance from the top.
func NewLabel(d *Display, font tinyfont.Fonter, height, offset int16) *Label {
	l := &Label{
		d:      d,
		font:   font,
		height: height,
		offset: offset,
		color:  color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	}
	d.Screen().Add(l)
	d.Invalidate()
	return l
}

func (l *Label) Text() string { return l.text }

func (l *Label) SetText(s string) {
	if s == l.text {
		return
	}
	l.text = s
	l.d.Invalidate()
}

func (l *Label) SetColor(c color.RGBA) {
	l.color = c
	l.d.Invalidate()
}

// SetPos places the label. With AlignCenter, x is ignored and the line is
// centered on the display.
func (l *Label) SetPos(x, y int16, align Align) {
	l.x, l.y, l.align = x, y, align
	l.d.Invalidate()
}

func (l *Label) SetHidden(hidden bool) {
	if hidden != l.hidden {
		l.hidden = hidden
		l.d.Invalidate()
	}
}

// Width returns the rendered width of the current text.
func (l *Label) Width() int16 {
	_, w := tinyfont.LineWidth(l.font, l.text)
	return int16(w)
}

func (l *Label) Draw(d *Display) {
	if l.hidden || l.text == "" || l.font == nil {
		return
	}
	x := l.x
	if l.align == AlignCenter {
		x = (int16(d.Width()) - l.Width()) / 2
	}
	tinyfont.WriteLine(d, l.font, x, l.y+l.offset, l.text, l.color)
}

// Marker is a filled square centered on a point, shown while active.
type Marker struct {
	d      *Display
	size   int16
	color  color.RGBA
	x      int16
	y      int16
	active bool
}

func NewMarker(d *Display, size int16, c color.RGBA) *Marker {
	m := &Marker{d: d, size: size, color: c}
	d.Screen().Add(m)
	return m
}

// MoveTo shows the marker centered on (x, y).
func (m *Marker) MoveTo(x, y int16) {
	m.x, m.y, m.active = x, y, true
	m.d.Invalidate()
}

func (m *Marker) Hide() {
	if m.active {
		m.active = false
		m.d.Invalidate()
	}
}

func (m *Marker) Visible() bool { return m.active }

func (m *Marker) Position() (x, y int16) { return m.x, m.y }

func (m *Marker) Draw(d *Display) {
	if !m.active {
		return
	}
	half := m.size / 2
	_ = d.FillRectangle(m.x-half, m.y-half, m.size, m.size, m.color)
}

// ConsoleConfig is the terminal setup used by a Console.
type ConsoleConfig struct {
	Font       *tinyfont.Font
	FontHeight int16
	FontOffset int16
	Lines      int
}

// Console is a scrolling text region backed by tinyterm. It keeps the last
// Lines lines and replays them on every redraw.
type Console struct {
	d     *Display
	cfg   ConsoleConfig
	view  region
	lines []string
}

func NewConsole(d *Display, x, y, w, h int16, cfg ConsoleConfig) *Console {
	if cfg.Lines <= 0 {
		cfg.Lines = 8
	}
	c := &Console{
		d:    d,
		cfg:  cfg,
		view: region{d: d, x: x, y: y, w: w, h: h},
	}
	d.Screen().Add(c)
	return c
}

func (c *Console) Println(s string) {
	c.lines = append(c.lines, s)
	if n := len(c.lines) - c.cfg.Lines; n > 0 {
		c.lines = append(c.lines[:0], c.lines[n:]...)
	}
	c.d.Invalidate()
}

func (c *Console) Lines() []string { return c.lines }

func (c *Console) Draw(d *Display) {
	if len(c.lines) == 0 || c.cfg.Font == nil {
		return
	}
	c.view.d = d
	t := tinyterm.NewTerminal(&c.view)
	t.Configure(&tinyterm.Config{
		Font:              c.cfg.Font,
		FontHeight:        c.cfg.FontHeight,
		FontOffset:        c.cfg.FontOffset,
		UseSoftwareScroll: true,
	})
	for _, line := range c.lines {
		_, _ = t.Write([]byte(line + "\r\n"))
	}
}

// region is a clipped window onto a Display. Presenting is left to the
// engine, so Display is a no-op.
type region struct {
	d    *Display
	x, y int16
	w, h int16
}

func (r *region) Size() (x, y int16) { return r.w, r.h }

func (r *region) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return
	}
	r.d.SetPixel(r.x+x, r.y+y, c)
}

func (r *region) Display() error { return nil }

func (r *region) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+width, r.w), min(y+height, r.h)
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	return r.d.FillRectangle(r.x+x0, r.y+y0, x1-x0, y1-y0, c)
}

func (r *region) SetScroll(line int16) { _ = line }

func (r *region) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}
