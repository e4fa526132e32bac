// Package regbus is an in-memory I²C bus populated with register-file targets.
//
// It implements tinygo drivers.I2C so real drivers run unmodified against it:
// the simulated host board uses it as its shared bus and driver tests use it
// as their transport double.
package regbus

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

// ErrNoDevice is returned when no target acknowledges the address.
var ErrNoDevice = errors.New("regbus: no device at address")

var _ drivers.I2C = (*Bus)(nil)

// Tx records one completed transaction.
type Tx struct {
	Addr uint16
	W    []byte
	Rn   int
}

// Bus routes transactions to targets by 7-bit address.
type Bus struct {
	mu   sync.Mutex
	devs map[uint16]*Target
	log  []Tx
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{devs: make(map[uint16]*Target)}
}

// Attach places t at addr, replacing any previous target.
func (b *Bus) Attach(addr uint16, t *Target) *Target {
	b.mu.Lock()
	b.devs[addr] = t
	b.mu.Unlock()
	return t
}

// Detach removes the target at addr so later transactions NACK.
func (b *Bus) Detach(addr uint16) {
	b.mu.Lock()
	delete(b.devs, addr)
	b.mu.Unlock()
}

// Target returns the target at addr, if any.
func (b *Bus) Target(addr uint16) (*Target, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.devs[addr]
	return t, ok
}

// Log returns a copy of all transactions seen so far.
func (b *Bus) Log() []Tx {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Tx(nil), b.log...)
}

// Tx implements drivers.I2C. One transaction is in flight at a time.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.log = append(b.log, Tx{Addr: addr, W: append([]byte(nil), w...), Rn: len(r)})

	t, ok := b.devs[addr]
	if !ok || t == nil {
		return ErrNoDevice
	}
	return t.tx(w, r)
}

// Target is a register file addressed by a big-endian pointer of PtrWidth
// bytes, where each register holds RegWidth bytes. Multi-register reads and
// writes auto-increment the pointer.
type Target struct {
	ptrWidth int
	regWidth int

	ptr  uint16
	regs map[uint16][]byte

	// OnWrite runs after a register is written, with the target lock held by
	// the bus; it may call Set/Get.
	OnWrite func(t *Target, reg uint16, val []byte)
	// OnRead runs before a read starting at reg is served.
	OnRead func(t *Target, reg uint16)
	// Fail, when set, is returned by every transaction.
	Fail error
}

// NewTarget returns a register file with the given pointer and register widths.
func NewTarget(ptrWidth, regWidth int) *Target {
	if ptrWidth < 1 {
		ptrWidth = 1
	}
	if ptrWidth > 2 {
		ptrWidth = 2
	}
	if regWidth < 1 {
		regWidth = 1
	}
	return &Target{ptrWidth: ptrWidth, regWidth: regWidth, regs: make(map[uint16][]byte)}
}

// Set stores val (truncated or zero-padded to the register width) at reg.
func (t *Target) Set(reg uint16, val ...byte) {
	v := make([]byte, t.regWidth)
	copy(v, val)
	t.regs[reg] = v
}

// SetWord stores a big-endian 16-bit value at reg.
func (t *Target) SetWord(reg uint16, val uint16) {
	t.Set(reg, byte(val>>8), byte(val))
}

// Get returns a copy of the register contents (zero if never written).
func (t *Target) Get(reg uint16) []byte {
	v := make([]byte, t.regWidth)
	copy(v, t.regs[reg])
	return v
}

// Word returns the big-endian 16-bit value at reg.
func (t *Target) Word(reg uint16) uint16 {
	v := t.Get(reg)
	if len(v) < 2 {
		return uint16(v[0])
	}
	return uint16(v[0])<<8 | uint16(v[1])
}

func (t *Target) tx(w, r []byte) error {
	if t.Fail != nil {
		return t.Fail
	}
	if len(w) >= t.ptrWidth {
		var p uint16
		for i := 0; i < t.ptrWidth; i++ {
			p = p<<8 | uint16(w[i])
		}
		t.ptr = p
		w = w[t.ptrWidth:]
	}

	reg := t.ptr
	for len(w) > 0 {
		n := t.regWidth
		if n > len(w) {
			n = len(w)
		}
		t.Set(reg, w[:n]...)
		if t.OnWrite != nil {
			t.OnWrite(t, reg, t.Get(reg))
		}
		w = w[n:]
		reg++
	}

	reg = t.ptr
	if len(r) > 0 && t.OnRead != nil {
		t.OnRead(t, reg)
	}
	for off := 0; off < len(r); reg++ {
		off += copy(r[off:], t.Get(reg))
	}
	return nil
}
