//go:build !tinygo && cgo

package desktop

import (
	"math"
	"sync"

	"tab5/hal"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleRate is the output rate of the desktop codec.
const SampleRate = 48000

// Ebiten allows one audio context per process.
var (
	audioOnce sync.Once
	audioCtx  *audio.Context
)

func audioContext() *audio.Context {
	audioOnce.Do(func() { audioCtx = audio.NewContext(SampleRate) })
	return audioCtx
}

// chime stands in for the ES8388: Init opens the audio output and plays a
// short tone so a working codec stage is audible.
type chime struct {
	mu     sync.Mutex
	player *audio.Player
}

// NewChime returns a codec backed by the desktop audio output.
func NewChime() hal.Codec { return &chime{} }

func (c *chime) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil {
		c.player.Rewind()
		c.player.Play()
		return nil
	}
	c.player = audioContext().NewPlayerFromBytes(tone(880, SampleRate/8, 0.2))
	c.player.Play()
	return nil
}

// tone renders n frames of a sine at hz as 16-bit little-endian stereo,
// with a linear fade out.
func tone(hz float64, n int, vol float64) []byte {
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		amp := vol * float64(n-i) / float64(n)
		s := int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*hz*float64(i)/SampleRate))
		j := i * 4
		out[j+0] = byte(s)
		out[j+1] = byte(s >> 8)
		out[j+2] = byte(s)
		out[j+3] = byte(s >> 8)
	}
	return out
}
