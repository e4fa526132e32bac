package mcu

import "math"

// CodecSampleRate is the PWM audio update rate.
const CodecSampleRate = 16000

const (
	chimeHz      = 880
	chimeSamples = CodecSampleRate / 10
)

// chimeSample returns sample i of the boot chime: a sine at chimeHz fading
// out over chimeSamples.
func chimeSample(i int) int16 {
	if i < 0 || i >= chimeSamples {
		return 0
	}
	amp := 0.25 * float64(chimeSamples-i) / chimeSamples
	return int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*chimeHz*float64(i)/CodecSampleRate))
}
