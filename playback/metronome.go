package playback

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	clickLength  = 250 * time.Millisecond
	accentFreq   = 660.0
	regularFreq  = 440.0
	beatsPerBar  = 4
	clickGain    = 0.25
	clickSamples = 512.0
)

// click envelope breakpoints over a 512 point table
var clickTable = [][2]float64{{0, 0}, {50, 1}, {200, 0.3}, {500, 0}}

func clickLevel(t float64) float64 {
	x := t / clickLength.Seconds() * clickSamples
	for i := 1; i < len(clickTable); i++ {
		a, b := clickTable[i-1], clickTable[i]
		if x < b[0] {
			return a[1] + (b[1]-a[1])*(x-a[0])/(b[0]-a[0])
		}
	}
	return 0
}

// Metronome clicks every beat forever, accenting the first beat of a bar.
type Metronome struct {
	sr       beep.SampleRate
	beatSize int
	pos      int
	beat     int
	phase    float64
}

func NewMetronome(sr beep.SampleRate, bpm int) *Metronome {
	return &Metronome{sr: sr, beatSize: sr.N(time.Minute / time.Duration(bpm))}
}

func (m *Metronome) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if m.pos >= m.beatSize {
			m.pos = 0
			m.phase = 0
			m.beat = (m.beat + 1) % beatsPerBar
		}
		freq := regularFreq
		if m.beat == 0 {
			freq = accentFreq
		}
		s := math.Sin(2*math.Pi*m.phase) * clickLevel(m.sr.D(m.pos).Seconds()) * clickGain
		m.phase += freq / float64(m.sr)
		if m.phase >= 1 {
			m.phase--
		}
		samples[i][0] = s
		samples[i][1] = s
		m.pos++
	}
	return len(samples), true
}

func (m *Metronome) Err() error {
	return nil
}
