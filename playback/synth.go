// Package playback realizes decoded melodies as sound, either through the
// speaker with a small sine synth or by sending notes to a MIDI output port.
package playback

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/jsphweid/evomelody/melody"
	"github.com/pkg/errors"
)

const DefaultSampleRate = beep.SampleRate(44100)

// voice envelope, in seconds except for sustain
const (
	attack  = 0.001
	decay   = 0.05
	sustain = 0.5
	release = 0.005
)

func NoteToFreq(pitch int) float64 {
	return 440.0 * math.Pow(2.0, float64(pitch-69)/12.0)
}

func envelope(t, dur float64) float64 {
	var level float64
	switch {
	case t < attack:
		level = t / attack
	case t < attack+decay:
		level = 1 - (1-sustain)*(t-attack)/decay
	default:
		level = sustain
	}
	if left := dur - t; left < release {
		level *= math.Max(left, 0) / release
	}
	return level
}

// voice streams one chord step of a melody.
type voice struct {
	sr     beep.SampleRate
	events []melody.Event
	gain   float64

	idx   int
	pos   int
	phase float64
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if v.idx >= len(v.events) {
			return n, n > 0
		}
		ev := v.events[v.idx]
		length := v.sr.N(ev.Duration)
		if v.pos >= length {
			v.idx++
			v.pos = 0
			continue
		}

		var s float64
		if ev.Velocity > 0 {
			t := v.sr.D(v.pos).Seconds()
			s = math.Sin(2*math.Pi*v.phase) * envelope(t, ev.Duration.Seconds()) * float64(ev.Velocity) / 127 * v.gain
			v.phase += NoteToFreq(ev.Pitch) / float64(v.sr)
			if v.phase >= 1 {
				v.phase--
			}
		}
		samples[n][0] = s
		samples[n][1] = s
		v.pos++
		n++
	}
	return n, true
}

func (v *voice) Err() error {
	return nil
}

// Synth plays melodies through the default audio device.
type Synth struct {
	SampleRate beep.SampleRate
	Metronome  bool
	Logger     *slog.Logger

	once    sync.Once
	ready   bool
	initErr error
}

func NewSynth(metronome bool, logger *slog.Logger) *Synth {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synth{SampleRate: DefaultSampleRate, Metronome: metronome, Logger: logger}
}

// Streamer renders m at bpm. The melody plays once; with Metronome set the
// clicks keep going until the streamer is cleared.
func (s *Synth) Streamer(m melody.Melody, bpm int) beep.Streamer {
	voices := m.Voices(bpm)
	streamers := make([]beep.Streamer, 0, len(voices)+1)
	for _, events := range voices {
		streamers = append(streamers, &voice{
			sr:     s.SampleRate,
			events: events,
			gain:   0.5 / float64(len(voices)),
		})
	}
	if s.Metronome {
		streamers = append(streamers, NewMetronome(s.SampleRate, bpm))
	}
	return beep.Mix(streamers...)
}

func (s *Synth) init() error {
	s.once.Do(func() {
		s.initErr = speaker.Init(s.SampleRate, s.SampleRate.N(time.Second/10))
		if s.initErr != nil {
			s.initErr = errors.Wrap(s.initErr, "could not initialize speaker")
			return
		}
		s.ready = true
	})
	return s.initErr
}

func (s *Synth) Play(ctx context.Context, m melody.Melody, bpm int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.init(); err != nil {
		return err
	}
	s.Logger.Debug("playing melody", "slots", m.Len(), "steps", len(m.Notes), "bpm", bpm)
	speaker.Play(s.Streamer(m, bpm))
	return nil
}

func (s *Synth) Stop() error {
	if !s.ready {
		return nil
	}
	speaker.Clear()
	return nil
}
