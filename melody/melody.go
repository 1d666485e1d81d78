// Package melody turns genomes into playable phrases.
//
// Every BitsPerNote bits of a genome form one note-code, least significant bit
// first. The low three bits pick a scale degree, the high bit marks a pause.
// Runs of the same sounding degree are merged into one longer note. Pauses are
// never merged, not even with each other.
package melody

import (
	"time"

	"github.com/jsphweid/evomelody/chord"
	"github.com/jsphweid/evomelody/constants"
	"github.com/jsphweid/evomelody/genetic"
	"github.com/jsphweid/evomelody/model"
	"github.com/pkg/errors"
)

var ErrMalformedMelody = errors.New("malformed melody")

// Melody holds parallel per-slot sequences. Notes has one pitch sequence per
// chord step; Velocity and Beat are shared by all steps.
type Melody struct {
	Notes    [][]int
	Velocity []uint8
	// quarter notes
	Beat []float64
}

// Len is the number of slots.
func (m Melody) Len() int {
	return len(m.Beat)
}

// Duration in quarter notes.
func (m Melody) Duration() float64 {
	var total float64
	for _, b := range m.Beat {
		total += b
	}
	return total
}

func (m Melody) Validate() error {
	if len(m.Velocity) != len(m.Beat) {
		return errors.Wrapf(ErrMalformedMelody, "%d velocities for %d beats", len(m.Velocity), len(m.Beat))
	}
	for step, notes := range m.Notes {
		if len(notes) != len(m.Beat) {
			return errors.Wrapf(ErrMalformedMelody, "step %d has %d notes for %d beats", step, len(notes), len(m.Beat))
		}
	}
	return nil
}

// IntFromBits reads bits least significant first.
func IntFromBits(bits []uint8) int {
	var res int
	for i, bit := range bits {
		res += int(bit) << i
	}
	return res
}

// NoteCodes slices g into the note-codes of p. With pauses disabled every
// code is folded below the pause threshold.
func NoteCodes(g model.Genome, p model.Params) ([]int, error) {
	if p.NumBars < 0 || p.NumNotes <= 0 {
		return nil, errors.Errorf("cannot slice %d bars of %d notes", p.NumBars, p.NumNotes)
	}
	total := p.NumBars * p.NumNotes
	if len(g) < total*constants.BitsPerNote {
		return nil, errors.Wrapf(genetic.ErrInvalidGenomeLength, "need %d bits for %d notes, got %d", total*constants.BitsPerNote, total, len(g))
	}

	codes := make([]int, total)
	for i := range codes {
		code := IntFromBits(g[i*constants.BitsPerNote : (i+1)*constants.BitsPerNote])
		if !p.Pauses {
			code %= constants.PauseThreshold
		}
		codes[i] = code
	}
	return codes, nil
}

type slot struct {
	degree int
	pause  bool
	beat   float64
}

func mergeSlots(codes []int, noteLength float64) []slot {
	var slots []slot
	for _, code := range codes {
		if code >= constants.PauseThreshold {
			slots = append(slots, slot{pause: true, beat: noteLength})
			continue
		}
		// only sounding slots extend. Degree 0 after a pause starts its own slot
		// even though the pause's zero degree would compare equal.
		if n := len(slots); n > 0 && !slots[n-1].pause && slots[n-1].degree == code {
			slots[n-1].beat += noteLength
			continue
		}
		slots = append(slots, slot{degree: code, beat: noteLength})
	}
	return slots
}

// Decode realizes g as a Melody. The same genome and params always produce
// the same Melody.
func Decode(g model.Genome, p model.Params) (Melody, error) {
	if p.NumSteps < 0 {
		return Melody{}, errors.Errorf("num steps must not be negative, got %d", p.NumSteps)
	}
	codes, err := NoteCodes(g, p)
	if err != nil {
		return Melody{}, err
	}
	scale, err := chord.NewScale(p.Key, p.Scale, p.Root)
	if err != nil {
		return Melody{}, err
	}

	slots := mergeSlots(codes, p.NoteLength())

	m := Melody{
		Notes:    make([][]int, p.NumSteps),
		Velocity: make([]uint8, len(slots)),
		Beat:     make([]float64, len(slots)),
	}
	for i, s := range slots {
		m.Beat[i] = s.beat
		if !s.pause {
			m.Velocity[i] = constants.SoundingVelocity
		}
	}
	for step := range m.Notes {
		notes := make([]int, len(slots))
		for i, s := range slots {
			if !s.pause {
				notes[i] = scale.StepPitch(s.degree, step)
			}
		}
		m.Notes[step] = notes
	}

	if err := m.Validate(); err != nil {
		return Melody{}, err
	}
	return m, nil
}

// Event is one slot of one voice, ready for a player.
type Event struct {
	Pitch    int
	Velocity uint8
	Duration time.Duration
}

// Voices converts the melody into one event list per chord step at bpm.
func (m Melody) Voices(bpm int) [][]Event {
	beat := time.Minute / time.Duration(bpm)
	voices := make([][]Event, len(m.Notes))
	for step, notes := range m.Notes {
		events := make([]Event, len(notes))
		for i, pitch := range notes {
			events[i] = Event{
				Pitch:    pitch,
				Velocity: m.Velocity[i],
				Duration: time.Duration(m.Beat[i] * float64(beat)),
			}
		}
		voices[step] = events
	}
	return voices
}

// ChordKeys labels each sounding slot with the pitches of all its steps.
// Pauses get an empty label.
func (m Melody) ChordKeys() []string {
	keys := make([]string, m.Len())
	for i := range keys {
		if m.Velocity[i] == 0 {
			continue
		}
		notes := make([]int, 0, len(m.Notes))
		for _, step := range m.Notes {
			notes = append(notes, step[i])
		}
		keys[i] = chord.CreateChordKey(notes)
	}
	return keys
}
