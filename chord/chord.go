package chord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Octaves covered by a Scale, starting at its root octave.
const Octaves = 2

var pitchClasses = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3, "E": 4, "F": 5,
	"F#": 6, "Gb": 6, "G": 7, "G#": 8, "Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

var intervals = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minorM":     {0, 2, 3, 5, 7, 9, 11},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"phrygian":   {0, 1, 3, 5, 7, 8, 10},
	"lydian":     {0, 2, 4, 6, 7, 9, 11},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"majorBlues": {0, 2, 3, 4, 7, 9},
	"minorBlues": {0, 3, 5, 6, 7, 10},
}

// Scale maps scale degrees to absolute MIDI pitches.
type Scale []int

// NewScale builds the pitch table for key and scale name. root is the octave
// of the first degree, so key C with root 4 starts at 60.
func NewScale(key, scale string, root int) (Scale, error) {
	pc, ok := pitchClasses[key]
	if !ok {
		return nil, errors.Errorf("unknown key %q", key)
	}
	steps, ok := intervals[scale]
	if !ok {
		return nil, errors.Errorf("unknown scale %q", scale)
	}

	base := pc + (root+1)*12
	res := make(Scale, 0, len(steps)*Octaves)
	for octave := 0; octave < Octaves; octave++ {
		for _, step := range steps {
			res = append(res, base+octave*12+step)
		}
	}
	return res, nil
}

// Pitch wraps degree around the table.
func (s Scale) Pitch(degree int) int {
	n := len(s)
	return s[((degree%n)+n)%n]
}

// StepPitch is the pitch of degree in chord step step. Every step stacks a
// scale-relative third on top of the previous one.
func (s Scale) StepPitch(degree, step int) int {
	return s.Pitch(degree + step*2)
}

func CreateChordKey(notes []int) string {
	sorted := make([]int, len(notes))
	copy(sorted, notes)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, note := range sorted {
		parts[i] = fmt.Sprintf("%v", note)
	}
	return strings.Join(parts, "-")
}

// Chord is the set of notes sounding from Offset on.
type Chord struct {
	// microseconds from the start of the file
	Offset int64
	Notes  []int
}

type reducedEvent struct {
	offset    int64
	isNoteOff bool
	note      int
}

// GetChords replays every note on/off in s and returns one Chord per
// distinct onset time, in time order.
func GetChords(s *smf.SMF) []Chord {
	var reducedEvents []reducedEvent

	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			absTime := s.TimeAt(absTicks)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				reducedEvents = append(reducedEvents, reducedEvent{offset: absTime, note: int(key)})
			case event.Message.GetNoteOff(&channel, &key, &velocity),
				event.Message.GetNoteOn(&channel, &key, &velocity):
				reducedEvents = append(reducedEvents, reducedEvent{offset: absTime, isNoteOff: true, note: int(key)})
			}
		}
	}

	// smaller offsets first, note offs before note ons
	sort.SliceStable(reducedEvents, func(i, j int) bool {
		if reducedEvents[i].offset != reducedEvents[j].offset {
			return reducedEvents[i].offset < reducedEvents[j].offset
		}
		return reducedEvents[i].isNoteOff && !reducedEvents[j].isNoteOff
	})

	timestampToNotes := make(map[int64]map[int]bool)
	pressed := make(map[int]bool)
	for _, evt := range reducedEvents {
		if evt.isNoteOff {
			delete(pressed, evt.note)
		} else {
			pressed[evt.note] = true
		}
		snapshot := make(map[int]bool, len(pressed))
		for k := range pressed {
			snapshot[k] = true
		}
		timestampToNotes[evt.offset] = snapshot
	}

	offsets := make([]int64, 0, len(timestampToNotes))
	for k := range timestampToNotes {
		offsets = append(offsets, k)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	var chords []Chord
	for _, offset := range offsets {
		notes := make([]int, 0, len(timestampToNotes[offset]))
		for note := range timestampToNotes[offset] {
			notes = append(notes, note)
		}
		if len(notes) == 0 {
			continue
		}
		sort.Ints(notes)
		chords = append(chords, Chord{Offset: offset, Notes: notes})
	}
	return chords
}
