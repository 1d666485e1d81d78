package midi

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/jsphweid/evomelody/file"
	"github.com/jsphweid/evomelody/melody"
	"github.com/jsphweid/evomelody/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const TrackName = "Sample Track"

var Resolution = smf.MetricTicks(960)

func ReadMidiFile(path string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			s = &blank
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		return &blank, errors.Wrap(err, "error reading midi file")
	}

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, errors.Wrap(err, "error parsing midi file")
	}

	return res, nil
}

func toTicks(quarters float64) uint32 {
	return uint32(math.Round(quarters * float64(Resolution.Ticks4th())))
}

// NewSMF renders m as a single-track file. Every chord step sounds on channel
// 0; pauses only advance time.
func NewSMF(m melody.Melody, bpm int) (*smf.SMF, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(TrackName))
	tr.Add(0, smf.MetaTempo(float64(bpm)))

	var last uint32
	var position float64
	for i, vel := range m.Velocity {
		start := toTicks(position)
		position += m.Beat[i]
		end := toTicks(position)
		if vel == 0 {
			continue
		}
		for step, notes := range m.Notes {
			if notes[i] < 0 || notes[i] > 127 {
				return nil, errors.Errorf("step %d slot %d: pitch %d outside the MIDI range", step, i, notes[i])
			}
			tr.Add(start-last, midi.NoteOn(0, uint8(notes[i]), vel))
			last = start
		}
		for _, notes := range m.Notes {
			tr.Add(end-last, midi.NoteOff(0, uint8(notes[i])))
			last = end
		}
	}
	tr.Close(toTicks(position) - last)

	s := smf.New()
	s.TimeFormat = Resolution
	if err := s.Add(tr); err != nil {
		return nil, errors.Wrap(err, "could not add track")
	}
	return s, nil
}

func WriteMelody(w io.Writer, m melody.Melody, bpm int) error {
	s, err := NewSMF(m, bpm)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "could not write midi")
	}
	return nil
}

// WriteMelodyFile writes m to path, creating parent directories.
func WriteMelodyFile(path string, m melody.Melody, bpm int) error {
	s, err := NewSMF(m, bpm)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return errors.Wrapf(err, "could not create dir for %s", path)
	}
	if err := s.WriteFile(path); err != nil {
		return errors.Wrapf(err, "could not write %s", path)
	}
	return nil
}

// Exporter saves every genome of a generation under RunDir.
type Exporter struct {
	RunDir string
	Params model.Params
}

func (e Exporter) ExportGeneration(ctx context.Context, generation int, ranked []model.Genome) error {
	for i, g := range ranked {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := melody.Decode(g, e.Params)
		if err != nil {
			return errors.Wrapf(err, "generation %d genome %d", generation, i)
		}
		path := file.GenomePath(e.RunDir, generation, e.Params.Scale, e.Params.Key, i)
		if err := WriteMelodyFile(path, m, e.Params.BPM); err != nil {
			return err
		}
	}
	return nil
}
