package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsphweid/evomelody/melody"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

const midiChannel = 0

// MidiOut sends melodies to a MIDI output port, one goroutine per melody.
type MidiOut struct {
	send   func(msg midi.Message) error
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// OpenMidiOut connects to the named output port, or the first one when name
// is empty. A driver must be registered by the caller.
func OpenMidiOut(name string, logger *slog.Logger) (*MidiOut, error) {
	var (
		out drivers.Out
		err error
	)
	if name == "" {
		out, err = midi.OutPort(0)
	} else {
		out, err = midi.FindOutPort(name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "can't find midi output %q", name)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, errors.Wrap(err, "could not open midi output")
	}
	if logger != nil {
		logger.Debug("opened midi output", "port", out.String())
	}
	return NewMidiOut(send, logger), nil
}

func NewMidiOut(send func(msg midi.Message) error, logger *slog.Logger) *MidiOut {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	done := make(chan struct{})
	close(done)
	return &MidiOut{send: send, logger: logger, done: done}
}

func (p *MidiOut) Play(ctx context.Context, m melody.Melody, bpm int) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := p.Stop(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	playCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.play(playCtx, m, bpm, p.done)
	return nil
}

func (p *MidiOut) play(ctx context.Context, m melody.Melody, bpm int, done chan struct{}) {
	defer close(done)
	quarter := time.Minute / time.Duration(bpm)

	for slot := 0; slot < m.Len(); slot++ {
		var sounding []uint8
		if m.Velocity[slot] > 0 {
			for _, step := range m.Notes {
				key := uint8(step[slot])
				if err := p.send(midi.NoteOn(midiChannel, key, m.Velocity[slot])); err != nil {
					p.logger.Warn("could not send note on", "key", key, "err", err)
					continue
				}
				sounding = append(sounding, key)
			}
		}

		timer := time.NewTimer(time.Duration(m.Beat[slot] * float64(quarter)))
		select {
		case <-ctx.Done():
			timer.Stop()
			p.release(sounding)
			return
		case <-timer.C:
		}
		p.release(sounding)
	}
}

func (p *MidiOut) release(keys []uint8) {
	for _, key := range keys {
		if err := p.send(midi.NoteOff(midiChannel, key)); err != nil {
			p.logger.Warn("could not send note off", "key", key, "err", err)
		}
	}
}

// Done is closed once the current melody has finished or been stopped.
func (p *MidiOut) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Stop cuts the current melody short and waits for its notes to be released.
func (p *MidiOut) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done
	return nil
}

func (p *MidiOut) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	midi.CloseDriver()
	return nil
}
