package midi

import (
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func isEndOfTrack(msg smf.Message) bool {
	return len(msg) >= 2 && msg[0] == 0xFF && msg[1] == 0x2F
}

// Excerpt copies s from fromTicks on, keeping at most maxNotes note ons per
// track. Events before fromTicks other than notes move to the start of the
// excerpt. Notes still sounding when the excerpt ends are released.
func Excerpt(s *smf.SMF, fromTicks uint64, maxNotes int) *smf.SMF {
	res := smf.New()
	res.TimeFormat = s.TimeFormat

	for _, track := range s.Tracks {
		var newTrack smf.Track
		var absTicks, last uint64
		var numNotes int
		sounding := make(map[uint8]bool)

	TrackEventLoop:
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			if isEndOfTrack(evt.Message) {
				break
			}

			var channel, key, velocity uint8
			isNoteOn := evt.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0
			isNoteOff := !isNoteOn && (evt.Message.GetNoteOff(&channel, &key, &velocity) || evt.Message.GetNoteOn(&channel, &key, &velocity))
			if (isNoteOn || isNoteOff) && absTicks < fromTicks {
				continue
			}
			if isNoteOff && !sounding[key] {
				continue
			}
			if isNoteOn && numNotes >= maxNotes {
				break TrackEventLoop
			}

			var pos uint64
			if absTicks > fromTicks {
				pos = absTicks - fromTicks
			}
			newTrack.Add(uint32(pos-last), evt.Message)
			last = pos

			switch {
			case isNoteOn:
				numNotes++
				sounding[key] = true
			case isNoteOff:
				delete(sounding, key)
			}
		}

		for key := range sounding {
			newTrack.Add(0, midi.NoteOff(0, key))
		}
		newTrack.Close(0)
		res.Add(newTrack)
	}

	return res
}
