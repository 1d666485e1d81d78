package constants

import "os"

func GetOutputDir() string {
	path := os.Getenv("EVOMELODY_OUT")
	if path != "" {
		return path
	}
	return "./out"
}

func GetMidiPort() string {
	return os.Getenv("EVOMELODY_MIDI_PORT")
}

// 3 bits of pitch, 1 bit pause flag
const BitsPerNote = 4

const PauseThreshold = 1 << (BitsPerNote - 1)

const SoundingVelocity = 127

const NumElites = 2

const DefaultMaxRating = 5

const HistoryFilename = "history.db"

var Keys = []string{"C", "C#", "Db", "D", "D#", "Eb", "E", "F", "F#", "Gb", "G", "G#", "Ab", "A", "A#", "Bb", "B"}

var Scales = []string{"major", "minorM", "dorian", "phrygian", "lydian", "mixolydian", "majorBlues", "minorBlues"}
