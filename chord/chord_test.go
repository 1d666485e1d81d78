package chord

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestCMajorFromOctaveFour(t *testing.T) {
	s, err := NewScale("C", "major", 4)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(Scale{60, 62, 64, 65, 67, 69, 71, 72, 74, 76, 77, 79, 81, 83}, s)
	assert.Equal(60, s.Pitch(0))
	assert.Equal(60, s.Pitch(14))
	assert.Equal(83, s.Pitch(-1))
}

func TestEnharmonicKeysShareTables(t *testing.T) {
	sharp, err := NewScale("C#", "dorian", 3)
	require.NoError(t, err)
	flat, err := NewScale("Db", "dorian", 3)
	require.NoError(t, err)
	assert.Equal(t, sharp, flat)
	assert.Equal(t, 49, sharp[0])
}

func TestBluesScalesHaveSixDegrees(t *testing.T) {
	for _, name := range []string{"majorBlues", "minorBlues"} {
		s, err := NewScale("A", name, 2)
		require.NoError(t, err)
		assert.Len(t, s, 6*Octaves)
		assert.Equal(t, 45, s[0])
	}
}

func TestStepPitchStacksThirds(t *testing.T) {
	s, err := NewScale("C", "major", 4)
	require.NoError(t, err)

	assert := assert.New(t)
	// C E G
	assert.Equal(60, s.StepPitch(0, 0))
	assert.Equal(64, s.StepPitch(0, 1))
	assert.Equal(67, s.StepPitch(0, 2))
	// wraps at the top of the table
	assert.Equal(60, s.StepPitch(12, 1))
}

func TestUnknownKeyOrScale(t *testing.T) {
	_, err := NewScale("H", "major", 4)
	assert.Error(t, err)
	_, err = NewScale("C", "chromatic", 4)
	assert.Error(t, err)
}

func TestCreateChordKeySortsWithoutMutating(t *testing.T) {
	notes := []int{67, 60, 64}
	assert.Equal(t, "60-64-67", CreateChordKey(notes))
	assert.Equal(t, []int{67, 60, 64}, notes)
	assert.Equal(t, "", CreateChordKey(nil))
}

func TestGetChords(t *testing.T) {
	s := smf.New()
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 64, 100))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(960, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOff(0, 64))
	tr.Add(0, midi.NoteOn(0, 67, 100))
	tr.Add(960, midi.NoteOff(0, 67))
	tr.Close(0)
	require.NoError(t, s.Add(tr))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	parsed, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	chords := GetChords(parsed)
	require.Len(t, chords, 2)

	assert := assert.New(t)
	assert.Equal([]int{60, 64}, chords[0].Notes)
	assert.Equal(int64(0), chords[0].Offset)
	assert.Equal([]int{67}, chords[1].Notes)
	assert.Greater(chords[1].Offset, chords[0].Offset)
}
