package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKeysIsSorted(t *testing.T) {
	m := map[int]string{3: "c", 1: "a", 2: "b"}
	assert.Equal(t, []int{1, 2, 3}, GetKeys(m))
}

func TestSumAndMean(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(int64(10), Sum([]int{1, 2, 3, 4}))
	assert.Equal(int64(0), Sum([]int{}))
	assert.Equal(2.5, Mean([]int{1, 2, 3, 4}))
	assert.Equal(0.0, Mean([]int{}))
}

func TestMin(t *testing.T) {
	assert.Equal(t, 2, Min(2, 7))
	assert.Equal(t, -1, Min(3, -1))
}

func TestGatherAllMidiPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0/a.mid", "0/b.midi", "1/c.mid", "1/notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
		require.NoError(t, os.WriteFile(path, []byte{}, 0666))
	}

	paths, err := GatherAllMidiPaths(dir, 0)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "0/a.mid"), paths[0])

	limited, err := GatherAllMidiPaths(dir, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGatherAllMidiPathsMissingDir(t *testing.T) {
	_, err := GatherAllMidiPaths(filepath.Join(t.TempDir(), "nope"), 0)
	assert.Error(t, err)
}
