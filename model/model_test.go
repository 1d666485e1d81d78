package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGenome(t *testing.T) {
	g, err := ParseGenome("0000 1000_01,1")
	require.NoError(t, err)
	assert.Equal(t, Genome{0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 1}, g)
	assert.Equal(t, "00001000011", g.String())

	_, err = ParseGenome("0102")
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	g := Genome{1, 0, 1}
	c := g.Clone()
	c[0] = 0
	assert.Equal(t, Genome{1, 0, 1}, g)
	assert.True(t, g.Equal(Genome{1, 0, 1}))
	assert.False(t, g.Equal(c))
	assert.False(t, g.Equal(Genome{1, 0}))
}

func TestDefaultParamsAreValid(t *testing.T) {
	p, err := DefaultParams().Validate()
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(256, p.GenomeLength())
	assert.Equal(0.5, p.NoteLength())
}

func TestValidateNormalizesNames(t *testing.T) {
	p := DefaultParams()
	p.Key = "db"
	p.Scale = "MINORBLUES"
	p, err := p.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Db", p.Key)
	assert.Equal(t, "minorBlues", p.Scale)
}

func TestValidateRejectsMisuse(t *testing.T) {
	cases := map[string]func(p *Params){
		"bars":        func(p *Params) { p.NumBars = 0 },
		"notes":       func(p *Params) { p.NumNotes = -1 },
		"steps":       func(p *Params) { p.NumSteps = 0 },
		"population":  func(p *Params) { p.PopulationSize = 0 },
		"mutations":   func(p *Params) { p.NumMutations = -1 },
		"probability": func(p *Params) { p.MutationProbability = 1.5 },
		"bpm":         func(p *Params) { p.BPM = 0 },
		"rating":      func(p *Params) { p.MaxRating = -1 },
		"key":         func(p *Params) { p.Key = "H" },
		"scale":       func(p *Params) { p.Scale = "chromatic" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := DefaultParams()
			mutate(&p)
			_, err := p.Validate()
			assert.True(t, errors.Is(err, ErrInvalidParams))
		})
	}
}
