package model

import (
	"strings"

	"github.com/jsphweid/evomelody/constants"
	"github.com/pkg/errors"
)

var ErrInvalidParams = errors.New("invalid params")

// Params is everything a run needs to decode genomes and breed new ones.
type Params struct {
	NumBars  int
	NumNotes int
	NumSteps int
	Pauses   bool
	Key      string
	Scale    string
	Root     int

	PopulationSize      int
	NumMutations        int
	MutationProbability float64
	BPM                 int
	MaxRating           int
}

func DefaultParams() Params {
	return Params{
		NumBars:             8,
		NumNotes:            8,
		NumSteps:            1,
		Pauses:              true,
		Key:                 "C",
		Scale:               "major",
		Root:                4,
		PopulationSize:      4,
		NumMutations:        2,
		MutationProbability: 0.5,
		BPM:                 170,
		MaxRating:           constants.DefaultMaxRating,
	}
}

func (p Params) GenomeLength() int {
	return p.NumBars * p.NumNotes * constants.BitsPerNote
}

// NoteLength is the duration of one note slot in quarter notes.
func (p Params) NoteLength() float64 {
	return 4 / float64(p.NumNotes)
}

// Validate checks the params and returns a copy with key and scale names
// normalized to their canonical spelling.
func (p Params) Validate() (Params, error) {
	switch {
	case p.NumBars <= 0:
		return p, errors.Wrapf(ErrInvalidParams, "num bars must be positive, got %d", p.NumBars)
	case p.NumNotes <= 0:
		return p, errors.Wrapf(ErrInvalidParams, "num notes must be positive, got %d", p.NumNotes)
	case p.NumSteps <= 0:
		return p, errors.Wrapf(ErrInvalidParams, "num steps must be positive, got %d", p.NumSteps)
	case p.PopulationSize < 1:
		return p, errors.Wrapf(ErrInvalidParams, "population size must be at least 1, got %d", p.PopulationSize)
	case p.NumMutations < 0:
		return p, errors.Wrapf(ErrInvalidParams, "num mutations must not be negative, got %d", p.NumMutations)
	case p.MutationProbability < 0 || p.MutationProbability > 1:
		return p, errors.Wrapf(ErrInvalidParams, "mutation probability must be within [0, 1], got %v", p.MutationProbability)
	case p.BPM <= 0:
		return p, errors.Wrapf(ErrInvalidParams, "bpm must be positive, got %d", p.BPM)
	case p.MaxRating < 0:
		return p, errors.Wrapf(ErrInvalidParams, "max rating must not be negative, got %d", p.MaxRating)
	}

	key, ok := canonical(constants.Keys, p.Key)
	if !ok {
		return p, errors.Wrapf(ErrInvalidParams, "unsupported key %q", p.Key)
	}
	scale, ok := canonical(constants.Scales, p.Scale)
	if !ok {
		return p, errors.Wrapf(ErrInvalidParams, "unsupported scale %q", p.Scale)
	}
	p.Key = key
	p.Scale = scale
	return p, nil
}

// exact spelling first, then case-insensitive
func canonical(names []string, name string) (string, bool) {
	for _, n := range names {
		if n == name {
			return n, true
		}
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}
