// Package evolution runs the interactive generational loop: shuffle, rate,
// rank, keep the two best and breed the rest of the next population.
package evolution

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jsphweid/evomelody/melody"
	"github.com/jsphweid/evomelody/model"
	"github.com/pkg/errors"
)

var ErrInvalidFitnessInput = errors.New("invalid fitness input")

type State int

const (
	Seeded State = iota
	Evaluating
	Ranked
	Reproducing
	Terminated
)

func (s State) String() string {
	switch s {
	case Seeded:
		return "seeded"
	case Evaluating:
		return "evaluating"
	case Ranked:
		return "ranked"
	case Reproducing:
		return "reproducing"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Candidate is one genome up for rating, with its decoded melody.
type Candidate struct {
	ID         uuid.UUID
	Generation int
	// position in the shuffled evaluation order
	Index  int
	Total  int
	Genome model.Genome
	Melody melody.Melody
}

// Scored pairs a genome with the rating it got in one generation.
type Scored struct {
	ID     uuid.UUID
	Genome model.Genome
	Score  int
}

// Judge is the human in the loop.
type Judge interface {
	// Rate returns the raw answer for c. Anything that does not parse as a
	// rating within range counts as 0.
	Rate(ctx context.Context, c Candidate) (string, error)
	// Acknowledge blocks while the listener hears a showcased candidate.
	Acknowledge(ctx context.Context, c Candidate, label string) error
	Continue(ctx context.Context, generation int) (bool, error)
}

type Player interface {
	Play(ctx context.Context, m melody.Melody, bpm int) error
	Stop() error
}

type Exporter interface {
	ExportGeneration(ctx context.Context, generation int, ranked []model.Genome) error
}

// ParseRating reads a judge answer. Out of range or non-numeric answers
// return ErrInvalidFitnessInput.
func ParseRating(answer string, maxRating int) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidFitnessInput, "%q is not a number", answer)
	}
	if rating < 0 || rating > maxRating {
		return 0, errors.Wrapf(ErrInvalidFitnessInput, "%d is outside [0, %d]", rating, maxRating)
	}
	return rating, nil
}

// Rank sorts by score, best first. Equal scores keep their evaluation order.
func Rank(scored []Scored) []Scored {
	ranked := make([]Scored, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func Genomes(scored []Scored) []model.Genome {
	res := make([]model.Genome, len(scored))
	for i, s := range scored {
		res[i] = s.Genome
	}
	return res
}

func Scores(scored []Scored) []int {
	res := make([]int, len(scored))
	for i, s := range scored {
		res[i] = s.Score
	}
	return res
}
