// Package genetic holds the bit-string operators used to breed melodies:
// random generation, roulette selection, single-point crossover and bit-flip
// mutation. All randomness comes from the caller's *rand.Rand.
package genetic

import (
	"math/rand"

	"github.com/jsphweid/evomelody/model"
	"github.com/pkg/errors"
)

var ErrInvalidGenomeLength = errors.New("invalid genome length")

// Generate returns a genome of length uniformly random bits.
func Generate(rng *rand.Rand, length int) model.Genome {
	g := make(model.Genome, length)
	for i := range g {
		g[i] = uint8(rng.Intn(2))
	}
	return g
}

// GeneratePopulation seeds size genomes of the given length.
func GeneratePopulation(rng *rand.Rand, size, length int) []model.Genome {
	population := make([]model.Genome, size)
	for i := range population {
		population[i] = Generate(rng, length)
	}
	return population
}

// SelectPair draws two genomes with replacement, each with probability
// proportional to its weight. weights[i] belongs to population[i]. Negative
// weights count as 0, and when every weight is 0 both draws are uniform.
func SelectPair(rng *rand.Rand, population []model.Genome, weights []int) (model.Genome, model.Genome, error) {
	if len(population) == 0 {
		return nil, nil, errors.New("cannot select from an empty population")
	}
	if len(weights) != len(population) {
		return nil, nil, errors.Errorf("got %d weights for %d genomes", len(weights), len(population))
	}

	var total int
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}

	pick := func() model.Genome {
		if total == 0 {
			return population[rng.Intn(len(population))]
		}
		spin := rng.Intn(total)
		for i, w := range weights {
			if w <= 0 {
				continue
			}
			if spin < w {
				return population[i]
			}
			spin -= w
		}
		// unreachable while spin < total
		return population[len(population)-1]
	}

	return pick(), pick(), nil
}

// Crossover cuts both parents at one random point in [1, len-1] and swaps tails.
func Crossover(rng *rand.Rand, a, b model.Genome) (model.Genome, model.Genome, error) {
	if err := checkCrossover(a, b); err != nil {
		return nil, nil, err
	}
	cut := 1 + rng.Intn(len(a)-1)
	return CrossoverAt(a, b, cut)
}

// CrossoverAt is Crossover with a fixed cut point.
func CrossoverAt(a, b model.Genome, cut int) (model.Genome, model.Genome, error) {
	if err := checkCrossover(a, b); err != nil {
		return nil, nil, err
	}
	if cut < 1 || cut > len(a)-1 {
		return nil, nil, errors.Errorf("cut %d outside [1, %d]", cut, len(a)-1)
	}

	childA := make(model.Genome, 0, len(a))
	childA = append(childA, a[:cut]...)
	childA = append(childA, b[cut:]...)

	childB := make(model.Genome, 0, len(b))
	childB = append(childB, b[:cut]...)
	childB = append(childB, a[cut:]...)
	return childA, childB, nil
}

func checkCrossover(a, b model.Genome) error {
	if len(a) != len(b) {
		return errors.Wrapf(ErrInvalidGenomeLength, "parents differ in length: %d vs %d", len(a), len(b))
	}
	if len(a) < 2 {
		return errors.Wrapf(ErrInvalidGenomeLength, "need at least 2 bits to cross over, got %d", len(a))
	}
	return nil
}

// Mutate runs num trials on a copy of g. Each trial picks a random index and
// flips it with the given probability. The same index can be picked twice.
func Mutate(rng *rand.Rand, g model.Genome, num int, probability float64) model.Genome {
	res := g.Clone()
	if len(res) == 0 {
		return res
	}
	for i := 0; i < num; i++ {
		index := rng.Intn(len(res))
		if rng.Float64() < probability {
			res[index] = 1 - res[index]
		}
	}
	return res
}
