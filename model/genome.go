package model

import (
	"strings"

	"github.com/pkg/errors"
)

// Genome is a fixed-length vector of bits, each element 0 or 1.
type Genome []uint8

func (g Genome) Clone() Genome {
	res := make(Genome, len(g))
	copy(res, g)
	return res
}

func (g Genome) Equal(other Genome) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

func (g Genome) String() string {
	var sb strings.Builder
	sb.Grow(len(g))
	for _, bit := range g {
		if bit == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// ParseGenome reads a string of 0s and 1s. Spaces, underscores and commas are
// ignored so grouped input like "0000 1000" works.
func ParseGenome(s string) (Genome, error) {
	res := make(Genome, 0, len(s))
	for i, r := range s {
		switch r {
		case '0':
			res = append(res, 0)
		case '1':
			res = append(res, 1)
		case ' ', '_', ',', '\t', '\n':
		default:
			return nil, errors.Errorf("invalid bit %q at position %d", r, i)
		}
	}
	return res, nil
}
