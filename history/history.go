// Package history keeps the ranked ratings of every generation in a run.
// It is an export of what happened, never read back to resume a run.
package history

import (
	"context"
	"sort"

	"github.com/jsphweid/evomelody/evolution"
	"github.com/pkg/errors"
)

type Entry struct {
	Generation int
	Rank       int
	ID         string
	Genome     string
	Score      int
}

// Store records generations and lists what it recorded.
type Store interface {
	Init(ctx context.Context) error
	RecordGeneration(ctx context.Context, generation int, ranked []evolution.Scored) error
	Entries(ctx context.Context) ([]Entry, error)
}

func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, errors.Errorf("unsupported history backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

func toEntries(generation int, ranked []evolution.Scored) []Entry {
	entries := make([]Entry, len(ranked))
	for i, s := range ranked {
		entries[i] = Entry{
			Generation: generation,
			Rank:       i,
			ID:         s.ID.String(),
			Genome:     s.Genome.String(),
			Score:      s.Score,
		}
	}
	return entries
}

// Summary is the score spread of one generation.
type Summary struct {
	Generation int
	Size       int
	Best       int
	Worst      int
	Mean       float64
}

func Summarize(entries []Entry) []Summary {
	byGeneration := make(map[int][]int)
	for _, e := range entries {
		byGeneration[e.Generation] = append(byGeneration[e.Generation], e.Score)
	}

	res := make([]Summary, 0, len(byGeneration))
	for generation, scores := range byGeneration {
		s := Summary{Generation: generation, Size: len(scores), Best: scores[0], Worst: scores[0]}
		var total int
		for _, score := range scores {
			total += score
			if score > s.Best {
				s.Best = score
			}
			if score < s.Worst {
				s.Worst = score
			}
		}
		s.Mean = float64(total) / float64(len(scores))
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Generation < res[j].Generation })
	return res
}
