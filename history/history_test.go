package history

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jsphweid/evomelody/evolution"
	"github.com/jsphweid/evomelody/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ranked(scores ...int) []evolution.Scored {
	res := make([]evolution.Scored, len(scores))
	for i, score := range scores {
		res[i] = evolution.Scored{ID: uuid.New(), Genome: model.Genome{uint8(i % 2), 1}, Score: score}
	}
	return res
}

func TestMemoryStoreRecordsEntries(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore("memory", "")
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx))

	first := ranked(5, 3, 0)
	require.NoError(t, store.RecordGeneration(ctx, 0, first))
	require.NoError(t, store.RecordGeneration(ctx, 1, ranked(4, 4)))

	entries, err := store.Entries(ctx)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Len(entries, 5)
	assert.Equal(Entry{Generation: 0, Rank: 0, ID: first[0].ID.String(), Genome: "01", Score: 5}, entries[0])
	assert.Equal(1, entries[4].Generation)
	assert.Equal(1, entries[4].Rank)
	assert.NoError(CloseIfSupported(store))
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	assert.Error(t, store.RecordGeneration(context.Background(), 0, ranked(1)))
}

func TestUnknownBackend(t *testing.T) {
	_, err := NewStore("dynamodb", "")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	entries := append(toEntries(1, ranked(2, 2)), toEntries(0, ranked(5, 1, 0))...)
	summaries := Summarize(entries)
	require.Len(t, summaries, 2)

	assert := assert.New(t)
	assert.Equal(Summary{Generation: 0, Size: 3, Best: 5, Worst: 0, Mean: 2}, summaries[0])
	assert.Equal(Summary{Generation: 1, Size: 2, Best: 2, Worst: 2, Mean: 2}, summaries[1])
	assert.Empty(Summarize(nil))
}
