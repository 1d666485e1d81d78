package evolution

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jsphweid/evomelody/constants"
	"github.com/jsphweid/evomelody/genetic"
	"github.com/jsphweid/evomelody/melody"
	"github.com/jsphweid/evomelody/model"
	"github.com/jsphweid/evomelody/util"
	"github.com/pkg/errors"
)

// Recorder keeps a log of ranked generations.
type Recorder interface {
	RecordGeneration(ctx context.Context, generation int, ranked []Scored) error
}

type Config struct {
	Params model.Params
	// Rand drives every random decision of the run.
	Rand  *rand.Rand
	Judge Judge

	// optional
	Player   Player
	Exporter Exporter
	Recorder Recorder
	Logger   *slog.Logger
	NewID    func() uuid.UUID
}

type Engine struct {
	params   model.Params
	rng      *rand.Rand
	judge    Judge
	player   Player
	exporter Exporter
	recorder Recorder
	logger   *slog.Logger
	newID    func() uuid.UUID

	state      State
	generation int
	population []model.Genome
}

// New validates cfg and seeds a random population.
func New(cfg Config) (*Engine, error) {
	params, err := cfg.Params.Validate()
	if err != nil {
		return nil, err
	}
	if cfg.Rand == nil {
		return nil, errors.New("random source is required")
	}
	if cfg.Judge == nil {
		return nil, errors.New("judge is required")
	}

	e := &Engine{
		params:   params,
		rng:      cfg.Rand,
		judge:    cfg.Judge,
		player:   cfg.Player,
		exporter: cfg.Exporter,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		newID:    cfg.NewID,
	}
	if e.player == nil {
		e.player = nopPlayer{}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.newID == nil {
		e.newID = uuid.New
	}

	e.population = genetic.GeneratePopulation(e.rng, params.PopulationSize, params.GenomeLength())
	e.state = Seeded
	e.logger.Debug("seeded population", "size", params.PopulationSize, "genome_bits", params.GenomeLength())
	return e, nil
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Generation() int {
	return e.generation
}

func (e *Engine) Params() model.Params {
	return e.params
}

// Population returns a copy of the current population.
func (e *Engine) Population() []model.Genome {
	res := make([]model.Genome, len(e.population))
	copy(res, e.population)
	return res
}

// Evaluate shuffles the population and has the judge rate every genome while
// it plays. Scores come back in evaluation order.
func (e *Engine) Evaluate(ctx context.Context) ([]Scored, error) {
	e.state = Evaluating
	e.rng.Shuffle(len(e.population), func(i, j int) {
		e.population[i], e.population[j] = e.population[j], e.population[i]
	})

	scored := make([]Scored, 0, len(e.population))
	for i, g := range e.population {
		if err := ctx.Err(); err != nil {
			e.state = Terminated
			return nil, err
		}
		m, err := melody.Decode(g, e.params)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding genome %d", i)
		}
		c := Candidate{
			ID:         e.newID(),
			Generation: e.generation,
			Index:      i,
			Total:      len(e.population),
			Genome:     g,
			Melody:     m,
		}
		score, err := e.rate(ctx, c)
		if err != nil {
			return nil, err
		}
		scored = append(scored, Scored{ID: c.ID, Genome: g, Score: score})
	}
	return scored, nil
}

func (e *Engine) rate(ctx context.Context, c Candidate) (int, error) {
	if err := e.player.Play(ctx, c.Melody, e.params.BPM); err != nil {
		return 0, errors.Wrap(err, "could not play candidate")
	}
	answer, err := e.judge.Rate(ctx, c)
	stopErr := e.player.Stop()
	if err != nil {
		return 0, errors.Wrap(err, "could not rate candidate")
	}
	if stopErr != nil {
		return 0, errors.Wrap(stopErr, "could not stop playback")
	}

	score, err := ParseRating(answer, e.params.MaxRating)
	if err != nil {
		e.logger.Debug("substituting 0 for rating", "id", c.ID, "err", err)
		return 0, nil
	}
	e.logger.Debug("rated", "generation", c.Generation, "index", c.Index, "id", c.ID, "score", score)
	return score, nil
}

// Reproduce builds the next population from ranked: the top two carry over
// and the rest are mutated children of roulette-selected parents. An odd
// population size drops the last child.
func (e *Engine) Reproduce(ranked []Scored) ([]model.Genome, error) {
	e.state = Reproducing
	if len(ranked) == 0 {
		return nil, errors.New("cannot reproduce an empty population")
	}

	size := e.params.PopulationSize
	elites := util.Min(util.Min(constants.NumElites, len(ranked)), size)

	next := make([]model.Genome, 0, size+1)
	next = append(next, Genomes(ranked[:elites])...)

	parents := Genomes(ranked)
	weights := Scores(ranked)
	for len(next) < size {
		a, b, err := genetic.SelectPair(e.rng, parents, weights)
		if err != nil {
			return nil, err
		}
		childA, childB, err := genetic.Crossover(e.rng, a, b)
		if err != nil {
			return nil, err
		}
		childA = genetic.Mutate(e.rng, childA, e.params.NumMutations, e.params.MutationProbability)
		childB = genetic.Mutate(e.rng, childB, e.params.NumMutations, e.params.MutationProbability)
		next = append(next, childA, childB)
	}
	return next[:size], nil
}

// Step runs one full generation and reports whether the judge wants another.
// A cancelled ctx terminates the engine.
func (e *Engine) Step(ctx context.Context) (cont bool, err error) {
	if e.state == Terminated {
		return false, errors.New("engine is terminated")
	}
	defer func() {
		if err != nil && ctx.Err() != nil {
			e.state = Terminated
		}
	}()

	scored, err := e.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	ranked := Rank(scored)
	e.state = Ranked

	if e.recorder != nil {
		if err := e.recorder.RecordGeneration(ctx, e.generation, ranked); err != nil {
			return false, errors.Wrap(err, "could not record generation")
		}
	}

	next, err := e.Reproduce(ranked)
	if err != nil {
		return false, err
	}
	e.logger.Info("population done", "generation", e.generation, "best", ranked[0].Score, "mean", util.Mean(Scores(ranked)))

	for i, label := range []string{"here is the no1 hit …", "here is the second best …"} {
		if i >= len(ranked) {
			break
		}
		if err := e.showcase(ctx, ranked[i], i, len(ranked), label); err != nil {
			return false, err
		}
	}

	if e.exporter != nil {
		if err := e.exporter.ExportGeneration(ctx, e.generation, Genomes(ranked)); err != nil {
			return false, errors.Wrap(err, "could not export generation")
		}
	}

	cont, err = e.judge.Continue(ctx, e.generation)
	if err != nil {
		return false, err
	}

	e.population = next
	e.generation++
	if !cont {
		e.state = Terminated
		return false, nil
	}
	e.state = Evaluating
	return true, nil
}

func (e *Engine) showcase(ctx context.Context, s Scored, rank, total int, label string) error {
	m, err := melody.Decode(s.Genome, e.params)
	if err != nil {
		return err
	}
	c := Candidate{ID: s.ID, Generation: e.generation, Index: rank, Total: total, Genome: s.Genome, Melody: m}
	if err := e.player.Play(ctx, m, e.params.BPM); err != nil {
		return errors.Wrap(err, "could not play showcase")
	}
	err = e.judge.Acknowledge(ctx, c, label)
	stopErr := e.player.Stop()
	if err != nil {
		return err
	}
	return stopErr
}

// Run steps until the judge stops or something fails.
func (e *Engine) Run(ctx context.Context) error {
	for {
		cont, err := e.Step(ctx)
		if err != nil {
			return err
		}
		if !cont {
			e.logger.Info("run finished", "generations", e.generation)
			return nil
		}
	}
}

type nopPlayer struct{}

func (nopPlayer) Play(context.Context, melody.Melody, int) error { return nil }

func (nopPlayer) Stop() error { return nil }
