package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jsphweid/evomelody/constants"
	"github.com/jsphweid/evomelody/evolution"
	"github.com/jsphweid/evomelody/file"
	"github.com/jsphweid/evomelody/history"
	"github.com/jsphweid/evomelody/judge"
	"github.com/jsphweid/evomelody/midi"
	"github.com/jsphweid/evomelody/model"
	"github.com/jsphweid/evomelody/playback"
	"github.com/jsphweid/evomelody/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

type evolveOptions struct {
	params    model.Params
	seed      int64
	out       string
	judge     string
	addr      string
	player    string
	midiPort  string
	metronome bool
	history   string
}

var evolveOpts = evolveOptions{params: model.DefaultParams()}

func init() {
	rootCmd.AddCommand(evolveCmd)

	addMelodyFlags(evolveCmd, &evolveOpts.params)
	f := evolveCmd.Flags()
	f.IntVar(&evolveOpts.params.PopulationSize, "population-size", evolveOpts.params.PopulationSize, "genomes per generation")
	f.IntVar(&evolveOpts.params.NumMutations, "num-mutations", evolveOpts.params.NumMutations, "mutation attempts per child")
	f.Float64Var(&evolveOpts.params.MutationProbability, "mutation-probability", evolveOpts.params.MutationProbability, "chance each attempt flips a bit")
	f.IntVar(&evolveOpts.params.MaxRating, "max-rating", evolveOpts.params.MaxRating, "highest accepted rating")
	f.Int64Var(&evolveOpts.seed, "seed", 0, "random seed, 0 picks one from the clock")
	f.StringVar(&evolveOpts.out, "out", "", "export dir (default $EVOMELODY_OUT or ./out)")
	f.StringVar(&evolveOpts.judge, "judge", "console", "console or http")
	f.StringVar(&evolveOpts.addr, "addr", ":8080", "listen address of the http judge")
	f.StringVar(&evolveOpts.player, "player", "synth", "synth, midi or none")
	f.StringVar(&evolveOpts.midiPort, "midi-port", "", "midi output port (default $EVOMELODY_MIDI_PORT or the first port)")
	f.BoolVar(&evolveOpts.metronome, "metronome", false, "click along while rating")
	f.StringVar(&evolveOpts.history, "history", "memory", "memory or sqlite")
}

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Runs an interactive evolution",
	Long: `Seeds a random population and plays every melody for you to rate. The
two best survive each generation and every generation is exported as MIDI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return evolve(cmd.Context(), evolveOpts)
	},
}

func newPlayer(opts evolveOptions) (evolution.Player, func() error, error) {
	nop := func() error { return nil }
	switch opts.player {
	case "synth":
		return playback.NewSynth(opts.metronome, logger), nop, nil
	case "midi":
		port := opts.midiPort
		if port == "" {
			port = constants.GetMidiPort()
		}
		out, err := playback.OpenMidiOut(port, logger)
		if err != nil {
			return nil, nil, err
		}
		return out, out.Close, nil
	case "none":
		return nil, nop, nil
	default:
		return nil, nil, errors.Errorf("unknown player %q", opts.player)
	}
}

func evolve(ctx context.Context, opts evolveOptions) error {
	params, err := opts.params.Validate()
	if err != nil {
		return err
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	outDir := opts.out
	if outDir == "" {
		outDir = constants.GetOutputDir()
	}
	runDir := filepath.Join(outDir, file.RunFolder(time.Now()))
	if err := util.EnsureDir(runDir); err != nil {
		return err
	}
	logger.Info("starting run", "dir", runDir, "seed", seed, "key", params.Key, "scale", params.Scale)

	store, err := history.NewStore(opts.history, filepath.Join(runDir, constants.HistoryFilename))
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return errors.Wrap(err, "could not open history")
	}
	defer history.CloseIfSupported(store)

	player, closePlayer, err := newPlayer(opts)
	if err != nil {
		return err
	}
	defer closePlayer()

	var j evolution.Judge
	switch opts.judge {
	case "console":
		j = judge.NewConsole(os.Stdin, os.Stdout, params.MaxRating)
	case "http":
		h := judge.NewHTTP(params.MaxRating, params.BPM, logger)
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			// the run cannot go on without its judge
			if err := h.ListenAndServe(ctx, opts.addr); err != nil {
				logger.Error("judge server stopped", "err", err)
				cancel()
			}
		}()
		j = h
	default:
		return errors.Errorf("unknown judge %q", opts.judge)
	}

	engine, err := evolution.New(evolution.Config{
		Params:   params,
		Rand:     rand.New(rand.NewSource(seed)),
		Judge:    j,
		Player:   player,
		Exporter: midi.Exporter{RunDir: runDir, Params: params},
		Recorder: store,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if err := engine.Run(ctx); err != nil {
		return err
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		return err
	}
	printSummaries(os.Stdout, history.Summarize(entries))
	fmt.Println(dimStyle.Render("saved to " + runDir))
	return nil
}
