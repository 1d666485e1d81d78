package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jsphweid/evomelody/chord"
	"github.com/jsphweid/evomelody/constants"
	"github.com/jsphweid/evomelody/file"
	"github.com/jsphweid/evomelody/history"
	"github.com/jsphweid/evomelody/midi"
	"github.com/jsphweid/evomelody/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [run dir]",
	Short: "Creates a report",
	Long: `Summarizes every generation exported to a run dir. Runs recorded with
--history sqlite also get their ratings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := constants.GetOutputDir()
		if len(args) == 1 {
			dir = args[0]
		}
		return report(cmd, dir)
	},
}

type generationReport struct {
	numFiles  int
	numChords int
	distinct  int
}

func analyzeGeneration(paths []string) (generationReport, error) {
	r := generationReport{numFiles: len(paths)}
	seen := make(map[string]bool)
	for _, path := range paths {
		s, err := midi.ReadMidiFile(path)
		if err != nil {
			return r, err
		}
		for _, c := range chord.GetChords(s) {
			r.numChords++
			seen[chord.CreateChordKey(c.Notes)] = true
		}
	}
	r.distinct = len(seen)
	return r, nil
}

func report(cmd *cobra.Command, dir string) error {
	paths, err := util.GatherAllMidiPaths(dir, 0)
	if err != nil {
		return err
	}
	byGeneration := file.GroupByGeneration(paths)

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s: %d generations, %d melodies", dir, len(byGeneration), len(paths))))
	for _, generation := range util.GetKeys(byGeneration) {
		r, err := analyzeGeneration(byGeneration[generation])
		if err != nil {
			return err
		}
		fmt.Printf("generation %d: %d melodies, %d chords, %d distinct\n", generation, r.numFiles, r.numChords, r.distinct)
	}

	dbPath := filepath.Join(dir, constants.HistoryFilename)
	if _, err := os.Stat(dbPath); err != nil {
		return nil
	}
	store, err := history.NewStore("sqlite", dbPath)
	if err != nil {
		logger.Warn("skipping ratings", "err", err)
		return nil
	}
	defer history.CloseIfSupported(store)
	if err := store.Init(cmd.Context()); err != nil {
		return err
	}
	entries, err := store.Entries(cmd.Context())
	if err != nil {
		return err
	}
	printSummaries(os.Stdout, history.Summarize(entries))
	return nil
}
