package cmd

import (
	"fmt"

	"github.com/jsphweid/evomelody/chord"
	"github.com/jsphweid/evomelody/midi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	excerptPath     string
	excerptFrom     uint64
	excerptMaxNotes int
)

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&excerptPath, "excerpt", "", "write an excerpt of the file here")
	inspectCmd.Flags().Uint64Var(&excerptFrom, "from", 0, "tick the excerpt starts at")
	inspectCmd.Flags().IntVar(&excerptMaxNotes, "max-notes", 10, "note ons kept in the excerpt")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file.mid]",
	Short: "Inspects an exported melody",
	Long:  `Prints every chord an exported .mid file sounds, with its offset in microseconds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		chords := chord.GetChords(s)
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s: %d tracks, %d chords", args[0], len(s.Tracks), len(chords))))
		for _, c := range chords {
			fmt.Printf("%10dµs  %s\n", c.Offset, chord.CreateChordKey(c.Notes))
		}

		if excerptPath == "" {
			return nil
		}
		if err := midi.Excerpt(s, excerptFrom, excerptMaxNotes).WriteFile(excerptPath); err != nil {
			return errors.Wrapf(err, "could not write %s", excerptPath)
		}
		logger.Info("wrote excerpt", "path", excerptPath)
		return nil
	},
}
