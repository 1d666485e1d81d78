package cmd

import (
	"fmt"
	"strings"

	"github.com/jsphweid/evomelody/constants"
	"github.com/jsphweid/evomelody/model"
	"github.com/spf13/cobra"
)

// addMelodyFlags binds the decoding params shared by every command that turns
// genomes into melodies.
func addMelodyFlags(cmd *cobra.Command, p *model.Params) {
	f := cmd.Flags()
	f.IntVar(&p.NumBars, "num-bars", p.NumBars, "bars per melody")
	f.IntVar(&p.NumNotes, "num-notes", p.NumNotes, "note slots per bar")
	f.IntVar(&p.NumSteps, "num-steps", p.NumSteps, "chord steps stacked on each note")
	f.BoolVar(&p.Pauses, "pauses", p.Pauses, "allow pause codes")
	f.StringVar(&p.Key, "key", p.Key, fmt.Sprintf("key, one of %s", strings.Join(constants.Keys, " ")))
	f.StringVar(&p.Scale, "scale", p.Scale, fmt.Sprintf("scale, one of %s", strings.Join(constants.Scales, " ")))
	f.IntVar(&p.Root, "root", p.Root, "octave of the scale root (4 puts C at MIDI 60)")
	f.IntVar(&p.BPM, "bpm", p.BPM, "tempo")
}
