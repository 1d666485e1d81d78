package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jsphweid/evomelody/genetic"
	"github.com/jsphweid/evomelody/melody"
	"github.com/jsphweid/evomelody/midi"
	"github.com/jsphweid/evomelody/model"
	"github.com/spf13/cobra"
)

var (
	decodeParams = model.DefaultParams()
	decodeSeed   int64
	decodeOut    string
)

func init() {
	rootCmd.AddCommand(decodeCmd)

	addMelodyFlags(decodeCmd, &decodeParams)
	decodeCmd.Flags().Int64Var(&decodeSeed, "seed", 0, "seed for a random genome when no bits are given")
	decodeCmd.Flags().StringVar(&decodeOut, "out", "", "also write the melody to this .mid file")
}

var decodeCmd = &cobra.Command{
	Use:   "decode [bits]",
	Short: "Decodes a genome",
	Long: `Decodes a bit string into a melody and prints it. Without bits a random
genome of the right length is decoded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := decodeParams.Validate()
		if err != nil {
			return err
		}

		var g model.Genome
		if len(args) == 1 {
			if g, err = model.ParseGenome(args[0]); err != nil {
				return err
			}
		} else {
			seed := decodeSeed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			g = genetic.Generate(rand.New(rand.NewSource(seed)), params.GenomeLength())
		}

		m, err := melody.Decode(g, params)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(g.String()))
		printMelody(os.Stdout, m)

		if decodeOut != "" {
			if err := midi.WriteMelodyFile(decodeOut, m, params.BPM); err != nil {
				return err
			}
			logger.Info("wrote melody", "path", decodeOut)
		}
		return nil
	},
}
