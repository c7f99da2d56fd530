package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notefall",
	Short: "MIDI play-along trainer",
	Long:  `Play a MIDI instrument along with a song's note timeline and get hit/miss feedback in real time.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
