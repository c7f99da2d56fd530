package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seejay/notefall/timeline"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <timeline.mid>",
	Short: "Dumps a parsed timeline",
	Long:  `Dumps a parsed timeline`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(pitch uint8) string {
	return fmt.Sprintf("%v%v", noteNames[pitch%12], int(pitch)/12-1)
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	notes, err := timeline.Parse(data)
	if err != nil {
		return err
	}

	fmt.Printf("%v notes\n", len(notes))
	for _, n := range notes {
		fmt.Printf("%8.3fs  %-4s (%3d)  vel=%3d  dur=%6.3fs\n",
			n.Start, noteName(n.Pitch), n.Pitch, n.Velocity, n.Duration)
	}
	return nil
}
