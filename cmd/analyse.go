package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seejay/notefall/difficulty"
	"github.com/seejay/notefall/timeline"
)

func init() {
	rootCmd.AddCommand(analyseCmd)
}

var analyseCmd = &cobra.Command{
	Use:   "analyse <file.mid>",
	Short: "Estimates the difficulty of an arrangement",
	Long:  `Estimates the difficulty of an arrangement`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := timeline.ReadFile(args[0])
		if err != nil {
			return err
		}
		report, err := difficulty.Analyse(s)
		if err != nil {
			return err
		}
		fmt.Println(report)
		return nil
	},
}
