package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/seejay/notefall/difficulty"
	"github.com/seejay/notefall/timeline"
)

func init() {
	rootCmd.AddCommand(simplifyCmd)
}

var simplifyCmd = &cobra.Command{
	Use:   "simplify <file.mid> <outdir>",
	Short: "Generates beginner/intermediate/advanced arrangements",
	Long:  `Generates beginner/intermediate/advanced arrangements`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimplify(args[0], args[1])
	},
}

func runSimplify(path, outDir string) error {
	s, err := timeline.ReadFile(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0777); err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, level := range difficulty.Levels() {
		fmt.Printf("Generating %v arrangement...\n", level)
		simplified, err := difficulty.Simplify(s, level)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, fmt.Sprintf("%v_%v.mid", stem, level))
		if err := writeSMF(simplified, outPath); err != nil {
			return err
		}
		fmt.Printf("  wrote %v\n", outPath)
	}
	return nil
}

func writeSMF(s *smf.SMF, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.WriteTo(f)
	return err
}
