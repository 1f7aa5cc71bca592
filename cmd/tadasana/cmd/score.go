package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/tadasana/internal/detector"
)

var scoreCmd = &cobra.Command{
	Use:   "score <landmarks.json>",
	Short: "Score one frame of landmarks",
	Long: `Score a single frame against a target pose and print the result as JSON.

The file holds a JSON array of up to 33 landmarks ({"x","y","z","visibility"}),
with null for landmarks that were not found. Use "-" to read stdin.

Example:
  tadasana score --target tree frame.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringP("target", "t", "mountain", "target pose")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target, err := parseTargetFlag(cmd)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening landmarks: %w", err)
		}
		defer f.Close()
		r = f
	}

	var set detector.LandmarkSet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return fmt.Errorf("decoding landmarks: %w", err)
	}

	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}

	res, err := scorer.Score(&set, target)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
