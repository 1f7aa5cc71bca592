package cmd

import (
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/ayusman/tadasana/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <recording.json>",
	Short: "Score every frame of a recorded session",
	Long: `Score a recording of per-frame landmarks against a target pose and print
a summary. With --json the full per-frame report is printed instead.

Example:
  tadasana replay --target warrior2 session.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringP("target", "t", "mountain", "target pose")
	replayCmd.Flags().Bool("json", false, "print the full report as JSON")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target, err := parseTargetFlag(cmd)
	if err != nil {
		return err
	}

	rec, err := replay.ReadFile(args[0])
	if err != nil {
		return err
	}

	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}

	bar := pb.New(len(rec.Frames))
	bar.SetWriter(cmd.ErrOrStderr())
	bar.Start()
	report, err := replay.Score(rec, scorer, target, func() { bar.Increment() })
	bar.Finish()
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}

	s := report.Summary
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Target:  %s\n", target.DisplayName())
	fmt.Fprintf(out, "Frames:  %d scored of %d\n", s.Frames, len(report.Frames))
	fmt.Fprintf(out, "Passed:  %d (%.0f%%)\n", s.PassedFrames, s.PassRate()*100)
	fmt.Fprintf(out, "Best:    %d\n", s.BestScore)
	fmt.Fprintf(out, "Mean:    %.1f ± %.1f\n", s.MeanScore, s.StddevScore)
	return nil
}
