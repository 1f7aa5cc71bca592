package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/tadasana/internal/config"
	"github.com/ayusman/tadasana/internal/pose"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show or initialize the scoring thresholds",
	Long: `Print the thresholds in effect. With --init, write the defaults to
thresholds.yaml in the data directory so they can be tuned.

Example:
  tadasana thresholds
  tadasana thresholds --init --force`,
	Args: cobra.NoArgs,
	RunE: runThresholds,
}

func init() {
	rootCmd.AddCommand(thresholdsCmd)
	thresholdsCmd.Flags().Bool("init", false, "write the default thresholds file")
	thresholdsCmd.Flags().Bool("force", false, "overwrite an existing thresholds file")
}

func runThresholds(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if initFile, _ := cmd.Flags().GetBool("init"); !initFile {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(cfg.Thresholds)
	}

	path := cfg.ThresholdsPath()
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := config.SaveThresholds(path, pose.DefaultThresholds()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
