// Package cmd contains all CLI commands for tadasana.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayusman/tadasana/internal/config"
	"github.com/ayusman/tadasana/internal/pose"
)

var (
	cfgFile string
	v       *viper.Viper
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tadasana",
	Short: "Tadasana - live yoga pose scoring",
	Long: `Tadasana watches the camera, finds the body's landmarks and scores how
closely the practitioner holds one of five poses:

  mountain, tree, sukasana, childs_pose, warrior2

Each frame gets a score out of 100, a feedback sentence and a list of
corrections. Running 'tadasana' without arguments starts the web server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("data-dir", "", "data directory (default is $HOME/.tadasana)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

// initConfig reads .env and sets up the viper instance shared by commands.
func initConfig() {
	_ = godotenv.Load()

	var err error
	v, err = config.New(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	v.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// loadConfig decodes the settings and configures logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	config.SetupLogging(cfg.LogLevel, os.Stderr)
	return cfg, nil
}

// newScorer builds a scorer from the configured thresholds.
func newScorer(cfg *config.Config) (*pose.Scorer, error) {
	return pose.NewScorer(cfg.Thresholds)
}

// parseTargetFlag reads the --target flag of cmd.
func parseTargetFlag(cmd *cobra.Command) (pose.Target, error) {
	name, _ := cmd.Flags().GetString("target")
	return pose.ParseTarget(name)
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
