package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/tadasana/internal/pose"
)

var posesCmd = &cobra.Command{
	Use:   "poses",
	Short: "List the poses that can be scored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDISPLAY NAME")
		for _, t := range pose.Targets() {
			fmt.Fprintf(w, "%s\t%s\n", t, t.DisplayName())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(posesCmd)
}
