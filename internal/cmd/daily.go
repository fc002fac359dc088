package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/grimoire/internal/cmd/output"
)

var dailyForce bool

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show today's twelve random spells",
	Long: `Shows the daily selection: twelve spells sampled at random from the
catalog, regenerated once per calendar day. --refresh forces a new
sample immediately.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rec, refreshed, err := deps.Generator.Refresh(cmd.Context(), dailyForce)
		if err != nil {
			return err
		}

		if deps.Format == output.FormatTable {
			stamp := "never"
			if rec.GeneratedDate != nil {
				stamp = *rec.GeneratedDate
			}
			if refreshed {
				fmt.Fprintf(deps.Out, "Generated a new selection for %s\n", stamp)
			} else {
				fmt.Fprintf(deps.Out, "Selection generated %s\n", stamp)
			}
		}
		return renderSpells(rec.Items)
	},
}

func init() {
	dailyCmd.Flags().BoolVar(&dailyForce, "refresh", false, "force a new selection now")
	rootCmd.AddCommand(dailyCmd)
}
