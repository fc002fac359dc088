package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/grimoire/internal/cmd/output"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Fold legacy collection data into the current layout",
	Long: `Moves collection data written by earlier releases into the current
file layout, assigning fresh session ids to migrated deck entries.
Running it again after a successful migration is a no-op.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		result := deps.Store.Migrate()

		if deps.Format != output.FormatTable {
			return render(result)
		}
		if !result.Performed {
			fmt.Fprintln(deps.Out, "Nothing to migrate")
			return nil
		}
		fmt.Fprintf(deps.Out, "Migrated %d deck entries\n", result.MigratedItems)
		if len(result.RemovedKeys) > 0 {
			fmt.Fprintf(deps.Out, "Removed legacy keys: %s\n", strings.Join(result.RemovedKeys, ", "))
		}
		for _, e := range result.Errors {
			fmt.Fprintf(deps.Out, "Error: %s\n", e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
