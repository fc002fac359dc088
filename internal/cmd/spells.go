package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/grimoire/internal/cmd/output"
	"github.com/agentstation/grimoire/pkg/batch"
	"github.com/agentstation/grimoire/pkg/spells"
)

var (
	spellsClass       string
	spellsProgressive bool
)

var spellsCmd = &cobra.Command{
	Use:   "spells",
	Short: "List spells from the catalog",
	Long: `Assembles the spell catalog from the reference API and lists it,
grouped by level. With --class, only that class's spells are fetched;
--progressive streams fetch progress to stderr while batches arrive.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var list []spells.Spell
		var err error
		if spellsClass != "" {
			var onBatch func([]spells.Spell, batch.Progress)
			if spellsProgressive {
				onBatch = func(_ []spells.Spell, p batch.Progress) {
					fmt.Fprintf(os.Stderr, "\rLoading spells... %d/%d (%.0f%%)", p.Loaded, p.Total, p.Percentage)
					if p.Complete {
						fmt.Fprintln(os.Stderr)
					}
				}
			}
			list, err = deps.Assembler.AssembleClass(ctx, spellsClass, onBatch)
		} else {
			list, err = deps.Assembler.AssembleAll(ctx)
		}
		if err != nil {
			return err
		}

		if deps.Format != output.FormatTable {
			return render(list)
		}

		// Grouped table: one block per level with a count header.
		for _, group := range spells.OrderedGroups(list) {
			fmt.Fprintf(deps.Out, "%s (%d)\n", group.Label, group.Count)
			if err := render(spellRows(group.Spells)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	spellsCmd.Flags().StringVar(&spellsClass, "class", "", "limit to one class, e.g. wizard")
	spellsCmd.Flags().BoolVar(&spellsProgressive, "progressive", false, "report fetch progress while loading")
	rootCmd.AddCommand(spellsCmd)
}
