package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/grimoire/internal/cmd/output"
	"github.com/agentstation/grimoire/pkg/search"
)

var searchCmd = &cobra.Command{
	Use:   "search TERM",
	Short: "Fuzzy-search the spell catalog",
	Long: `Searches the assembled catalog by name, class, level, school, and
description. Terms shorter than two characters return nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := deps.Assembler.AssembleAll(cmd.Context())
		if err != nil {
			return err
		}

		results := search.New(catalog).Search(args[0])
		if len(results) == 0 {
			fmt.Fprintf(deps.Out, "No spells matching %q\n", args[0])
			return nil
		}

		if deps.Format == output.FormatTable {
			data := output.Data{Headers: []string{"Name", "Level", "School", "Score"}}
			for _, r := range results {
				data.Rows = append(data.Rows, []string{
					r.Spell.Name,
					fmt.Sprintf("%d", r.Spell.Level),
					r.Spell.SchoolName(),
					fmt.Sprintf("%.2f", r.Score),
				})
			}
			return render(data)
		}
		return render(results)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
