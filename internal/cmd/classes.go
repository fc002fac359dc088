package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/grimoire/internal/cmd/output"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the spellcasting classes",
	Long: `Discovers which character classes can cast spells. Classes without
any spells are excluded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		classes, err := deps.Assembler.SpellcastingClasses(cmd.Context())
		if err != nil {
			return err
		}

		if deps.Format == output.FormatTable {
			data := output.Data{Headers: []string{"Class", "Index"}}
			for _, c := range classes {
				data.Rows = append(data.Rows, []string{c.Name, c.Index})
			}
			return render(data)
		}
		return render(classes)
	},
}

func init() {
	rootCmd.AddCommand(classesCmd)
}
