package cmd

import (
	"github.com/spf13/cobra"
)

var spellbookCmd = &cobra.Command{
	Use:   "spellbook",
	Short: "Manage your persistent spellbook",
	Long: `The spellbook is your permanent collection. Each spell appears at
most once; adding a spell you already know is rejected.`,
}

var spellbookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the spells in your spellbook",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return renderSpells(deps.Manager.Spellbook())
	},
}

var spellbookAddCmd = &cobra.Command{
	Use:   "add SPELL",
	Short: "Add a spell to your spellbook by index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := deps.Assembler.GetSpell(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return renderResult(deps.Manager.AddToSpellbook(s))
	},
}

var spellbookRemoveCmd = &cobra.Command{
	Use:   "remove SPELL",
	Short: "Remove a spell from your spellbook by index",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return renderResult(deps.Manager.RemoveFromSpellbook(args[0]))
	},
}

func init() {
	spellbookCmd.AddCommand(spellbookListCmd, spellbookAddCmd, spellbookRemoveCmd)
	rootCmd.AddCommand(spellbookCmd)
}
