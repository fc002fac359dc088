package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/grimoire/internal/cmd/output"
	"github.com/agentstation/grimoire/pkg/spells"
	"github.com/agentstation/grimoire/pkg/store"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage your session deck",
	Long: `The deck holds the spells prepared for the current game session.
The same spell can be prepared multiple times; each copy gets its own
session id. Burning a copy spends it. Cantrips are unlimited use and
cannot be burned.`,
}

var deckListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the prepared deck",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		deck := deps.Manager.Deck()
		if deps.Format != output.FormatTable {
			return render(deck)
		}

		data := output.Data{Headers: []string{"Session ID", "Level", "Name", "School"}}
		for _, s := range deck {
			data.Rows = append(data.Rows, []string{
				s.SessionID,
				spells.LevelLabel(s.Level),
				s.Name,
				s.SchoolName(),
			})
		}
		return render(data)
	},
}

var deckAddCmd = &cobra.Command{
	Use:   "add SPELL",
	Short: "Prepare a spell in the deck by index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := deps.Assembler.GetSpell(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return renderResult(deps.Manager.AddToDeck(s))
	},
}

var deckBurnCmd = &cobra.Command{
	Use:   "burn SESSION_ID",
	Short: "Burn one prepared spell by session id",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return burnDeckEntry(args[0])
	},
}

// burnDeckEntry removes one deck entry. Level policy lives here, not in
// the mutator: cantrips are unlimited use and are refused before the
// collection is touched.
func burnDeckEntry(sessionID string) error {
	for _, s := range deps.Manager.Deck() {
		if s.SessionID == sessionID && spells.IsCantrip(s) {
			return fmt.Errorf("%s is a cantrip and cannot be burned", s.Name)
		}
	}
	return renderResult(deps.Manager.RemoveFromDeck(sessionID))
}

var deckClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the deck",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return renderResult(deps.Manager.Clear(store.KeyDeck))
	},
}

func init() {
	deckCmd.AddCommand(deckListCmd, deckAddCmd, deckBurnCmd, deckClearCmd)
	rootCmd.AddCommand(deckCmd)
}
