package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow collection changes as they happen",
	Long: `Watches the data directory and reports every collection change,
including changes made by other grimoire processes. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		watcher, err := deps.Store.Watch(ctx)
		if err != nil {
			return err
		}
		defer watcher.Close()

		fmt.Fprintf(deps.Out, "Watching %s\n", deps.Store.Dir())
		for {
			select {
			case <-ctx.Done():
				return nil
			case change, ok := <-watcher.Changes():
				if !ok {
					return nil
				}
				fmt.Fprintf(deps.Out, "%s changed: %d items (modified %s)\n",
					change.Key, len(change.Record.Items), change.Record.LastModified)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
