package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/grimoire/cmd/grimoire/app"
	"github.com/agentstation/grimoire/internal/cmd/output"
	"github.com/agentstation/grimoire/internal/dnd5e"
	"github.com/agentstation/grimoire/pkg/catalog"
	"github.com/agentstation/grimoire/pkg/collections"
	"github.com/agentstation/grimoire/pkg/daily"
	"github.com/agentstation/grimoire/pkg/events"
	"github.com/agentstation/grimoire/pkg/logging"
	"github.com/agentstation/grimoire/pkg/store"
)

var (
	configFile string
	outputFlag string
	verbose    bool
	quiet      bool
	dataDir    string
	baseURL    string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
)

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "grimoire",
	Short: "D&D 5e spell catalog and collection manager",
	Long: `Grimoire browses the D&D 5e spell catalog and manages your personal
spell collections: a persistent spellbook, a per-game session deck, and
a random selection of twelve spells that refreshes daily.

Catalog data comes from the public D&D 5e reference API and is cached
locally; collections live on disk and survive between runs.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

// Execute runs the command tree under ctx.
func Execute(ctx context.Context, version, commit string) error {
	Version = version
	Commit = commit
	rootCmd.Version = version
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.grimoire.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: table, json, or yaml (default auto-detects)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding collection files")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "reference API base URL")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))
	cobra.CheckErr(viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")))
	cobra.CheckErr(viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")))
	cobra.CheckErr(viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir")))
	cobra.CheckErr(viper.BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url")))
}

// setupCommand loads configuration and wires the application services
// before any command runs.
func setupCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(configFile)
	if err != nil {
		return err
	}
	app.ConfigureLogging(cfg)

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	s, err := store.New(cfg.DataDir)
	if err != nil {
		return err
	}
	s.Initialize()

	// Fold any pre-release data layout forward on every start.
	if s.MigrationNeeded() {
		result := s.Migrate()
		logging.Default().Info().
			Int("items", result.MigratedItems).
			Msg("Migrated legacy collection data")
	}

	bus := events.NewBus()
	client := dnd5e.New(dnd5e.WithBaseURL(cfg.BaseURL))
	assembler := catalog.New(client)

	SetDeps(&Deps{
		Store:     s,
		Bus:       bus,
		Manager:   collections.NewManager(s, bus),
		Assembler: assembler,
		Generator: daily.NewGenerator(s, bus, assembler),
		Format:    format,
		Out:       cmd.OutOrStdout(),
	})
	return nil
}
