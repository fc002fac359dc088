// Package app wires configuration, logging, and process lifecycle for
// the grimoire CLI.
package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/grimoire/internal/dnd5e"
	"github.com/agentstation/grimoire/pkg/store"
)

// Config holds the application configuration loaded from flags,
// environment variables, .env files, and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	Output  string

	// Config file
	ConfigFile string

	// Grimoire configuration
	DataDir string
	BaseURL string

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from all sources in order of
// precedence: command-line flags (handled by cobra), environment
// variables, .env files, the config file (~/.grimoire.yaml), then
// defaults.
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	viper.SetEnvPrefix("grimoire")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	viper.SetDefault("data-dir", store.DefaultDir())
	viper.SetDefault("base-url", dnd5e.DefaultBaseURL)

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".grimoire")
		}
	}

	// A missing config file is fine; anything present must parse.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && configFile != "" {
			return nil, err
		}
	}

	return &Config{
		Verbose:    viper.GetBool("verbose"),
		Quiet:      viper.GetBool("quiet"),
		Output:     viper.GetString("output"),
		ConfigFile: viper.ConfigFileUsed(),
		DataDir:    viper.GetString("data-dir"),
		BaseURL:    viper.GetString("base-url"),
		LogLevel:   viper.GetString("log-level"),
		LogFormat:  viper.GetString("log-format"),
	}, nil
}

// loadEnvFiles loads environment variables from .env files. Earlier
// files win; real environment variables win over both.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
