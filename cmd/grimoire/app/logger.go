package app

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/grimoire/pkg/logging"
)

// ConfigureLogging sets up the global logger from the loaded config.
// Verbose wins over quiet; an explicit LOG_LEVEL wins over both.
func ConfigureLogging(cfg *Config) {
	level := zerolog.InfoLevel
	if cfg.Quiet {
		level = zerolog.WarnLevel
	}
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	if cfg.LogLevel != "" {
		if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = parsed
		}
	}

	var logger zerolog.Logger
	if cfg.LogFormat != "json" && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) {
		logger = logging.NewConsole()
	} else {
		logger = logging.New(os.Stderr)
	}
	logging.SetDefault(logger.Level(level))
}
