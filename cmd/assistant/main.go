package main

import (
	"fmt"
	"os"

	"github.com/lexiqai/meeting-assistant/internal/cli"
	"github.com/lexiqai/meeting-assistant/internal/config"
	"github.com/lexiqai/meeting-assistant/internal/observability"
	"github.com/lexiqai/meeting-assistant/internal/panel"
)

func main() {
	if err := run(); err != nil {
		panel.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr so stdout stays readable
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)

	deps := &cli.Dependencies{
		Config: cfg,
		Logger: observability.GetLogger(),
	}

	return cli.NewRootCmd(deps).Execute()
}
