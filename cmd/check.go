package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/yang208115/annwatch/internal/app"
	"github.com/yang208115/annwatch/internal/config"
	"github.com/yang208115/annwatch/internal/logging"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the startup self-checks and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Logging.Development, cfg.Storage.LogFile)
		if err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}

		a, err := app.New(cfg, logger, prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Checker.Run(cmd.Context()); err != nil {
			return err
		}

		cmd.Println("all checks passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
