// Package cli implements the medfit command line tool.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yusufkecer/medfit-backend/internal/config"
	"github.com/yusufkecer/medfit-backend/internal/db"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
	"github.com/yusufkecer/medfit-backend/internal/report"
)

// All linker flags are set at build time.
var version = "dev"

type app struct {
	configFile string
	noColor    bool
	cfg        *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "medfit",
		Short:         "Body measurement metrics from the command line.",
		Long:          `medfit computes BMI and waist-hip ratio, and prints client timelines from the MedFit store.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return err
			}
			config.InitLogger(cfg)
			a.cfg = cfg
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "path to a YAML config file (default ./medfit.yaml)")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(a.newCalcCmd(), a.newHistoryCmd(), a.newMigrateCmd())
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// profile resolves name, falling back to the configured default.
func (a *app) profile(name string) (metrics.Profile, error) {
	if name == "" {
		name = a.cfg.ResultProfile
	}
	return metrics.ProfileByName(name)
}

func (a *app) openStore() (*sql.DB, db.Dialect, error) {
	dialect, err := db.DialectFor(a.cfg.DBBackend)
	if err != nil {
		return nil, "", err
	}
	conn, err := db.Connect(a.cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open store: %w", err)
	}
	return conn, dialect, nil
}

func (a *app) reportOptions() report.Options {
	return report.DetectOptions(a.noColor)
}
