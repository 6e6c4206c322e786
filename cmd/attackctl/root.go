package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"cyber-dashboard/internal/session"
	"cyber-dashboard/internal/source"
	"cyber-dashboard/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// errLoad is all a user sees of a failed load; -v logs the cause.
var errLoad = errors.New("Error al cargar los datos")

type app struct {
	configPath string
	dataPath   string
	verbose    bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{stdout: out, stderr: errOut}

	cmd := &cobra.Command{
		Use:           "attackctl",
		Short:         "Inspect a cyber-attack dataset from the terminal",
		Long:          "attackctl loads the same dataset as the dashboard API and prints its summary, filtered tables and filter options.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&a.configPath, "config", utils.DefaultConfigPath, "configuration file path (YAML)")
	cmd.PersistentFlags().StringVar(&a.dataPath, "file", "", "read the dataset from this file instead of the configured source")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log dataset loading")

	cmd.AddCommand(
		newStatsCmd(a),
		newListCmd(a),
		newOptionsCmd(a),
		newSeedCmd(a),
	)
	return cmd
}

// config loads the config file, falling back to defaults when it does not
// exist. --file overrides the dataset section.
func (a *app) config() (*utils.DashboardConfig, error) {
	cfg, err := utils.LoadDashboardConfig(a.configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = utils.GetDefaultDashboardConfig()
	}

	if a.dataPath != "" {
		cfg.Dataset.Source = "file"
		if ext := strings.ToLower(a.dataPath); strings.HasSuffix(ext, ".db") || strings.HasSuffix(ext, ".sqlite") {
			cfg.Dataset.Source = "sqlite"
		}
		cfg.Dataset.Path = a.dataPath
		cfg.Dataset.CacheTTLSeconds = 0
		cfg.Dataset.Watch = false
	}
	return cfg, nil
}

func (a *app) logger(cfg *utils.DashboardConfig) *logrus.Logger {
	logger := utils.NewLogger(cfg.Logging)
	logger.SetOutput(a.stderr)
	if !a.verbose {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

// load opens a session over the configured dataset and waits for its load.
func (a *app) load(ctx context.Context) (*session.Session, *utils.DashboardConfig, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}
	logger := a.logger(cfg)

	src, err := source.New(cfg.Dataset, logger)
	if err != nil {
		return nil, nil, err
	}

	s := session.NewSession(src, session.Options{
		DefaultLimit: cfg.Filters.DefaultLimit,
		MaxLimit:     cfg.Filters.MaxLimit,
	}, logger)
	if err := s.Load(ctx); err != nil {
		logger.Debugf("Load failed: %v", err)
		return nil, nil, errLoad
	}
	return s, cfg, nil
}
