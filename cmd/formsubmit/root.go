package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsubmit/internal/app"
	"github.com/goliatone/go-formsubmit/internal/config"
	"github.com/goliatone/go-formsubmit/internal/logging"
	"github.com/goliatone/go-formsubmit/pkg/model"
)

var (
	configPath  string
	logLevel    string
	formPath    string
	openapiPath string
	operationID string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "formsubmit",
	Short: "Validate, render and submit forms",
	Long: `formsubmit drives forms defined in YAML/JSON files or OpenAPI request bodies.
It serves them over HTTP, fills them in from a terminal, validates value files
and renders them as HTML or JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if formPath != "" {
			loaded.Form.Path, loaded.Form.OpenAPI = formPath, ""
		}
		if openapiPath != "" {
			loaded.Form.OpenAPI, loaded.Form.Path = openapiPath, ""
		}
		if operationID != "" {
			loaded.Form.Operation = operationID
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		built, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		logger = built
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&formPath, "form", "", "form definition file or URL")
	rootCmd.PersistentFlags().StringVar(&openapiPath, "openapi", "", "OpenAPI document whose request bodies become forms")
	rootCmd.PersistentFlags().StringVar(&operationID, "operation", "", "OpenAPI operation to load")
}

// lookupForm returns the definition named id, or the first form when id is
// empty.
func lookupForm(ctx context.Context, id string) (model.Definition, error) {
	forms, err := app.Forms(ctx, cfg)
	if err != nil {
		return model.Definition{}, err
	}
	if id == "" {
		ids := forms.List()
		if len(ids) == 0 {
			return model.Definition{}, fmt.Errorf("no forms defined")
		}
		id = ids[0]
	}
	return forms.Get(id)
}
