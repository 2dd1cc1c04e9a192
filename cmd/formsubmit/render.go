package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsubmit/internal/app"
	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/events"
	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/submit"
)

var (
	renderFormID   string
	renderFormat   string
	renderValues   string
	renderValidate bool
	renderOutput   string
	renderAction   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a form as HTML or JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		def, err := lookupForm(ctx, renderFormID)
		if err != nil {
			return err
		}
		form, err := model.NewFormState(def)
		if err != nil {
			return err
		}
		values, err := readValues(renderValues)
		if err != nil {
			return err
		}
		renderers, err := app.Renderers(cfg)
		if err != nil {
			return err
		}
		renderer, err := renderers.Get(renderFormat)
		if err != nil {
			return err
		}

		// Rendering never submits; the action only satisfies the controller.
		noop := submit.ActionFunc(func(context.Context, submit.Payload) (submit.Result, error) {
			return submit.Result{}, nil
		})
		tracker := render.NewTracker()
		ctrl, err := controller.New(form, tracker, noop, app.ControllerOptions(cfg, logger, controller.Hooks{})...)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		bus := events.NewBus()
		if err := ctrl.Bind(bus); err != nil {
			return err
		}
		for _, id := range form.IDs() {
			if value, ok := values[id]; ok {
				bus.Change(id, value)
			}
		}
		if renderValidate {
			ctrl.Validate()
		}

		action := renderAction
		if action == "" {
			action = "/forms/" + form.ID
		}
		out, err := renderer.Render(ctx, tracker.Snapshot(form), render.Options{Action: action, Locale: cfg.Locale})
		if err != nil {
			return err
		}
		if renderOutput == "" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(renderOutput, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "form written to %s\n", renderOutput)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderFormID, "id", "", "form id (defaults to the first form)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "html", "output format (html, json)")
	renderCmd.Flags().StringVar(&renderValues, "values", "", "YAML or JSON file of field values")
	renderCmd.Flags().BoolVar(&renderValidate, "validate", false, "validate the values and show errors")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (stdout if empty)")
	renderCmd.Flags().StringVar(&renderAction, "action", "", "form action URL")
	rootCmd.AddCommand(renderCmd)
}
