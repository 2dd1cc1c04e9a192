package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formsubmit/internal/app"
	"github.com/goliatone/go-formsubmit/pkg/controller"
	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/renderers/tui"
)

var (
	promptFormID  string
	promptConfirm bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Fill in and submit a form from the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		def, err := lookupForm(ctx, promptFormID)
		if err != nil {
			return err
		}
		form, err := model.NewFormState(def)
		if err != nil {
			return err
		}
		action, err := app.Action(cfg, logger)
		if err != nil {
			return err
		}

		session, err := tui.NewSession(form, action,
			tui.WithOutput(cmd.OutOrStdout()),
			tui.WithConfirm(promptConfirm),
			tui.WithLogger(logger),
			tui.WithControllerOptions(app.ControllerOptions(cfg, logger, controller.Hooks{})...),
		)
		if err != nil {
			return err
		}
		defer session.Close()

		outcome, err := session.Run(ctx)
		if err != nil {
			return err
		}
		if ref := outcome.Result.Reference; ref != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "reference: %s\n", ref)
		}
		return nil
	},
}

func init() {
	promptCmd.Flags().StringVar(&promptFormID, "id", "", "form id (defaults to the first form)")
	promptCmd.Flags().BoolVar(&promptConfirm, "confirm", false, "ask before sending")
	rootCmd.AddCommand(promptCmd)
}
