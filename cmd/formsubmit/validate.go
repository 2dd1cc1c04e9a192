package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsubmit/pkg/model"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

var (
	validateFormID string
	validateValues string
	validateJSON   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a values file against a form",
	RunE: func(cmd *cobra.Command, _ []string) error {
		def, err := lookupForm(cmd.Context(), validateFormID)
		if err != nil {
			return err
		}
		form, err := model.NewFormState(def)
		if err != nil {
			return err
		}
		values, err := readValues(validateValues)
		if err != nil {
			return err
		}
		if unknown := form.SetValues(values); len(unknown) > 0 {
			logger.Sugar().Warnw("ignoring unknown fields", "fields", unknown)
		}

		result := validation.Validate(form, validation.WithLocale(cfg.Locale))
		out := cmd.OutOrStdout()
		if validateJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
		} else {
			for _, issue := range result.Issues {
				fmt.Fprintf(out, "%s: %s (%s)\n", issue.Field, issue.Message, issue.Code)
			}
		}
		if !result.Valid() {
			return fmt.Errorf("form %q is invalid: %d field(s)", form.ID, len(result.Issues))
		}
		if !validateJSON {
			fmt.Fprintf(out, "form %q is valid\n", form.ID)
		}
		return nil
	},
}

// readValues decodes a YAML or JSON object of field values. An empty path
// yields no values.
func readValues(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	return values, nil
}

func init() {
	validateCmd.Flags().StringVar(&validateFormID, "id", "", "form id (defaults to the first form)")
	validateCmd.Flags().StringVar(&validateValues, "values", "", "YAML or JSON file of field values")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the validation result as JSON")
	rootCmd.AddCommand(validateCmd)
}
