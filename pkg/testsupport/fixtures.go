// Package testsupport holds the fixtures and fake views shared by package
// tests.
package testsupport

import (
	"os"
	"testing"

	"github.com/goliatone/go-formsubmit/pkg/model"
)

// ContactDefinition is the contact form used across package tests: a
// required email, an optional message capped at 500 characters.
func ContactDefinition() model.Definition {
	return model.Definition{
		ID:          "contact",
		Title:       "Contact us",
		SubmitLabel: "Send",
		Fields: []model.FieldDefinition{
			{ID: "email", Label: "Email", Kind: string(model.KindEmail), Required: true, Placeholder: "you@example.com"},
			{ID: "message", Label: "Message", Kind: string(model.KindTextarea), MaxLength: 500},
		},
	}
}

// ContactForm builds fresh state from ContactDefinition.
func ContactForm(t *testing.T) *model.FormState {
	t.Helper()
	form, err := model.NewFormState(ContactDefinition())
	if err != nil {
		t.Fatalf("new form state: %v", err)
	}
	return form
}

// ReadFixture returns the raw bytes of a testdata file.
func ReadFixture(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
