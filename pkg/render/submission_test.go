package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/render"
)

func TestNormalizeHidden(t *testing.T) {
	got := render.NormalizeHidden(
		render.Hidden("version", 4),
		render.CSRFToken(" _csrf ", "stale"),
		render.Hidden("  ", "skip"),
		render.CSRFToken("_csrf", "token123"),
	)

	want := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "version", Value: "4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
	if render.NormalizeHidden() != nil {
		t.Fatalf("expected nil for no fields")
	}
}

func TestOptionsMethodDefault(t *testing.T) {
	if got := (render.Options{}).MethodOrDefault(); got != "POST" {
		t.Fatalf("expected POST, got %q", got)
	}
}
