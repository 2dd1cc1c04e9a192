package tui_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/muesli/termenv"

	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/renderers/tui"
	"github.com/goliatone/go-formsubmit/pkg/view"
)

func TestTerminalPrintsRequests(t *testing.T) {
	var out bytes.Buffer
	term := tui.NewTerminal(&out, termenv.Ascii, tui.DefaultTheme())

	term.MarkInvalid("email", "Email is required.")
	term.MarkInvalid("email", "Email is required.")
	term.UpdateCounter("message", view.CounterState{Length: 420, Max: 500, Warning: true, Text: "420/500 characters"})
	term.UpdateCounter("message", view.CounterState{Length: 10, Max: 500, Text: "10/500 characters"})
	term.SetBusy(true, "Sending...")
	term.SetBusy(true, "Sending...")
	term.SetBusy(false, "")
	term.ShowNotification(notify.Notification{ID: "n1", Kind: notify.KindInfo, Message: "Saved draft"})
	term.RemoveNotification("n1", notify.ReasonExpired)

	want := "  ! Email is required.\n" +
		"  ! 420/500 characters\n" +
		"... Sending...\n" +
		"[info] Saved draft\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	if msg, ok := term.Invalid("email"); !ok || msg != "Email is required." {
		t.Fatalf("expected email flagged, got %q %v", msg, ok)
	}
	term.ResetForm(nil)
	if _, ok := term.Invalid("email"); ok {
		t.Fatalf("expected reset to clear flags")
	}
	if counter, ok := term.Counter("message"); !ok || counter.Length != 10 {
		t.Fatalf("expected last counter kept, got %+v", counter)
	}
}
