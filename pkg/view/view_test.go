package view_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/notify"
	"github.com/goliatone/go-formsubmit/pkg/testsupport"
	"github.com/goliatone/go-formsubmit/pkg/view"
)

func TestMultiFansOutInOrder(t *testing.T) {
	first, second := testsupport.NewRecorder(), testsupport.NewRecorder()
	v := view.Multi(first, nil, second)

	v.MarkInvalid("email", "Email is required.")
	v.SetBusy(true, "Sending...")
	v.ShowNotification(notify.Notification{ID: "n1", Kind: notify.KindInfo, Message: "hi"})
	v.RemoveNotification("n1", notify.ReasonDismissed)
	v.ClearInvalid("email")
	v.UpdateCounter("message", view.CounterState{Length: 1, Max: 10})
	v.ResetForm(map[string]string{"email": ""})

	want := []string{"invalid:email", "busy:true", "notify:info:hi", "remove:n1:dismissed", "clear:email", "counter:message", "reset"}
	for _, rec := range []*testsupport.Recorder{first, second} {
		if diff := cmp.Diff(want, rec.Calls()); diff != "" {
			t.Fatalf("calls mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestNopIgnoresRequests(t *testing.T) {
	var v view.View = view.Nop{}
	v.MarkInvalid("email", "x")
	v.SetBusy(true, "")
	v.ResetForm(nil)
}
