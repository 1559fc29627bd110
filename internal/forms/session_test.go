package forms_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-console/internal/forms"
)

func wizardSchema() *forms.Schema {
	return forms.MustSchema("customer",
		[]forms.FieldSpec{
			{Name: "name", Label: "Name", Kind: forms.KindText, Required: true, MinLen: 2},
			{Name: "email", Label: "Email", Kind: forms.KindText},
			{Name: "status", Label: "Status", Kind: forms.KindEnum, Options: []string{"active", "inactive"}, Default: "active", Required: true},
		},
		[]forms.StepSpec{
			{Index: 1, Title: "Basics", Fields: []string{"name"}},
			{Index: 2, Title: "Contact", Fields: []string{"email"}},
			{Index: 3, Title: "Status", Fields: []string{"status"}},
		},
	)
}

func noSubmit(ctx context.Context, sub forms.Submission) error {
	return errors.New("submit must not be reached")
}

func TestSession_StepGating(t *testing.T) {
	sess := forms.NewSession(wizardSchema(), noSubmit, forms.Callbacks{})

	if sess.Step() != 1 {
		t.Fatalf("new session starts at step %d, want 1", sess.Step())
	}
	if sess.Next() {
		t.Fatal("Next() must fail while the required name is empty")
	}
	sess.Set("name", "A")
	if sess.Next() {
		t.Fatal("Next() must fail while the name is below the minimum length")
	}
	sess.Set("name", "Acme")
	if !sess.Next() {
		t.Fatal("Next() should pass once step 1 is satisfied")
	}
	if sess.Step() != 2 {
		t.Fatalf("step = %d, want 2", sess.Step())
	}

	// Step 2 has only an optional field, so it is satisfied while blank.
	if !sess.Next() {
		t.Fatal("Next() should pass through an all-optional step")
	}
	if sess.Next() {
		t.Fatal("Next() at the last step must be a no-op")
	}
	if sess.Step() != 3 {
		t.Fatalf("step = %d, want 3", sess.Step())
	}
}

func TestSession_PrevIsUnguarded(t *testing.T) {
	sess := forms.NewSession(wizardSchema(), noSubmit, forms.Callbacks{})
	if sess.Prev() {
		t.Fatal("Prev() at step 1 must be a no-op")
	}
	sess.Set("name", "Acme")
	sess.Next()

	// Break the step-1 gate, then go back anyway: backwards navigation never
	// revalidates.
	sess.Set("name", "")
	if !sess.Prev() {
		t.Fatal("Prev() must succeed regardless of validation state")
	}
	if sess.Step() != 1 {
		t.Fatalf("step = %d, want 1", sess.Step())
	}
}

func TestSession_SubmitSuccess(t *testing.T) {
	submitted := make(chan forms.Submission, 1)
	submit := func(ctx context.Context, sub forms.Submission) error {
		return nil
	}
	sess := forms.NewSession(wizardSchema(), submit, forms.Callbacks{
		OnSubmitted: func(sub forms.Submission) { submitted <- sub },
	})

	if sess.Submit(context.Background()) {
		t.Fatal("Submit() must refuse while required fields are empty")
	}
	sess.Set("name", "Acme")
	sess.Set("email", "sales@acme.test")
	if !sess.Submit(context.Background()) {
		t.Fatal("Submit() should dispatch once all fields validate")
	}

	select {
	case sub := <-submitted:
		if sub.Form != "customer" {
			t.Errorf("submission form = %q, want customer", sub.Form)
		}
		if sub.Values["name"] != "Acme" || sub.Values["status"] != "active" {
			t.Errorf("unexpected submission values: %v", sub.Values)
		}
		if sub.CreatedAt.IsZero() || !sub.CreatedAt.Equal(sub.UpdatedAt) {
			t.Errorf("create-mode timestamps: createdAt=%v updatedAt=%v", sub.CreatedAt, sub.UpdatedAt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnSubmitted was never invoked")
	}

	if !sess.Closed() {
		t.Error("session must close after a successful submission")
	}
	if sess.Submit(context.Background()) || sess.Next() || sess.Prev() {
		t.Error("a closed session must refuse all further operations")
	}
}

func TestSession_SubmitFailureReopens(t *testing.T) {
	failures := make(chan error, 1)
	calls := 0
	submit := func(ctx context.Context, sub forms.Submission) error {
		calls++
		if calls == 1 {
			return errors.New("database unavailable")
		}
		return nil
	}
	done := make(chan struct{}, 1)
	sess := forms.NewSession(wizardSchema(), submit, forms.Callbacks{
		OnSubmitted: func(forms.Submission) { done <- struct{}{} },
		OnFailure:   func(err error) { failures <- err },
	})
	sess.Set("name", "Acme")

	if !sess.Submit(context.Background()) {
		t.Fatal("first Submit() should dispatch")
	}
	select {
	case err := <-failures:
		if err == nil {
			t.Fatal("OnFailure received a nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnFailure was never invoked")
	}

	if sess.Closed() {
		t.Fatal("a failed submission must not close the session")
	}
	if sess.Busy() {
		t.Fatal("the busy flag must clear after a failure")
	}

	// The record survives intact and can be resubmitted.
	if got := sess.Get("name"); got != "Acme" {
		t.Fatalf("record lost after failure: name = %q", got)
	}
	if !sess.Submit(context.Background()) {
		t.Fatal("resubmission should dispatch")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("resubmission never succeeded")
	}
}

func TestSession_SubmitSingleFlight(t *testing.T) {
	release := make(chan struct{})
	submit := func(ctx context.Context, sub forms.Submission) error {
		<-release
		return nil
	}
	done := make(chan struct{}, 1)
	sess := forms.NewSession(wizardSchema(), submit, forms.Callbacks{
		OnSubmitted: func(forms.Submission) { done <- struct{}{} },
	})
	sess.Set("name", "Acme")

	if !sess.Submit(context.Background()) {
		t.Fatal("first Submit() should dispatch")
	}
	if sess.Submit(context.Background()) {
		t.Fatal("second Submit() must be refused while one is in flight")
	}
	if sess.Next() || sess.Prev() {
		t.Error("navigation must be refused while submitting")
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submission never settled")
	}
}

func TestSession_CancelDropsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	submit := func(ctx context.Context, sub forms.Submission) error {
		<-release
		return nil
	}
	cancelled := make(chan struct{}, 1)
	submittedCount := make(chan struct{}, 1)
	sess := forms.NewSession(wizardSchema(), submit, forms.Callbacks{
		OnSubmitted: func(forms.Submission) { submittedCount <- struct{}{} },
		OnCancelled: func() { cancelled <- struct{}{} },
	})
	sess.Set("name", "Acme")
	sess.Submit(context.Background())

	sess.Cancel()
	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("OnCancelled was never invoked")
	}

	// Let the in-flight submission settle; its success must be swallowed.
	close(release)
	select {
	case <-submittedCount:
		t.Fatal("OnSubmitted fired for a cancelled session")
	case <-time.After(100 * time.Millisecond):
	}

	sess.Cancel() // idempotent
	select {
	case <-cancelled:
		t.Fatal("OnCancelled fired twice")
	default:
	}
}

func TestSession_EditMakesInFlightSubmitStale(t *testing.T) {
	release := make(chan struct{})
	submit := func(ctx context.Context, sub forms.Submission) error {
		<-release
		return nil
	}
	submitted := make(chan struct{}, 1)
	sess := forms.NewSession(wizardSchema(), submit, forms.Callbacks{
		OnSubmitted: func(forms.Submission) { submitted <- struct{}{} },
	})
	sess.Set("name", "Acme")
	sess.Submit(context.Background())

	// Reopening on a new target invalidates the in-flight generation.
	sess.Edit(map[string]string{"name": "Globex"}, nil, time.Time{})
	close(release)
	select {
	case <-submitted:
		t.Fatal("a stale submission settled against the new target")
	case <-time.After(100 * time.Millisecond):
	}

	if sess.Closed() {
		t.Fatal("the reopened session must stay open")
	}
	if got := sess.Get("name"); got != "Globex" {
		t.Fatalf("name = %q, want Globex", got)
	}
	if sess.Step() != 1 {
		t.Fatalf("reopen must reset to step 1, got %d", sess.Step())
	}
	if sess.Busy() {
		t.Fatal("reopen must clear the busy flag")
	}
}

func TestSession_EditPreservesCreatedAt(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	submitted := make(chan forms.Submission, 1)
	submit := func(ctx context.Context, sub forms.Submission) error { return nil }
	sess := forms.NewSession(wizardSchema(), submit, forms.Callbacks{
		OnSubmitted: func(sub forms.Submission) { submitted <- sub },
	})

	sess.Edit(map[string]string{"name": "Acme", "status": "inactive"}, nil, created)
	if !sess.Submit(context.Background()) {
		t.Fatal("Submit() should dispatch")
	}

	select {
	case sub := <-submitted:
		if !sub.CreatedAt.Equal(created) {
			t.Errorf("createdAt = %v, want the edit target's %v", sub.CreatedAt, created)
		}
		if !sub.UpdatedAt.After(created) {
			t.Errorf("updatedAt = %v, want later than %v", sub.UpdatedAt, created)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnSubmitted was never invoked")
	}
}

func TestSession_Errors(t *testing.T) {
	sess := forms.NewSession(wizardSchema(), noSubmit, forms.Callbacks{})
	errs := sess.Errors()
	if len(errs) != 1 || errs[0].Field != "name" {
		t.Fatalf("Errors() = %v, want exactly the empty required name", errs)
	}
	sess.Set("name", "Acme")
	if errs := sess.Errors(); len(errs) != 0 {
		t.Fatalf("Errors() = %v, want none", errs)
	}
}
