package verification

import (
	"errors"
	"testing"
)

func TestFlowAutomaticApproval(t *testing.T) {
	f := NewFlow()
	if err := f.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.Approve(); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if f.State() != StateSuccess || !f.Terminal() {
		t.Fatalf("expected terminal success, got %s", f.State())
	}
	if status, ok := f.PersistedStatus(); !ok || status != StatusApproved {
		t.Fatalf("expected approved, got %q", status)
	}
	if err := f.Submit(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from success, got %v", err)
	}
}

func TestFlowManualDocument(t *testing.T) {
	f := NewFlow()
	mustStep(t, f.Submit())
	mustStep(t, f.RequireManual())
	if status, _ := f.PersistedStatus(); status != StatusManualReview {
		t.Fatalf("expected manual-review, got %q", status)
	}
	mustStep(t, f.SubmitDocument())
	if err := f.Approve(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("document submission cannot be auto-approved, got %v", err)
	}
	mustStep(t, f.Fail())
	if f.State() != StateManualVerification {
		t.Fatalf("document failure should return to manual verification, got %s", f.State())
	}
	mustStep(t, f.SubmitDocument())
	mustStep(t, f.DocumentAccepted())
	if f.State() != StateVerificationPending || !f.Terminal() {
		t.Fatalf("expected verification-pending, got %s", f.State())
	}
	if status, _ := f.PersistedStatus(); status != StatusPending {
		t.Fatalf("expected pending, got %q", status)
	}
}

func TestFlowSubmitFailureReturnsToIdle(t *testing.T) {
	f := NewFlow()
	mustStep(t, f.Submit())
	mustStep(t, f.Fail())
	if f.State() != StateIdle {
		t.Fatalf("expected idle, got %s", f.State())
	}
	if _, ok := f.PersistedStatus(); ok {
		t.Fatalf("idle has no persisted status")
	}
	if err := f.DocumentAccepted(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestResumeFlow(t *testing.T) {
	f, err := ResumeFlow(StatusManualReview)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	mustStep(t, f.Reset())
	if f.State() != StateIdle {
		t.Fatalf("expected idle after reset, got %s", f.State())
	}
	if _, err := ResumeFlow(StatusRejected); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("rejected requests cannot resume, got %v", err)
	}
	if !CanReview(StatusPending) || !CanReview(StatusManualReview) || CanReview(StatusApproved) {
		t.Fatalf("unexpected review eligibility")
	}
}

func mustStep(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected transition error: %v", err)
	}
}
