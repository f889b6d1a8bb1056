package verification

import (
	"errors"
	"fmt"
)

type State string

const (
	StateIdle                State = "idle"
	StateSubmitting          State = "submitting"
	StateSuccess             State = "success"
	StateManualVerification  State = "manual-verification"
	StateVerificationPending State = "verification-pending"
)

// Persisted request statuses.
const (
	StatusApproved     = "approved"
	StatusManualReview = "manual-review"
	StatusPending      = "pending"
	StatusRejected     = "rejected"
)

var ErrInvalidTransition = errors.New("invalid verification transition")

// Flow tracks a single applicant through automatic and manual verification.
// A Flow is not safe for concurrent use.
type Flow struct {
	state State
	// document is set while a lease document submission is in flight, so a
	// failure returns to manual verification instead of the start.
	document bool
}

func NewFlow() *Flow {
	return &Flow{state: StateIdle}
}

// ResumeFlow rebuilds a flow from a persisted status.
func ResumeFlow(status string) (*Flow, error) {
	switch status {
	case StatusApproved:
		return &Flow{state: StateSuccess}, nil
	case StatusManualReview:
		return &Flow{state: StateManualVerification}, nil
	case StatusPending:
		return &Flow{state: StateVerificationPending}, nil
	}
	return nil, fmt.Errorf("%w: cannot resume from status %q", ErrInvalidTransition, status)
}

func (f *Flow) State() State {
	return f.state
}

// Terminal reports whether no further applicant events are accepted.
func (f *Flow) Terminal() bool {
	return f.state == StateSuccess || f.state == StateVerificationPending
}

// PersistedStatus maps the current state to the stored request status. Idle
// and submitting have no stored form.
func (f *Flow) PersistedStatus() (string, bool) {
	switch f.state {
	case StateSuccess:
		return StatusApproved, true
	case StateManualVerification:
		return StatusManualReview, true
	case StateVerificationPending:
		return StatusPending, true
	}
	return "", false
}

func (f *Flow) Submit() error {
	if f.state != StateIdle {
		return f.invalid("submit")
	}
	f.state = StateSubmitting
	f.document = false
	return nil
}

func (f *Flow) Approve() error {
	if f.state != StateSubmitting || f.document {
		return f.invalid("approve")
	}
	f.state = StateSuccess
	return nil
}

func (f *Flow) RequireManual() error {
	if f.state != StateSubmitting || f.document {
		return f.invalid("require manual verification")
	}
	f.state = StateManualVerification
	return nil
}

func (f *Flow) SubmitDocument() error {
	if f.state != StateManualVerification {
		return f.invalid("submit document")
	}
	f.state = StateSubmitting
	f.document = true
	return nil
}

func (f *Flow) DocumentAccepted() error {
	if f.state != StateSubmitting || !f.document {
		return f.invalid("accept document")
	}
	f.state = StateVerificationPending
	f.document = false
	return nil
}

// Fail returns a failed submission to where the applicant can retry.
func (f *Flow) Fail() error {
	if f.state != StateSubmitting {
		return f.invalid("fail")
	}
	if f.document {
		f.state = StateManualVerification
	} else {
		f.state = StateIdle
	}
	f.document = false
	return nil
}

// Reset abandons manual verification and starts over.
func (f *Flow) Reset() error {
	if f.state != StateManualVerification {
		return f.invalid("reset")
	}
	f.state = StateIdle
	return nil
}

func (f *Flow) invalid(event string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, f.state)
}

// CanReview reports whether an admin may decide a request in this status.
func CanReview(status string) bool {
	return status == StatusPending || status == StatusManualReview
}
