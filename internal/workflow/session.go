package workflow

import (
	"context"
	"errors"
	"fmt"

	"care_wallet/internal/gateway"
	"care_wallet/internal/schema"
)

// Status is where a Session is in its lifecycle.
type Status int

const (
	// StatusEditing covers every step before a successful submit, including
	// a failed one.
	StatusEditing Status = iota

	// StatusSubmitting is set while the request is in flight.
	StatusSubmitting

	// StatusSucceeded is terminal; Result holds the created record.
	StatusSucceeded
)

func (s Status) String() string {
	switch s {
	case StatusEditing:
		return "editing"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

var (
	// ErrNotOnLastStep is returned by Submit before the review step.
	ErrNotOnLastStep = errors.New("workflow: submit is only available on the last step")
	// ErrAlreadySubmitted is returned by Submit after success.
	ErrAlreadySubmitted = errors.New("workflow: already submitted")

	errInvalidForm = errors.New("Please check the form and try again")
)

// Submitter sends a finished draft. gateway.Client implements it.
type Submitter interface {
	Submit(ctx context.Context, path, token string, payload, out any) error
}

// Session runs one flow from first step to the created record R.
type Session[P, R any] struct {
	flow    Flow[P]
	machine *Machine
	gw      Submitter
	token   string
	status  Status
	result  *R
}

// NewSession starts flow for the user holding token. The last step also
// checks the built payload against the request rules, so a draft that passes
// every step always produces a body the server accepts.
func NewSession[P, R any](flow Flow[P], gw Submitter, token string) *Session[P, R] {
	steps := append([]Step(nil), flow.Steps...)
	if n := len(steps); n > 0 {
		last := steps[n-1]
		last.Validate = Validate(orPass(last.Validate), payloadRule(flow))
		steps[n-1] = last
	}
	return &Session[P, R]{
		flow:    flow,
		machine: NewMachine(steps...),
		gw:      gw,
		token:   token,
	}
}

func orPass(r Rule) Rule {
	if r == nil {
		return func(Draft) error { return nil }
	}
	return r
}

func payloadRule[P any](flow Flow[P]) Rule {
	return func(d Draft) error {
		p, err := flow.Payload(d)
		if err != nil {
			return errInvalidForm
		}
		return schema.Validate(p)
	}
}

// Machine exposes the step machine for navigation and field edits.
func (s *Session[P, R]) Machine() *Machine { return s.machine }

func (s *Session[P, R]) Status() Status { return s.status }

// Result is the created record once Status is StatusSucceeded.
func (s *Session[P, R]) Result() *R { return s.result }

// Error is the message to show, empty after success.
func (s *Session[P, R]) Error() string { return s.machine.Error() }

// Submit validates the last step and sends the draft once. On failure the
// session stays on the last step with the server's message; there is no
// retry and no idempotency key, so calling it again sends a new request.
func (s *Session[P, R]) Submit(ctx context.Context) error {
	if s.status == StatusSucceeded {
		return ErrAlreadySubmitted
	}
	if !s.machine.OnLastStep() {
		return ErrNotOnLastStep
	}
	if err := s.machine.validateCurrent(); err != nil {
		s.machine.setError(err.Error())
		return err
	}
	payload, err := s.flow.Payload(s.machine.Draft())
	if err != nil {
		s.machine.setError(gateway.FallbackMessage)
		return err
	}

	s.status = StatusSubmitting
	var out R
	if err := s.gw.Submit(ctx, s.flow.Path, s.token, payload, &out); err != nil {
		s.status = StatusEditing
		s.machine.setError(gateway.Message(err))
		return err
	}
	s.result = &out
	s.status = StatusSucceeded
	s.machine.setError("")
	return nil
}
