// Package workflow is the client side of every multi-step form: a step
// machine over an immutable draft, the per-step validation rules, and a
// Session that submits the finished draft through the gateway.
package workflow

// Draft is the not-yet-submitted form state. Values are strings the way a
// form holds them; flows convert them into request payloads on submit.
type Draft map[string]string

// With returns a copy of d with name set to value.
func (d Draft) With(name, value string) Draft {
	next := make(Draft, len(d)+1)
	for k, v := range d {
		next[k] = v
	}
	next[name] = value
	return next
}

// Step is one named page of a flow. A nil Validate always passes.
type Step struct {
	Name     string
	Validate Rule
}

// Machine walks an ordered list of steps. Transitions are synchronous and
// never touch the network.
type Machine struct {
	steps []Step
	index int
	draft Draft
	err   string
}

// NewMachine starts at the first step with an empty draft.
func NewMachine(steps ...Step) *Machine {
	return &Machine{steps: steps, draft: Draft{}}
}

// Advance validates the current step. On success it moves to the next step
// and clears the error; on failure it records the message, stays put and
// returns the error. On the last step it does nothing: leaving it is the
// submission, not a transition.
func (m *Machine) Advance() error {
	if m.OnLastStep() {
		return nil
	}
	if err := m.validateCurrent(); err != nil {
		m.err = err.Error()
		return err
	}
	m.err = ""
	m.index++
	return nil
}

// Retreat moves back one step without validating. The draft is kept.
func (m *Machine) Retreat() {
	if m.index > 0 {
		m.index--
	}
}

// SetField replaces the draft with a copy holding the new value and clears
// the error.
func (m *Machine) SetField(name, value string) {
	m.draft = m.draft.With(name, value)
	m.err = ""
}

func (m *Machine) validateCurrent() error {
	if len(m.steps) == 0 || m.steps[m.index].Validate == nil {
		return nil
	}
	return m.steps[m.index].Validate(m.draft)
}

// Index is the zero-based current step.
func (m *Machine) Index() int { return m.index }

// Step is the current step.
func (m *Machine) Step() Step { return m.steps[m.index] }

// Steps is the number of steps.
func (m *Machine) Steps() int { return len(m.steps) }

// OnLastStep reports whether the submission action is available.
func (m *Machine) OnLastStep() bool { return m.index >= len(m.steps)-1 }

// Draft returns the current draft. Callers must not modify it.
func (m *Machine) Draft() Draft { return m.draft }

// Error is the message from the last failed validation or submission.
func (m *Machine) Error() string { return m.err }

func (m *Machine) setError(msg string) { m.err = msg }
