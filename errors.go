package fsa

import (
	"fmt"
	"strings"
)

// DuplicateStateError reports a state name declared twice in one table.
type DuplicateStateError struct {
	State string
}

func (e *DuplicateStateError) Error() string {
	return fmt.Sprintf("fsa: state %q declared more than once", e.State)
}

// UnknownStateError reports a reference to a state that was never declared,
// either by a rule target at build time or by SetState at run time. Referrer
// is the state owning the offending rule and is empty for SetState.
type UnknownStateError struct {
	State    string
	Referrer string
}

func (e *UnknownStateError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("fsa: unknown state %q", e.State)
	}
	return fmt.Sprintf("fsa: unknown state %q targeted by a rule of state %q", e.State, e.Referrer)
}

// NotStartedError reports a transition attempted before any state is current.
type NotStartedError struct {
	Machine string
}

func (e *NotStartedError) Error() string {
	return fmt.Sprintf("fsa: machine %q has no current state; call Start first", e.Machine)
}

// AmbiguousTransitionError reports that strict evaluation found more than one
// rule true at once. Targets lists every candidate in declaration order.
type AmbiguousTransitionError struct {
	State   string
	Targets []string
}

func (e *AmbiguousTransitionError) Error() string {
	return fmt.Sprintf("fsa: ambiguous transition from state %q: would move to %s", e.State, strings.Join(e.Targets, ", "))
}

// NoTransitionError reports that Switch found no applicable rule.
type NoTransitionError struct {
	State string
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("fsa: no rule of state %q allows a transition", e.State)
}
